package httpx

import "net/http"

// Stage inspects a request before it reaches its handler. It returns the
// request to pass on, optionally with an enriched context, or writes a
// response itself and returns nil to stop the pipeline.
type Stage interface {
	Inspect(w http.ResponseWriter, r *http.Request) *http.Request
}

// StageFunc adapts a function to the Stage interface.
type StageFunc func(w http.ResponseWriter, r *http.Request) *http.Request

func (f StageFunc) Inspect(w http.ResponseWriter, r *http.Request) *http.Request {
	return f(w, r)
}

// Pipeline is an ordered, fixed list of stages run in front of a handler.
type Pipeline []Stage

// Then returns a handler that runs every stage in order and finally h. The
// first stage that answers the request ends it.
func (p Pipeline) Then(h http.Handler) http.Handler {
	stages := append(Pipeline(nil), p...)
	return &pipelineHandler{stages: stages, next: h}
}

type pipelineHandler struct {
	stages Pipeline
	next   http.Handler
}

func (ph *pipelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, s := range ph.stages {
		if r = s.Inspect(w, r); r == nil {
			return
		}
	}
	ph.next.ServeHTTP(w, r)
}
