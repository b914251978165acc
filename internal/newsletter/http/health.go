package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/newsletter/pkg/httpx"
	"github.com/aussiebroadwan/newsletter/pkg/newslettersdk"
)

// HealthCheckHandler answers 200 with an empty body while the process runs.
func HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, newslettersdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler reports 503 when the database or the session store does not
// answer a ping.
func ReadyzHandler(startTime time.Time, version string, db, sessions Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &newslettersdk.HealthChecks{Database: "ok", Sessions: "ok"}
		status, code := "ok", http.StatusOK

		if err := db.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
		if sessions != nil {
			if err := sessions.Ping(r.Context()); err != nil {
				checks.Sessions = "error: " + err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, code, newslettersdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
