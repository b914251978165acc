package newslettersdk

// HealthResponse is the body of GET /livez and GET /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Sessions string `json:"sessions"`
}

// Issue is the body of POST /newsletters.
type Issue struct {
	Title   string       `json:"title"`
	Content IssueContent `json:"content"`
}

type IssueContent struct {
	HTML string `json:"html"`
	Text string `json:"text"`
}

// Validate reports whether every field the server requires is present.
func (i Issue) Validate() bool {
	return i.Title != "" && i.Content.HTML != "" && i.Content.Text != ""
}

// PublishReport is the body of a successful publish.
type PublishReport struct {
	Delivered int `json:"delivered"`
	Skipped   int `json:"skipped"`
}
