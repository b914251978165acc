package domain

// NewsletterIssue is one publish request. It is not persisted.
type NewsletterIssue struct {
	Title string
	HTML  string
	Text  string
}

// PublishReport counts the outcome of a completed fan-out.
type PublishReport struct {
	Delivered int
	Skipped   int
}
