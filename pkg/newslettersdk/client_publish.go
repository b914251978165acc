package newslettersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrIncompleteIssue is returned before any request is sent when the issue
// lacks a title or either body.
var ErrIncompleteIssue = errors.New("newsletter issue requires a title, html and text content")

// Publish sends issue to every confirmed subscriber, authenticating with
// Basic credentials.
func (c *SDKClient) Publish(ctx context.Context, username, password string, issue Issue) (*PublishReport, error) {
	if !issue.Validate() {
		return nil, ErrIncompleteIssue
	}

	body, err := json.Marshal(issue)
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/newsletters", bytes.NewReader(body), func(r *http.Request) {
		r.Header.Set("Content-Type", "application/json")
		r.SetBasicAuth(username, password)
	})
	if err != nil {
		return nil, err
	}

	var report PublishReport
	if err := decodeJSON(resp, &report, http.StatusOK); err != nil {
		return nil, err
	}
	return &report, nil
}
