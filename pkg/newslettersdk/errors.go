package newslettersdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes written by the service.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeInvalidToken   = "invalid_token"
	ErrorCodeUnauthorized   = "unauthorized"
	ErrorCodeServerError    = "server_error"
)

// APIError is a non-success response from the service.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("newsletter api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("newsletter api: %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// parseErrorResponse turns an unexpected response into an *APIError. Bodies
// that are not JSON, such as the empty 500 of a crashed handler, keep only
// the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	_ = json.Unmarshal(body, apiErr)
	return apiErr
}
