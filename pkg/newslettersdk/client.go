package newslettersdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the newsletter service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			// Publishing waits for the whole fan-out.
			Timeout: 2 * time.Minute,
		},
	}
}
