package newslettersdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Subscribe registers a pending subscriber. The service mails the
// confirmation link.
func (c *SDKClient) Subscribe(ctx context.Context, email, name string) error {
	form := url.Values{"email": {email}, "name": {name}}

	resp, err := c.doRequest(ctx, http.MethodPost, "/subscriptions", strings.NewReader(form.Encode()), func(r *http.Request) {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}

// Confirm follows a confirmation link by its token.
func (c *SDKClient) Confirm(ctx context.Context, token string) error {
	path := "/subscriptions/confirm?" + url.Values{"subscription_token": {token}}.Encode()

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}
