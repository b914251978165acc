/*
Package newslettersdk is a client for the newsletter service HTTP API.

# Overview

The client covers the machine-facing endpoints: subscribing, confirming a
subscription, publishing an issue with Basic credentials and the health
probes. The admin pages are HTML forms meant for browsers and have no client
methods.

	client := newslettersdk.NewSDKClient("https://news.example.com")

	// Public endpoints
	err := client.Subscribe(ctx, "ursula_le_guin@gmail.com", "Ursula")
	err = client.Confirm(ctx, token)

	// Publishing requires an administrator account
	report, err := client.Publish(ctx, "admin", password, newslettersdk.Issue{
		Title:   "Issue #1",
		Content: newslettersdk.IssueContent{HTML: "<p>Hello</p>", Text: "Hello"},
	})

# Error Handling

Every non-success response is returned as an *APIError carrying the HTTP
status and, when the server sent one, the JSON error code:

	if err := client.Confirm(ctx, token); err != nil {
		var apiErr *newslettersdk.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			// unknown token
		}
	}

The same types describe the JSON bodies the server writes, so the server and
this client cannot drift apart.
*/
package newslettersdk
