package email

import (
	"fmt"
	"net/url"

	"github.com/osteele/liquid"
)

const confirmationSubject = "Welcome!"

const confirmationHTML = `Welcome to our newsletter!<br />
Click <a href="{{ link | escape }}">here</a> to confirm your subscription.`

const confirmationText = `Welcome to our newsletter!
Visit {{ link }} to confirm your subscription.`

// Templates renders the messages the service sends on its own behalf.
type Templates struct {
	baseURL string
	html    *liquid.Template
	text    *liquid.Template
}

// NewTemplates parses the built-in templates. baseURL is the public origin
// that confirmation links point at.
func NewTemplates(baseURL string) (*Templates, error) {
	engine := liquid.NewEngine()

	html, err := engine.ParseString(confirmationHTML)
	if err != nil {
		return nil, fmt.Errorf("parse confirmation html: %w", err)
	}
	text, err := engine.ParseString(confirmationText)
	if err != nil {
		return nil, fmt.Errorf("parse confirmation text: %w", err)
	}

	return &Templates{baseURL: baseURL, html: html, text: text}, nil
}

// ConfirmationLink is the URL a subscriber follows to confirm.
func (t *Templates) ConfirmationLink(token string) string {
	return t.baseURL + "/subscriptions/confirm?subscription_token=" + url.QueryEscape(token)
}

// Confirmation renders the confirmation email for token.
func (t *Templates) Confirmation(token string) (subject, html, text string, err error) {
	bindings := map[string]any{"link": t.ConfirmationLink(token)}

	html, serr := t.html.RenderString(bindings)
	if serr != nil {
		return "", "", "", fmt.Errorf("render confirmation html: %w", serr)
	}
	text, serr = t.text.RenderString(bindings)
	if serr != nil {
		return "", "", "", fmt.Errorf("render confirmation text: %w", serr)
	}
	return confirmationSubject, html, text, nil
}
