package domain

import (
	"net/mail"
	"strings"
)

// SubscriberEmail is an address that passed ParseSubscriberEmail.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail accepts a bare RFC 5322 addr-spec. Display names and
// angle brackets are rejected so that what is stored is exactly what is
// delivered to.
func ParseSubscriberEmail(s string) (SubscriberEmail, error) {
	invalid := &ValidationError{Field: "email", Reason: "is not a valid email address"}

	if s == "" || strings.TrimSpace(s) != s {
		return SubscriberEmail{}, invalid
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return SubscriberEmail{}, invalid
	}
	return SubscriberEmail{value: addr.Address}, nil
}

func (e SubscriberEmail) String() string { return e.value }
