package service

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Each typed error below matches exactly one of
// them, chosen by its Kind.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNotAuthenticated   = errors.New("not_authenticated")
	ErrValidation         = errors.New("validation_failed")
	ErrPublishAuth        = errors.New("publish_unauthorized")
	ErrUnknownToken       = errors.New("unknown_subscription_token")
	ErrUnexpected         = errors.New("unexpected_error")
)

type AuthErrorKind int

const (
	AuthInvalidCredentials AuthErrorKind = iota + 1
	AuthUnexpected
)

// AuthError is returned by credential checks and session login.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case AuthInvalidCredentials:
		return "invalid credentials"
	default:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	switch e.Kind {
	case AuthInvalidCredentials:
		return target == ErrInvalidCredentials
	case AuthUnexpected:
		return target == ErrUnexpected
	}
	return false
}

type OnboardErrorKind int

const (
	OnboardValidation OnboardErrorKind = iota + 1
	OnboardUnexpected
)

// OnboardError is returned by Subscribe. A validation cause is a
// *domain.ValidationError.
type OnboardError struct {
	Kind OnboardErrorKind
	Err  error
}

func (e *OnboardError) Error() string {
	switch e.Kind {
	case OnboardValidation:
		return e.Err.Error()
	default:
		return fmt.Sprintf("subscribe: %v", e.Err)
	}
}

func (e *OnboardError) Unwrap() error { return e.Err }

func (e *OnboardError) Is(target error) bool {
	switch e.Kind {
	case OnboardValidation:
		return target == ErrValidation
	case OnboardUnexpected:
		return target == ErrUnexpected
	}
	return false
}

type PublishErrorKind int

const (
	PublishAuth PublishErrorKind = iota + 1
	PublishUnexpected
)

// PublishError is returned by the newsletter entry points. An auth failure
// never follows any recipient I/O.
type PublishError struct {
	Kind PublishErrorKind
	Err  error
}

func (e *PublishError) Error() string {
	switch e.Kind {
	case PublishAuth:
		return "publish: not authorized"
	default:
		return fmt.Sprintf("publish: %v", e.Err)
	}
}

func (e *PublishError) Unwrap() error { return e.Err }

func (e *PublishError) Is(target error) bool {
	switch e.Kind {
	case PublishAuth:
		return target == ErrPublishAuth
	case PublishUnexpected:
		return target == ErrUnexpected
	}
	return false
}

type ConfirmErrorKind int

const (
	ConfirmUnknownToken ConfirmErrorKind = iota + 1
	ConfirmUnexpected
)

// ConfirmError is returned by Confirm.
type ConfirmError struct {
	Kind ConfirmErrorKind
	Err  error
}

func (e *ConfirmError) Error() string {
	switch e.Kind {
	case ConfirmUnknownToken:
		return "unknown subscription token"
	default:
		return fmt.Sprintf("confirm: %v", e.Err)
	}
}

func (e *ConfirmError) Unwrap() error { return e.Err }

func (e *ConfirmError) Is(target error) bool {
	switch e.Kind {
	case ConfirmUnknownToken:
		return target == ErrUnknownToken
	case ConfirmUnexpected:
		return target == ErrUnexpected
	}
	return false
}
