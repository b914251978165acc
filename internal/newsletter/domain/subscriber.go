package domain

import "time"

// SubscriberStatus is the confirmation state of a subscriber. It only ever
// moves from pending to confirmed.
type SubscriberStatus string

const (
	StatusPendingConfirmation SubscriberStatus = "pending_confirmation"
	StatusConfirmed           SubscriberStatus = "confirmed"
)

// Subscriber is a mailing list entry.
type Subscriber struct {
	ID           string
	Email        string
	Name         string
	SubscribedAt time.Time
	Status       SubscriberStatus
}

// NewSubscriber is a validated subscription request.
type NewSubscriber struct {
	Email SubscriberEmail
	Name  SubscriberName
}

// ConfirmationToken links an opaque token to exactly one subscriber.
type ConfirmationToken struct {
	Token        string
	SubscriberID string
}
