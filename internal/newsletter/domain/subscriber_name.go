package domain

import (
	"strings"

	"github.com/rivo/uniseg"
)

// MaxSubscriberNameLength is measured in grapheme clusters.
const MaxSubscriberNameLength = 256

const forbiddenNameChars = `/()"<>\{},`

// SubscriberName is a name that passed ParseSubscriberName.
type SubscriberName struct {
	value string
}

// ParseSubscriberName rejects names that are empty or whitespace only, longer
// than 256 grapheme clusters, or contain any of / ( ) " < > \ { } ,
func ParseSubscriberName(s string) (SubscriberName, error) {
	switch {
	case strings.TrimSpace(s) == "":
		return SubscriberName{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	case uniseg.GraphemeClusterCount(s) > MaxSubscriberNameLength:
		return SubscriberName{}, &ValidationError{Field: "name", Reason: "is too long"}
	case strings.ContainsAny(s, forbiddenNameChars):
		return SubscriberName{}, &ValidationError{Field: "name", Reason: "contains forbidden characters"}
	}
	return SubscriberName{value: s}, nil
}

func (n SubscriberName) String() string { return n.value }
