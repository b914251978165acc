package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSubscriberEmail(t *testing.T) {
	valid := []string{
		"ursula_le_guin@gmail.com",
		"first.last+tag@example.co.uk",
	}
	for _, s := range valid {
		got, err := ParseSubscriberEmail(s)
		require.NoError(t, err, s)
		require.Equal(t, s, got.String())
	}

	invalid := []string{
		"",
		" ",
		"ursuladomain.com",
		"@domain.com",
		"ursula@",
		"Ursula <ursula@domain.com>",
		" ursula@domain.com",
		"definitely-not-an-email",
	}
	for _, s := range invalid {
		_, err := ParseSubscriberEmail(s)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "%q should be rejected", s)
		require.Equal(t, "email", verr.Field)
	}
}
