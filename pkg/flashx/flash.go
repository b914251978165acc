// Package flashx carries one-shot user notices across a redirect in a signed
// cookie. The cookie holds a short-lived HS256 token so the message cannot be
// forged or replayed after it expires.
package flashx

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Level classifies a flash message for rendering.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// CookieName is the name of the flash cookie.
const CookieName = "_flash"

const defaultTTL = 5 * time.Minute

// Message is a single notice shown on the next page load.
type Message struct {
	Level Level
	Text  string
}

type claims struct {
	Level Level  `json:"lvl"`
	Text  string `json:"msg"`
	jwt.RegisteredClaims
}

// Flasher issues and consumes flash cookies signed with a shared secret.
type Flasher struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// New returns a Flasher. secure marks the cookie Secure, which should be set
// whenever the service is reached over HTTPS.
func New(secret []byte, secure bool) (*Flasher, error) {
	if len(secret) < 32 {
		return nil, errors.New("flashx: secret must be at least 32 bytes")
	}
	return &Flasher{secret: secret, ttl: defaultTTL, secure: secure, now: time.Now}, nil
}

// Set writes a flash cookie holding msg.
func (f *Flasher) Set(w http.ResponseWriter, level Level, text string) error {
	now := f.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Level: level,
		Text:  text,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(f.ttl)),
		},
	})
	signed, err := token.SignedString(f.secret)
	if err != nil {
		return fmt.Errorf("flashx: sign: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(f.ttl.Seconds()),
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Take reads and clears the flash cookie. It returns false when there is no
// message or the cookie does not verify.
func (f *Flasher) Take(w http.ResponseWriter, r *http.Request) (Message, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Message{}, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})

	var cl claims
	_, err = jwt.ParseWithClaims(c.Value, &cl, func(*jwt.Token) (any, error) {
		return f.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(f.now),
	)
	if err != nil {
		return Message{}, false
	}
	return Message{Level: cl.Level, Text: cl.Text}, true
}
