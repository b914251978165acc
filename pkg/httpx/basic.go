package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoBasicAuth means the request carried no Basic Authorization header.
	ErrNoBasicAuth = errors.New("authorization header is missing or not basic")
	// ErrMalformedBasicAuth means the header was present but not decodable.
	ErrMalformedBasicAuth = errors.New("malformed basic credentials")
)

// HasBasicAuth reports whether the request presents Basic credentials, well
// formed or not.
func HasBasicAuth(r *http.Request) bool {
	scheme, _, _ := strings.Cut(r.Header.Get("Authorization"), " ")
	return strings.EqualFold(scheme, "basic")
}

// BasicCredentials extracts the username and password of a Basic
// Authorization header.
func BasicCredentials(r *http.Request) (username, password string, err error) {
	if !HasBasicAuth(r) {
		return "", "", ErrNoBasicAuth
	}
	username, password, ok := r.BasicAuth()
	if !ok || !utf8.ValidString(username) || !utf8.ValidString(password) {
		return "", "", ErrMalformedBasicAuth
	}
	return username, password, nil
}

// WriteBasicChallenge answers 401 with a WWW-Authenticate Basic challenge for
// realm.
func WriteBasicChallenge(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", "Basic realm="+strconv.Quote(realm))
	WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
}
