// Package session keeps the login state of admin browsers in Redis, keyed by
// an opaque identifier carried in a cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/newsletter/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

// CookieName carries the session id.
const CookieName = "id"

const keyPrefix = "newsletter:session:"

var ErrNotFound = errors.New("session: not found")

// Data is what a session remembers about its browser.
type Data struct {
	UserID string `json:"user_id"`
}

// Store is a keyed session store. Ids are opaque and unguessable.
type Store interface {
	Get(ctx context.Context, id string) (Data, error)
	Set(ctx context.Context, id string, data Data) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh 256-bit session id.
func NewID() (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize256)
}

// RedisStore stores sessions as JSON values with a sliding TTL. Keys are
// fingerprints of the id so that a Redis dump does not leak live ids.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + cryptox.FingerprintToken(id)
}

func (s *RedisStore) Get(ctx context.Context, id string) (Data, error) {
	if id == "" {
		return Data{}, ErrNotFound
	}

	raw, err := s.client.GetEx(ctx, key(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return Data{}, ErrNotFound
	}
	if err != nil {
		return Data{}, fmt.Errorf("session: get: %w", err)
	}

	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("session: decode: %w", err)
	}
	return d, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, data Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: set: %w", err)
	}
	return nil
}

// Delete removes the session. Deleting an unknown id is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// TTL is the idle lifetime of a session.
func (s *RedisStore) TTL() time.Duration { return s.ttl }

// ReadCookie returns the session id presented by the browser, if any.
func ReadCookie(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// WriteCookie hands id to the browser.
func WriteCookie(w http.ResponseWriter, id string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
