//go:build e2e

package newsletter_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/app"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/service"
	"github.com/aussiebroadwan/newsletter/pkg/newslettersdk"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Shared setup for the newsletter end-to-end tests. Every test gets its own
 * postgres and redis containers and a fully wired application served by
 * httptest.
 */

const adminUsername = "admin"

type environment struct {
	baseURL       string
	sdk           *newslettersdk.SDKClient
	db            *sql.DB
	client        *http.Client
	adminPassword string
}

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:18-alpine",
		tcpostgres.WithDatabase("newsletter"),
		tcpostgres.WithUsername("newsletter"),
		tcpostgres.WithPassword("newsletter"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "redis")
	require.NoError(t, err)
	return endpoint + "/0"
}

// setupEnvironment starts the backends, creates the admin account through
// the same path as `newsletter admin create` and serves the application.
func setupEnvironment(t *testing.T) *environment {
	t.Helper()
	ctx := context.Background()

	cfg := app.Config{
		Env:                  "test",
		LogLevel:             "warn",
		LogFormat:            "json",
		DatabaseDriver:       app.DriverPostgres,
		DatabaseURL:          startPostgres(t),
		RedisURL:             startRedis(t),
		SessionTTL:           time.Hour,
		HMACSecret:           strings.Repeat("e2e-secret-", 4),
		EmailDriver:          app.EmailDriverLog,
		EmailTimeout:         5 * time.Second,
		HashTimeout:          5 * time.Second,
		PendingRetention:     24 * time.Hour,
		HousekeepingInterval: time.Hour,
		ShutdownGracePeriod:  5 * time.Second,
	}

	// The base URL must be known before the app is built, so reserve the
	// listener first.
	srv := httptest.NewUnstartedServer(nil)
	cfg.BaseURL = "http://" + srv.Listener.Addr().String()

	application, err := app.New(ctx, cfg)
	require.NoError(t, err)

	srv.Config.Handler = application.Handler()
	srv.Start()
	t.Cleanup(srv.Close)

	st, err := app.OpenStore(cfg)
	require.NoError(t, err)
	defer st.Close()
	users := &service.UserService{Store: st}
	_, password, err := users.CreateAccount(ctx, adminUsername)
	require.NoError(t, err)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &environment{
		baseURL: srv.URL,
		sdk:     newslettersdk.NewSDKClient(srv.URL),
		db:      db,
		client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		adminPassword: password,
	}
}

func (e *environment) do(t *testing.T, method, path string, body io.Reader, prepare func(*http.Request)) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, e.baseURL+path, body)
	require.NoError(t, err)
	if prepare != nil {
		prepare(req)
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func (e *environment) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	return e.do(t, http.MethodPost, path, strings.NewReader(form.Encode()), func(r *http.Request) {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	})
}

// publishWithSession posts an issue relying on the admin session cookie.
func (e *environment) publishWithSession(t *testing.T, path, issue string) (*http.Response, string) {
	t.Helper()
	return e.do(t, http.MethodPost, path, strings.NewReader(issue), func(r *http.Request) {
		r.Header.Set("Content-Type", "application/json")
	})
}

// tokenFor reads the confirmation token the service mailed to addr.
func (e *environment) tokenFor(t *testing.T, addr string) string {
	t.Helper()
	var token string
	err := e.db.QueryRowContext(t.Context(), `
		SELECT t.subscription_token
		FROM subscription_tokens t
		JOIN subscriptions s ON s.id = t.subscriber_id
		WHERE s.email = $1`, addr).Scan(&token)
	require.NoError(t, err, fmt.Sprintf("no token stored for %s", addr))
	return token
}

func (e *environment) statusOf(t *testing.T, addr string) string {
	t.Helper()
	var status string
	require.NoError(t, e.db.QueryRowContext(t.Context(),
		`SELECT status FROM subscriptions WHERE email = $1`, addr).Scan(&status))
	return status
}
