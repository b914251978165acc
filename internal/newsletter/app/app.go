package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/email"
	httpapi "github.com/aussiebroadwan/newsletter/internal/newsletter/http"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/metrics"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/service"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/session"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store/drivers/postgres"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store/drivers/sqlite"
	"github.com/aussiebroadwan/newsletter/pkg/cryptox"
	"github.com/aussiebroadwan/newsletter/pkg/flashx"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
	"github.com/aussiebroadwan/newsletter/pkg/workerx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "dev"

// Application encapsulates the newsletter service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	redis    *redis.Client
	sessions *session.RedisStore
	pool     *workerx.Pool
	metrics  *metrics.Metrics
	sender   email.Sender

	credentialService   *service.CredentialService
	sessionService      *service.SessionService
	subscriptionService *service.SubscriptionService
	newsletterService   *service.NewsletterService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "newsletter",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// OpenStore connects to the configured database driver without migrating it.
func OpenStore(cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		st, err := postgres.NewStore(cfg.DatabaseURL)
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("driver", cfg.DatabaseDriver).Wrap(err)
		}
		return st, nil
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", cfg.DatabaseFile)
		st, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("driver", cfg.DatabaseDriver).Wrap(err)
		}
		return st, nil
	default:
		return nil, oops.Code("CONFIG_INVALID").Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// New creates an Application with every dependency initialized.
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	app := &Application{
		cfg:     cfg,
		logger:  NewLogger(cfg),
		metrics: metrics.New(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initSessions(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initEmail(ctx); err != nil {
		_ = app.closeBackends()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.closeBackends()
		return nil, err
	}
	if err := app.initHTTP(); err != nil {
		_ = app.closeBackends()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("newsletter service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.closeBackends()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, then stops background work and closes
// the backends.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down newsletter service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("newsletter service stopped")
	return nil
}

// Handler exposes the fully wired router.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) closeBackends() error {
	if app.pool != nil {
		app.pool.Close()
	}

	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (app *Application) initDatabase() error {
	db, err := OpenStore(app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return oops.Code("MIGRATION_FAILED").With("driver", app.cfg.DatabaseDriver).Wrap(err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initSessions(ctx context.Context) error {
	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("env", "REDIS_URL").Wrapf(err, "invalid redis url")
	}
	app.redis = redis.NewClient(opts)
	app.sessions = session.NewRedisStore(app.redis, app.cfg.SessionTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := app.sessions.Ping(pingCtx); err != nil {
		// Not fatal: /readyz reports it until redis comes up.
		app.logger.Warn("session store is not reachable yet", "error", err)
	}
	return nil
}

func (app *Application) initEmail(ctx context.Context) error {
	switch app.cfg.EmailDriver {
	case EmailDriverSES:
		from, err := domain.ParseSubscriberEmail(app.cfg.EmailSender)
		if err != nil {
			return oops.Code("CONFIG_INVALID").With("env", "NEWSLETTER_EMAIL_SENDER").Wrap(err)
		}
		client, err := email.NewSESClient(ctx, email.SESConfig{
			Region:    app.cfg.AWSRegion,
			AccessKey: app.cfg.AWSAccessKey,
			SecretKey: app.cfg.AWSSecretKey,
			Endpoint:  app.cfg.SESEndpoint,
		})
		if err != nil {
			return oops.Code("EMAIL_INIT_FAILED").Wrap(err)
		}
		app.sender = email.NewSESSender(client, from, app.cfg.EmailTimeout)
		app.logger.Info("email delivery via SES", "sender", from.String())
	default:
		app.sender = email.NewLogSender(app.logger)
		app.logger.Warn("email delivery disabled, messages are only logged")
	}
	return nil
}

func (app *Application) initServices() error {
	templates, err := email.NewTemplates(app.cfg.BaseURL)
	if err != nil {
		return oops.Code("TEMPLATE_INIT_FAILED").Wrap(err)
	}

	app.pool = workerx.New(app.cfg.HashWorkers, app.cfg.HashTimeout)

	app.credentialService = &service.CredentialService{
		Store:   app.db,
		Pool:    app.pool,
		Metrics: app.metrics,
	}
	app.sessionService = &service.SessionService{
		Sessions:    app.sessions,
		Credentials: app.credentialService,
	}
	app.subscriptionService = &service.SubscriptionService{
		Store:     app.db,
		Sender:    app.sender,
		Templates: templates,
		Metrics:   app.metrics,
	}
	app.newsletterService = &service.NewsletterService{
		Store:       app.db,
		Sender:      app.sender,
		Credentials: app.credentialService,
		Metrics:     app.metrics,
	}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.metrics,
		app.cfg.HousekeepingInterval,
		app.cfg.PendingRetention,
	)
	return nil
}

func (app *Application) initHTTP() error {
	secret := []byte(app.cfg.HMACSecret)
	if len(secret) == 0 {
		// Validate only lets an empty secret through in dev. Flash cookies
		// do not survive a restart.
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return oops.Code("FLASH_INIT_FAILED").Wrap(err)
		}
		secret = []byte(generated)
		app.logger.Warn("NEWSLETTER_HMAC_SECRET is not set, using an ephemeral key")
	}
	flash, err := flashx.New(secret, app.cfg.SecureCookies)
	if err != nil {
		return oops.Code("FLASH_INIT_FAILED").Wrap(err)
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		BuildVersion:  BuildVersion,
		Store:         app.db,
		SessionStore:  app.sessions,
		Metrics:       app.metrics,
		Flash:         flash,
		SessionTTL:    app.cfg.SessionTTL,
		SecureCookies: app.cfg.SecureCookies,
		Logger:        app.logger,
	})

	router.CredentialService = app.credentialService
	router.SessionService = app.sessionService
	router.SubscriptionService = app.subscriptionService
	router.NewsletterService = app.newsletterService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
