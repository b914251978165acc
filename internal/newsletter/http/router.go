package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/metrics"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/service"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store"
	"github.com/aussiebroadwan/newsletter/pkg/flashx"
	"github.com/aussiebroadwan/newsletter/pkg/httpx"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
)

// Pinger is a dependency /readyz checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger
	store         store.Store
	sessionStore  Pinger
	metrics       *metrics.Metrics
	flash         *flashx.Flasher
	sessionTTL    time.Duration
	secureCookies bool

	SessionService      *service.SessionService
	CredentialService   *service.CredentialService
	SubscriptionService *service.SubscriptionService
	NewsletterService   *service.NewsletterService
	UserService         *service.UserService
}

// RouterConfig carries the non-service dependencies of NewRouter.
type RouterConfig struct {
	BuildVersion  string
	Store         store.Store
	SessionStore  Pinger
	Metrics       *metrics.Metrics
	Flash         *flashx.Flasher
	SessionTTL    time.Duration
	SecureCookies bool
	Logger        *slog.Logger
}

func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		buildVersion:  cfg.BuildVersion,
		startTime:     time.Now(),
		logger:        cfg.Logger,
		store:         cfg.Store,
		sessionStore:  cfg.SessionStore,
		metrics:       cfg.Metrics,
		flash:         cfg.Flash,
		sessionTTL:    cfg.SessionTTL,
		secureCookies: cfg.SecureCookies,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSubscriptions()
	r.registerLogin()
	r.registerAdmin()
	r.registerNewsletters()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) requireSession() *RequireSession {
	return &RequireSession{Sessions: r.SessionService}
}

func (r *Router) registerSubscriptions() {
	subscribe := &SubscribeHandler{SubscriptionService: r.SubscriptionService}
	confirm := &ConfirmHandler{SubscriptionService: r.SubscriptionService}

	r.Mux.Handle("POST /subscriptions",
		httpx.Pipeline{httpx.RateLimitByIP(httpx.ModerateLimit)}.Then(subscribe),
	)
	r.Mux.Handle("GET /subscriptions/confirm",
		httpx.Pipeline{httpx.RateLimitByIP(httpx.ModerateLimit)}.Then(confirm),
	)
}

func (r *Router) registerLogin() {
	page := &LoginPageHandler{Flash: r.flash}
	login := &LoginHandler{
		SessionService: r.SessionService,
		Flash:          r.flash,
		SessionTTL:     r.sessionTTL,
		SecureCookies:  r.secureCookies,
	}
	logout := &LogoutHandler{
		SessionService: r.SessionService,
		Flash:          r.flash,
		SecureCookies:  r.secureCookies,
	}

	r.Mux.Handle("GET /login",
		httpx.Pipeline{httpx.RateLimitByIP(httpx.LenientLimit)}.Then(page),
	)
	// Limited per IP and username so one address cannot spray passwords.
	r.Mux.Handle("POST /login",
		httpx.Pipeline{httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username")}.Then(login),
	)

	loggedIn := httpx.Pipeline{r.requireSession(), httpx.RateLimitByUser(httpx.LenientLimit)}
	r.Mux.Handle("POST /logout", loggedIn.Then(logout))
	r.Mux.Handle("POST /admin/logout", loggedIn.Then(logout))
}

func (r *Router) registerAdmin() {
	dashboard := &DashboardHandler{UserService: r.UserService}
	password := &PasswordHandler{
		UserService:       r.UserService,
		CredentialService: r.CredentialService,
		Flash:             r.flash,
	}

	admin := httpx.Pipeline{r.requireSession(), httpx.RateLimitByUser(httpx.ModerateLimit)}

	r.Mux.Handle("GET /admin/dashboard", admin.Then(dashboard))
	r.Mux.Handle("GET /admin/password", admin.Then(http.HandlerFunc(password.HandleGet)))
	r.Mux.Handle("POST /admin/password", admin.Then(http.HandlerFunc(password.HandlePost)))
}

func (r *Router) registerNewsletters() {
	h := &PublishHandler{
		NewsletterService: r.NewsletterService,
		SessionService:    r.SessionService,
	}

	// Basic-Auth or session; the handler picks the entry point.
	r.Mux.Handle("POST /newsletters",
		httpx.Pipeline{httpx.RateLimitByIPAndBasicUser(httpx.StrictLimit)}.Then(h),
	)

	r.Mux.Handle("POST /admin/newsletters",
		httpx.Pipeline{r.requireSession(), httpx.RateLimitByUser(httpx.ModerateLimit)}.
			Then(http.HandlerFunc(h.HandleSession)),
	)
}

func (r *Router) registerSystem() {
	probes := httpx.Pipeline{httpx.RateLimitByIP(httpx.LenientLimit)}

	r.Mux.Handle("GET /livez", probes.Then(LivezHandler(r.startTime, r.buildVersion)))
	r.Mux.Handle("GET /readyz", probes.Then(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.sessionStore)))
	r.Mux.Handle("GET /health_check", HealthCheckHandler())

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
