package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/service"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/session"
	"github.com/aussiebroadwan/newsletter/pkg/flashx"
	"github.com/aussiebroadwan/newsletter/pkg/httpx"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
)

// LoginPageHandler renders the login form and any pending notice.
type LoginPageHandler struct {
	Flash *flashx.Flasher
}

func (h *LoginPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := pageData{Flash: takeFlash(h.Flash, w, r)}
	if err := renderPage(w, "login", data); err != nil {
		slogx.FromContext(r.Context()).Error("failed to render login page", slog.Any("error", err))
	}
}

// LoginHandler serves POST /login.
type LoginHandler struct {
	SessionService *service.SessionService
	Flash          *flashx.Flasher
	SessionTTL     time.Duration
	SecureCookies  bool
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		h.fail(w, r, "Authentication failed")
		return
	}

	creds := service.Credentials{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}
	log = log.With(slog.String("username", creds.Username))

	id, err := h.SessionService.Login(ctx, session.ReadCookie(r), creds)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Info("login failed: invalid credentials")
		h.fail(w, r, "Authentication failed")
		return
	default:
		log.Error("login failed", slog.Any("error", err))
		h.fail(w, r, "Something went wrong")
		return
	}

	session.WriteCookie(w, id, h.SessionTTL, h.SecureCookies)
	httpx.SeeOther(w, "/admin/dashboard")
}

func (h *LoginHandler) fail(w http.ResponseWriter, r *http.Request, notice string) {
	if err := h.Flash.Set(w, flashx.LevelError, notice); err != nil {
		slogx.FromContext(r.Context()).Error("failed to set flash message", slog.Any("error", err))
	}
	httpx.SeeOther(w, "/login")
}

// LogoutHandler serves POST /logout and POST /admin/logout.
type LogoutHandler struct {
	SessionService *service.SessionService
	Flash          *flashx.Flasher
	SecureCookies  bool
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.SessionService.Logout(ctx, session.ReadCookie(r)); err != nil {
		slogx.FromContext(ctx).Error("failed to log out", slog.Any("error", err))
		writeInternalError(w)
		return
	}

	session.ClearCookie(w, h.SecureCookies)
	if err := h.Flash.Set(w, flashx.LevelInfo, "You have successfully logged out."); err != nil {
		slogx.FromContext(ctx).Error("failed to set flash message", slog.Any("error", err))
	}
	httpx.SeeOther(w, "/login")
}
