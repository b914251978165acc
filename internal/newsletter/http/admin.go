package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/service"
	"github.com/aussiebroadwan/newsletter/pkg/flashx"
	"github.com/aussiebroadwan/newsletter/pkg/httpx"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
)

// DashboardHandler greets the logged in admin.
type DashboardHandler struct {
	UserService *service.UserService
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, _ := httpx.UserIDFromContext(ctx)
	acct, err := h.UserService.GetUserByID(ctx, userID)
	if err != nil {
		log.Error("failed to load dashboard user", slog.Any("error", err))
		writeInternalError(w)
		return
	}

	if err := renderPage(w, "dashboard", pageData{Username: acct.Username}); err != nil {
		log.Error("failed to render dashboard", slog.Any("error", err))
	}
}

// PasswordHandler lets the logged in admin change their password.
type PasswordHandler struct {
	UserService       *service.UserService
	CredentialService *service.CredentialService
	Flash             *flashx.Flasher
}

func (h *PasswordHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	data := pageData{Flash: takeFlash(h.Flash, w, r)}
	if err := renderPage(w, "password", data); err != nil {
		slogx.FromContext(r.Context()).Error("failed to render password page", slog.Any("error", err))
	}
}

func (h *PasswordHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}
	current := r.PostForm.Get("current_password")
	next := r.PostForm.Get("new_password")
	check := r.PostForm.Get("new_password_check")

	if next != check {
		h.notice(w, r, flashx.LevelError, "You entered two different new passwords - the field values must match.")
		return
	}
	if next == "" {
		h.notice(w, r, flashx.LevelError, "The new password must not be empty.")
		return
	}

	userID, _ := httpx.UserIDFromContext(ctx)
	acct, err := h.UserService.GetUserByID(ctx, userID)
	if err != nil {
		log.Error("failed to load user for password change", slog.Any("error", err))
		writeInternalError(w)
		return
	}

	_, err = h.CredentialService.Validate(ctx, service.Credentials{Username: acct.Username, Password: current})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		h.notice(w, r, flashx.LevelError, "The current password is incorrect.")
		return
	default:
		log.Error("failed to verify current password", slog.Any("error", err))
		writeInternalError(w)
		return
	}

	if err := h.CredentialService.ChangePassword(ctx, userID, next); err != nil {
		log.Error("failed to change password", slog.Any("error", err))
		writeInternalError(w)
		return
	}

	h.notice(w, r, flashx.LevelInfo, "Your password has been changed.")
}

func (h *PasswordHandler) notice(w http.ResponseWriter, r *http.Request, level flashx.Level, text string) {
	if err := h.Flash.Set(w, level, text); err != nil {
		slogx.FromContext(r.Context()).Error("failed to set flash message", slog.Any("error", err))
	}
	httpx.SeeOther(w, "/admin/password")
}
