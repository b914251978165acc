package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/service"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/session"
	"github.com/aussiebroadwan/newsletter/pkg/httpx"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
)

// RequireSession admits only requests carrying an authenticated session.
// Anonymous browsers are sent to /login before the handler runs.
type RequireSession struct {
	Sessions *service.SessionService
}

func (s *RequireSession) Inspect(w http.ResponseWriter, r *http.Request) *http.Request {
	ctx := r.Context()

	who, err := s.Sessions.RequireAuthenticated(ctx, session.ReadCookie(r))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNotAuthenticated):
		httpx.SeeOther(w, "/login")
		return nil
	default:
		slogx.FromContext(ctx).Error("failed to load session", slog.Any("error", err))
		writeInternalError(w)
		return nil
	}

	ctx = httpx.WithUserID(ctx, who.UserID)
	ctx = slogx.WithUserID(ctx, who.UserID)
	return r.WithContext(ctx)
}

func writeInternalError(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Something went wrong")
}
