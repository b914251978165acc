package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/service"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/session"
	"github.com/aussiebroadwan/newsletter/pkg/httpx"
	"github.com/aussiebroadwan/newsletter/pkg/newslettersdk"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
)

const publishRealm = "publish"

// maxIssueBytes caps the JSON body of a publish request.
const maxIssueBytes = 1 << 20

// PublishHandler fans a newsletter issue out to every confirmed subscriber.
type PublishHandler struct {
	NewsletterService *service.NewsletterService
	SessionService    *service.SessionService
}

// ServeHTTP serves POST /newsletters. Callers authenticate with Basic
// credentials, or with an admin session cookie when no Authorization header
// is sent.
func (h *PublishHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var who domain.Identity
	if httpx.HasBasicAuth(r) {
		username, password, err := httpx.BasicCredentials(r)
		if err != nil {
			httpx.WriteBasicChallenge(w, publishRealm)
			return
		}

		who, err = h.NewsletterService.AuthenticateBasic(ctx, service.Credentials{Username: username, Password: password})
		switch {
		case err == nil:
		case errors.Is(err, service.ErrPublishAuth):
			log.Info("publish rejected: invalid credentials", slog.String("username", username))
			httpx.WriteBasicChallenge(w, publishRealm)
			return
		default:
			log.Error("failed to authenticate publisher", slog.Any("error", err))
			writeInternalError(w)
			return
		}
	} else {
		var err error
		who, err = h.SessionService.RequireAuthenticated(ctx, session.ReadCookie(r))
		switch {
		case err == nil:
		case errors.Is(err, service.ErrNotAuthenticated):
			httpx.WriteBasicChallenge(w, publishRealm)
			return
		default:
			log.Error("failed to load session", slog.Any("error", err))
			writeInternalError(w)
			return
		}
	}

	h.publish(w, r, who)
}

// HandleSession serves POST /admin/newsletters behind RequireSession.
func (h *PublishHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())
	h.publish(w, r, domain.Identity{UserID: userID})
}

func (h *PublishHandler) publish(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	ctx := slogx.WithUserID(r.Context(), who.UserID)
	log := slogx.FromContext(ctx)

	var req newslettersdk.Issue
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIssueBytes))
	if err := dec.Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}
	if !req.Validate() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "title, content.html and content.text are required")
		return
	}

	issue := domain.NewsletterIssue{Title: req.Title, HTML: req.Content.HTML, Text: req.Content.Text}
	report, err := h.NewsletterService.Publish(ctx, issue, who)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, newslettersdk.PublishReport{Delivered: report.Delivered, Skipped: report.Skipped})
	case errors.Is(err, service.ErrPublishAuth):
		httpx.WriteBasicChallenge(w, publishRealm)
	default:
		log.Error("failed to publish newsletter issue", slog.Any("error", err))
		writeInternalError(w)
	}
}
