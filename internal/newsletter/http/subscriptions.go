package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/service"
	"github.com/aussiebroadwan/newsletter/pkg/httpx"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
)

// SubscribeHandler serves POST /subscriptions (form: email, name).
type SubscribeHandler struct {
	SubscriptionService *service.SubscriptionService
}

func (h *SubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}

	err := h.SubscriptionService.Subscribe(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("name"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, service.ErrValidation):
		description := "Invalid subscription request"
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			description = verr.Error()
		}
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", description)
	default:
		log.Error("failed to subscribe", slog.Any("error", err))
		writeInternalError(w)
	}
}

// ConfirmHandler serves GET /subscriptions/confirm?subscription_token=...
type ConfirmHandler struct {
	SubscriptionService *service.SubscriptionService
}

func (h *ConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	token := r.URL.Query().Get("subscription_token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "subscription_token is required")
		return
	}

	err := h.SubscriptionService.Confirm(r.Context(), token)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, service.ErrUnknownToken):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Unknown subscription token")
	default:
		log.Error("failed to confirm subscription", slog.Any("error", err))
		writeInternalError(w)
	}
}
