package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/user-switcher/pkg/client"
	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/hostapi"
	"github.com/tendant/user-switcher/pkg/settings"
)

// AdminVerifier gates requests whose body could not be read
type AdminVerifier interface {
	Verify(ctx context.Context, creds hostapi.Credentials) (hostapi.User, error)
}

// Handle serves the configuration endpoints
type Handle struct {
	service  *settings.Service
	verifier AdminVerifier
}

func NewHandle(service *settings.Service, verifier AdminVerifier) Handle {
	return Handle{service: service, verifier: verifier}
}

// GetSettings returns the stored configuration
func (h Handle) GetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.service.Get(r.Context(), client.CredentialsFromRequest(r))
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, current)
}

// UpdateSettings replaces the stored configuration. Fields missing from the
// body take their defaults.
func (h Handle) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	creds := client.CredentialsFromRequest(r)

	next := settings.Defaults()
	if err := render.DecodeJSON(r.Body, &next); err != nil {
		slog.Warn("Invalid settings request", "error", err)
		if _, verr := h.verifier.Verify(r.Context(), creds); verr != nil {
			errors.Render(w, r, verr)
			return
		}
		errors.Render(w, r, errors.InvalidInput("body", "malformed JSON"))
		return
	}

	saved, err := h.service.Update(r.Context(), creds, next)
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, saved)
}

func Handler(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.GetSettings)
	r.Post("/", h.UpdateSettings)
	return r
}
