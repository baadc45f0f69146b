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
	"github.com/tendant/user-switcher/pkg/impersonate"
)

// AdminVerifier gates requests whose body could not be read
type AdminVerifier interface {
	Verify(ctx context.Context, creds hostapi.Credentials) (hostapi.User, error)
}

// ImpersonateRequest is the body of POST /Impersonate
type ImpersonateRequest struct {
	UserId string `json:"userId"`
}

// ImpersonateResponse carries the URL that opens a session as the target user
type ImpersonateResponse struct {
	ImpersonationUrl string `json:"impersonationUrl"`
}

// Handle serves impersonation requests
type Handle struct {
	service  *impersonate.Service
	verifier AdminVerifier
}

// NewHandle creates an impersonation handle
func NewHandle(service *impersonate.Service, verifier AdminVerifier) Handle {
	return Handle{service: service, verifier: verifier}
}

// Impersonate runs the quick connect handshake on behalf of the target user
func (h Handle) Impersonate(w http.ResponseWriter, r *http.Request) {
	creds := client.CredentialsFromRequest(r)

	var req ImpersonateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		slog.Warn("Invalid impersonate request", "error", err)
		if _, verr := h.verifier.Verify(r.Context(), creds); verr != nil {
			errors.Render(w, r, verr)
			return
		}
		errors.Render(w, r, errors.InvalidInput("body", "malformed JSON"))
		return
	}

	impersonationURL, err := h.service.Impersonate(r.Context(), creds, req.UserId)
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ImpersonateResponse{ImpersonationUrl: impersonationURL})
}

// Handler returns the impersonation routes
func Handler(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.Impersonate)
	return r
}
