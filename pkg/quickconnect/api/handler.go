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
	"github.com/tendant/user-switcher/pkg/quickconnect"
)

// AdminVerifier gates requests whose body could not be read
type AdminVerifier interface {
	Verify(ctx context.Context, creds hostapi.Credentials) (hostapi.User, error)
}

// AuthorizeCodeRequest is the body of POST /AuthorizeCode
type AuthorizeCodeRequest struct {
	Code   string `json:"code"`
	UserId string `json:"userId"`
}

// SuccessResponse acknowledges a relayed authorization
type SuccessResponse struct {
	Ok bool `json:"ok"`
}

// Handle serves quick connect relay requests
type Handle struct {
	service  *quickconnect.Service
	verifier AdminVerifier
}

// NewHandle creates a quick connect handle
func NewHandle(service *quickconnect.Service, verifier AdminVerifier) Handle {
	return Handle{service: service, verifier: verifier}
}

// AuthorizeCode approves a pending quick connect code for the chosen user
func (h Handle) AuthorizeCode(w http.ResponseWriter, r *http.Request) {
	creds := client.CredentialsFromRequest(r)

	var req AuthorizeCodeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		slog.Warn("Invalid authorize code request", "error", err)
		// Callers that are not admins learn nothing about the body
		if _, verr := h.verifier.Verify(r.Context(), creds); verr != nil {
			errors.Render(w, r, verr)
			return
		}
		errors.Render(w, r, errors.InvalidInput("body", "malformed JSON"))
		return
	}

	if err := h.service.AuthorizeCode(r.Context(), creds, req.Code, req.UserId); err != nil {
		errors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SuccessResponse{Ok: true})
}

// Handler returns the routes for the quick connect relay
func Handler(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.AuthorizeCode)
	return r
}
