package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/user-switcher/pkg/client"
	"github.com/tendant/user-switcher/pkg/directory"
	"github.com/tendant/user-switcher/pkg/errors"
)

// Handle serves the user directory
type Handle struct {
	service *directory.Service
}

func NewHandle(service *directory.Service) Handle {
	return Handle{service: service}
}

// ListUsers handles GET /Users?search=
func (h Handle) ListUsers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	users, err := h.service.ListUsers(r.Context(), client.CredentialsFromRequest(r), search)
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, users)
}

func Handler(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.ListUsers)
	return r
}
