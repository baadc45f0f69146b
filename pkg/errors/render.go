package errors

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorResponse is the JSON payload returned for every failed request.
type ErrorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

// Render writes err as an ErrorResponse. Structured errors keep their own
// status and message; anything else becomes an opaque 500.
func Render(w http.ResponseWriter, r *http.Request, err error) {
	var structuredErr *Error
	if !errors.As(err, &structuredErr) {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Error: "Internal server error",
			Code:  ErrCodeInternal,
		})
		return
	}

	render.Status(r, structuredErr.HTTPStatusCode())
	render.JSON(w, r, ErrorResponse{
		Error: structuredErr.Message,
		Code:  structuredErr.Code,
	})
}
