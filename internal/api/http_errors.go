package api

import (
	"errors"
	"net/http"

	"github.com/joelnishanth/opsflow/internal/core"
)

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
	Code     string `json:"code,omitempty"`
}

// respondError maps a domain error to an HTTP status and writes the body.
// Validation maps to 400, state conflicts to 409, missing resources to 404,
// timeouts to 504, everything else to 500.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}

	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		resp.Category = string(domErr.Category)
		resp.Code = domErr.Code
		switch domErr.Category {
		case core.ErrCatValidation:
			status = http.StatusBadRequest
		case core.ErrCatState:
			status = http.StatusConflict
		case core.ErrCatNotFound:
			status = http.StatusNotFound
		case core.ErrCatTimeout:
			status = http.StatusGatewayTimeout
		}
	}

	respondJSON(w, status, resp)
}

// respondBadRequest writes a plain 400 for malformed request bodies.
func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
