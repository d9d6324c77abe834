package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/binlid/internal/logging"
	"github.com/mesh-intelligence/binlid/pkg/types"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON writes v as JSON with the given status code. Encoding errors are
// discarded; the header is already on the wire by then.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps an Inventory error to a status code and writes it. Server
// side failures are logged and replied to with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, fallback logrus.FieldLogger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), fallback).
			WithError(err).
			WithField("kind", types.KindOf(err)).
			Error("request failed")
		writeJSONError(w, status, http.StatusText(status))
		return
	}
	writeJSONError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrReferentialIntegrity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
