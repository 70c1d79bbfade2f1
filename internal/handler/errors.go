package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/subway-lines/internal/domain"
)

// ErrorDetail is the machine-readable code and human-readable message of an error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// sectionErrors maps each section sentinel to its response code.
var sectionErrors = []struct {
	err  error
	code string
}{
	{domain.ErrInvalidSection, "invalid_section"},
	{domain.ErrInvalidDistance, "invalid_distance"},
	{domain.ErrInvalidRemoval, "invalid_removal"},
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// requestError responds to a request rejected before reaching the service
// layer (e.g. missing or malformed body).
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", message)
}

// paramError responds to a path or query parameter that failed to bind.
func paramError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "bad_request", err.Error())
}

// serviceError maps an error returned by a service to an HTTP response.
// resource ("line", "station") names what was being looked up when the
// error carries no detail of its own.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		msg := unwrapMessage(err)
		if msg == domain.ErrNotFound.Error() {
			msg = resource + " not found"
		}
		writeError(w, http.StatusNotFound, "not_found", msg)
		return
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
		return
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", resource+" conflicts with existing data")
		return
	}
	for _, se := range sectionErrors {
		if errors.Is(err, se.err) {
			writeError(w, http.StatusUnprocessableEntity, se.code, unwrapMessage(err))
			return
		}
	}

	s.log.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.LineService.Update: validation error: name is required" → "name is required"
// Call-site prefixes are dropped, then a leading sentinel text when a reason follows it.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	// A joined error (repo conflict) spans lines; the first line is the sentinel chain.
	msg, _, _ := strings.Cut(err.Error(), "\n")
	parts := strings.Split(msg, ": ")
	for len(parts) > 1 && isCallSite(parts[0]) {
		parts = parts[1:]
	}
	if len(parts) > 1 && isSentinel(parts[0]) {
		parts = parts[1:]
	}
	return strings.Join(parts, ": ")
}

func isCallSite(s string) bool {
	return strings.HasPrefix(s, "service.") || strings.HasPrefix(s, "repo.")
}

func isSentinel(s string) bool {
	switch s {
	case domain.ErrValidation.Error(),
		domain.ErrInvalidSection.Error(),
		domain.ErrInvalidDistance.Error(),
		domain.ErrInvalidRemoval.Error():
		return true
	}
	return false
}
