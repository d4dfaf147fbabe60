package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"vip-content-platform/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses. Anything unmatched is
// a 500 with a generic body so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, domain.ErrStateConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "state conflict"})
	case errors.Is(err, domain.ErrAlreadyVIP):
		writeJSON(w, http.StatusConflict, errorResponse{Error: domain.ErrAlreadyVIP.Error()})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid argument"})
	case errors.Is(err, domain.ErrNotChatMember):
		// Membership leaks existence, so a non-member sees a 404.
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrChatNotAccepted):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "chat not accepted"})
	case errors.Is(err, domain.ErrGatewayFailure):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "payment gateway unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
