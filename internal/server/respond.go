package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/voyagen/radiodir/internal/store"
)

// APIError is the standard error envelope for all error responses.
type APIError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The header is already out; an encode failure here means the client went away.
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeErr(w http.ResponseWriter, status int, err error) {
	detail := err.Error()
	if status >= 500 {
		s.log.Error("request failed", zap.Int("status", status), zap.Error(err))
		detail = "internal error"
	}
	writeJSON(w, status, APIError{
		Status: status,
		Error:  http.StatusText(status),
		Detail: detail,
	})
}

// writeServiceErr maps store sentinels onto HTTP statuses.
func (s *Server) writeServiceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeErr(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrConflict):
		s.writeErr(w, http.StatusConflict, err)
	default:
		s.writeErr(w, http.StatusInternalServerError, err)
	}
}
