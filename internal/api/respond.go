package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/service"
)

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps service and repository errors onto the HTTP
// contract: validation 422, conflicts 409 with the blocking window,
// missing rows 404, forbidden transitions 400.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		s.writeJSON(w, http.StatusConflict, errorBody{
			Error: conflict.Error(),
			Details: map[string]any{
				"conflicts_with": conflict.With,
				"start_time":     conflict.Start,
				"end_time":       conflict.End,
			},
		})
	case errors.Is(err, service.ErrValidation):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrForbidden):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON rejects malformed and trailing input.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
