package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smartstudy/companion/internal/contract"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	views, err := s.schedule.ListUpcomingSessions(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if views == nil {
		views = []contract.SessionView{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": views})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req contract.SessionCreate
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := s.sessions.Create(r.Context(), user.ID, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := mux.Vars(r)["id"]

	var req contract.SessionUpdate
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := s.sessions.Update(r.Context(), user.ID, id, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := mux.Vars(r)["id"]

	view, err := s.sessions.Start(r.Context(), user.ID, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := mux.Vars(r)["id"]

	if err := s.sessions.Delete(r.Context(), user.ID, id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
