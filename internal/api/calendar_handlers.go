package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

func (s *Server) writeCalendar(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="study-plan.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("writing calendar response", "error", err)
	}
}

// handleCalendarFeed serves the public feed. Any token problem is a plain
// 404 so token validity is never leaked.
func (s *Server) handleCalendarFeed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	data, err := s.calendar.Feed(r.Context(), token)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.writeCalendar(w, data)
}

func (s *Server) handleCalendarDownload(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	token, err := s.calendar.EnsureCalendarToken(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	data, err := s.calendar.Feed(r.Context(), token)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeCalendar(w, data)
}

type calendarTokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleGetCalendarToken(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	token, err := s.calendar.EnsureCalendarToken(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, calendarTokenResponse{Token: token})
}

func (s *Server) handleRotateCalendarToken(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	token, err := s.calendar.RotateCalendarToken(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, calendarTokenResponse{Token: token})
}

func (s *Server) handleDeleteCalendarToken(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if err := s.calendar.DeleteCalendarToken(r.Context(), user.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type planShareRequest struct {
	Days int `json:"days"`
}

type planShareResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleCreatePlanShare(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req planShareRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	token, expires, err := s.calendar.CreatePlanShare(r.Context(), user.ID, req.Days)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, planShareResponse{Token: token, ExpiresAt: expires})
}

func (s *Server) handleRevokePlanShare(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if err := s.calendar.RevokePlanShare(r.Context(), user.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSharedPlan serves the public read-only week. Expired or unknown
// tokens read as 404.
func (s *Server) handleSharedPlan(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	plan, err := s.calendar.SharedPlan(r.Context(), token)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}
