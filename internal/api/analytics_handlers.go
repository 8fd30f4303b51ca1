package api

import "net/http"

func (s *Server) handleAnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	overview, err := s.analytics.Overview(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleStudyingNow(w http.ResponseWriter, r *http.Request) {
	count, err := s.analytics.StudyingNow(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"studying_now": count})
}
