package api

import (
	"net/http"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	useCoach := r.URL.Query().Get("use_ai_optimization") != "false"

	plan, err := s.schedule.GenerateWeeklyPlan(r.Context(), user.ID, useCoach)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

type microPlanRequest struct {
	AvailableMinutes int                 `json:"available_minutes"`
	EnergyLevel      *domain.EnergyLevel `json:"energy_level,omitempty"`
}

func (s *Server) handleMicroPlan(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req microPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	blocks, err := s.schedule.MicroPlan(r.Context(), user.ID, req.AvailableMinutes, req.EnergyLevel)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if blocks == nil {
		blocks = []contract.EphemeralSession{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": blocks})
}

func (s *Server) handleWorkloadAnalysis(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	report, err := s.workload.AnalyzePre(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalyzePlan(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var plan contract.WeeklyPlan
	if err := decodeJSON(r, &plan); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	report, err := s.workload.AnalyzePost(r.Context(), user.ID, &plan)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}
