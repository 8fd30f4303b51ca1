// Package api exposes the scheduler over HTTP. Handlers stay thin: they
// decode, call a service, and encode; all policy lives in internal/service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/service"
)

// Server bundles the services behind the HTTP surface.
type Server struct {
	users     repository.UserRepo
	schedule  service.ScheduleService
	sessions  service.SessionService
	workload  service.WorkloadService
	calendar  service.CalendarService
	analytics service.AnalyticsService
	logger    *slog.Logger
}

func NewServer(
	users repository.UserRepo,
	schedule service.ScheduleService,
	sessions service.SessionService,
	workload service.WorkloadService,
	calendar service.CalendarService,
	analytics service.AnalyticsService,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		users:     users,
		schedule:  schedule,
		sessions:  sessions,
		workload:  workload,
		calendar:  calendar,
		analytics: analytics,
		logger:    logger,
	}
}

// Router builds the full route table. Feed, shared-plan and studying-now
// endpoints are public; everything else requires a bearer token.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	// Public: token validity is checked inside the handlers and never leaked
	// beyond a 404.
	r.HandleFunc("/schedule/calendar/feed", s.handleCalendarFeed).Methods(http.MethodGet)
	r.HandleFunc("/schedule/share/{token}", s.handleSharedPlan).Methods(http.MethodGet)
	r.HandleFunc("/schedule/studying-now", s.handleStudyingNow).Methods(http.MethodGet)

	auth := r.PathPrefix("/schedule").Subrouter()
	auth.Use(s.requireAuth)

	auth.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	auth.HandleFunc("/micro", s.handleMicroPlan).Methods(http.MethodPost)

	auth.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	auth.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	auth.HandleFunc("/sessions/{id}", s.handleUpdateSession).Methods(http.MethodPatch)
	auth.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
	auth.HandleFunc("/sessions/{id}/start", s.handleStartSession).Methods(http.MethodPost)

	auth.HandleFunc("/workload-analysis", s.handleWorkloadAnalysis).Methods(http.MethodGet)
	auth.HandleFunc("/analyze", s.handleAnalyzePlan).Methods(http.MethodPost)

	auth.HandleFunc("/calendar/download", s.handleCalendarDownload).Methods(http.MethodGet)
	auth.HandleFunc("/calendar/token", s.handleGetCalendarToken).Methods(http.MethodGet)
	auth.HandleFunc("/calendar/token", s.handleRotateCalendarToken).Methods(http.MethodPost)
	auth.HandleFunc("/calendar/token", s.handleDeleteCalendarToken).Methods(http.MethodDelete)

	auth.HandleFunc("/share", s.handleCreatePlanShare).Methods(http.MethodPost)
	auth.HandleFunc("/share", s.handleRevokePlanShare).Methods(http.MethodDelete)

	auth.HandleFunc("/analytics/overview", s.handleAnalyticsOverview).Methods(http.MethodGet)

	return r
}
