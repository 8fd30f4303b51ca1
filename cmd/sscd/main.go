package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/smartstudy/companion/internal/api"
	"github.com/smartstudy/companion/internal/cli"
	"github.com/smartstudy/companion/internal/coach"
	"github.com/smartstudy/companion/internal/db"
	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// DB path: env var or default ~/.ssc/companion.db
	dbPath := os.Getenv("SSC_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".ssc", "companion.db")
	}

	addr := os.Getenv("SSC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	// Wire repositories.
	userRepo := repository.NewSQLiteUserRepo(database)
	subjectRepo := repository.NewSQLiteSubjectRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	sessionRepo := repository.NewSQLiteSessionRepo(database)
	constraintRepo := repository.NewSQLiteConstraintRepo(database)
	energyRepo := repository.NewSQLiteEnergyRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// The coach adapter is a pluggable optimization hook. Without an
	// implementation configured, the noop adapter keeps every plan
	// deterministic.
	coachCfg := coach.LoadConfig()
	var adapter coach.Adapter = coach.NoopAdapter{}
	if coachCfg.Enabled {
		logger.Info("coach optimization enabled with no adapter built in; plans stay deterministic",
			"endpoint", coachCfg.Endpoint, "model", coachCfg.Model)
	}

	// Wire services.
	scheduleSvc := service.NewScheduleService(userRepo, subjectRepo, taskRepo,
		sessionRepo, constraintRepo, energyRepo, uow, adapter, logger)
	sessionSvc := service.NewSessionService(userRepo, subjectRepo, taskRepo, sessionRepo, uow)
	workloadSvc := service.NewWorkloadService(userRepo, subjectRepo, taskRepo, sessionRepo, constraintRepo)
	calendarSvc := service.NewCalendarService(userRepo, subjectRepo, taskRepo, sessionRepo, constraintRepo)
	analyticsSvc := service.NewAnalyticsService(userRepo, subjectRepo, taskRepo, sessionRepo)

	server := api.NewServer(userRepo, scheduleSvc, sessionSvc, workloadSvc,
		calendarSvc, analyticsSvc, logger)

	app := &cli.App{
		Users:       userRepo,
		Schedule:    scheduleSvc,
		Workload:    workloadSvc,
		Calendar:    calendarSvc,
		Analytics:   analyticsSvc,
		Handler:     server.Router(),
		DefaultAddr: addr,
		Logger:      logger,
	}

	return cli.NewRootCmd(app).Execute()
}
