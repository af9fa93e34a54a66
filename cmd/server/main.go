/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment
  2. Initialize SQLite store
  3. Build the engine (validator, reconciler, aggregator) and handler
  4. Configure HTTP router
  5. Start the daily report scheduler
  6. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler and wait for an in-flight report run
  4. Close database connection
  5. Exit

CONFIGURATION:
  All config via environment variables; see config/config.go for the
  full list and defaults (SERVER_PORT, DB_PATH, WORK_START, ...).

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Daily report scheduler
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/logger"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.LocalDev)

	shift, err := cfg.ShiftConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid shift configuration")
	}
	payrollCfg, err := cfg.PayrollConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid payroll configuration")
	}
	schedulerCfg, err := cfg.SchedulerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scheduler configuration")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	if err := os.MkdirAll(cfg.ReportsDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ReportsDir).Msg("failed to create reports dir")
	}

	clock := attendance.SystemClock{}

	handler := api.NewHandler(store, shift, payrollCfg, clock)
	handler.Office = cfg.Office()
	handler.ReportsDir = cfg.ReportsDir

	scheduler := api.NewReportScheduler(store, store, api.LogPublisher{}, schedulerCfg, clock)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
