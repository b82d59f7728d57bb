package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/usawrapco/shoptrack/internal/api"
	"github.com/usawrapco/shoptrack/internal/comp"
	"github.com/usawrapco/shoptrack/internal/config"
	"github.com/usawrapco/shoptrack/internal/database"
	"github.com/usawrapco/shoptrack/internal/lifecycle"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP server exposing the job pipeline, bidding, and payroll API.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := context.Background()
	dbClient, err := database.NewClient(ctx, cfg.Database.ProjectID, cfg.Database.Instance, cfg.Database.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database client: %w", err)
	}
	defer dbClient.Close()
	log.WithFields(map[string]interface{}{
		"project":  cfg.Database.ProjectID,
		"instance": cfg.Database.Instance,
		"database": cfg.Database.Database,
	}).Info("connected to database")

	plan, err := loadPlan(cfg)
	if err != nil {
		return err
	}

	bus := lifecycle.NewDispatcher(log, lifecycle.NotifierFunc(func(_ context.Context, ev lifecycle.Event) error {
		log.WithFields(map[string]interface{}{
			"kind": ev.Kind,
			"org":  ev.OrgID,
			"job":  ev.JobID,
			"from": ev.From,
			"to":   ev.To,
		}).Info("job transition")
		return nil
	}))
	defer bus.Close()

	engine := lifecycle.NewEngine(dbClient, plan, bus)
	handler := api.NewHandler(dbClient, engine, plan, log)
	router := api.NewRouter(handler)

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	<-sigCtx.Done()
	log.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// loadPlan resolves the commission rate plan from config, falling back to
// built-in defaults.
func loadPlan(cfg *config.Config) (*comp.RatePlan, error) {
	if cfg.RatePlanPath == "" {
		return comp.DefaultRatePlan(), nil
	}
	plan, err := comp.LoadRatePlan(cfg.RatePlanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate plan: %w", err)
	}
	log.WithField("path", cfg.RatePlanPath).Info("loaded rate plan")
	return plan, nil
}
