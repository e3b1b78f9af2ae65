package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"lead-automation/config"
	"lead-automation/internal/browser"
	"lead-automation/internal/core"
	"lead-automation/internal/injector"
	"lead-automation/internal/payload"
	"lead-automation/internal/repository"
)

var configPath = flag.String("config", "", "Path to configuration file (optional)")

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: injector [-config path] '<injection payload JSON>'")
		logger.Fatal("No input payload provided")
	}

	// Parse and validate the payload before any browser is touched.
	p, err := payload.ParseInjection(args[0])
	if err != nil {
		logger.Fatal("Invalid injection payload", zap.Error(err))
	}

	logger.Info("Processing manual injection",
		zap.String("lead_id", p.LeadID),
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// The session archive is best-effort: without it the run still works,
	// only local persistence is lost.
	var repo core.RepositoryPort
	if r, err := repository.NewSQLiteRepository(cfg.Database.Path); err != nil {
		logger.Warn("Session archive unavailable, continuing without persistence", zap.Error(err))
	} else {
		repo = r
		defer func() {
			if err := r.Close(); err != nil {
				logger.Error("Failed to close session archive", zap.Error(err))
			}
		}()
	}

	logger.Info("Launching browser for manual injection...")
	opts := browser.InjectionOptions(cfg, &p.LeadRecord, logger)
	instance := browser.NewInstance(opts, cfg.Typing, cfg.Timing.FieldWait(), logger)
	if err := instance.Initialize(ctx); err != nil {
		logger.Fatal("Failed to initialize browser", zap.Error(err))
	}
	defer func() {
		if err := instance.Close(ctx); err != nil {
			logger.Error("Failed to close browser", zap.Error(err))
		}
	}()

	workflow := injector.NewWorkflow(instance, repo, cfg, logger, os.Stdout)
	if err := workflow.Run(ctx, p); err != nil {
		logger.Error("Manual injection session failed", zap.Error(err))
		if cerr := instance.Close(ctx); cerr != nil {
			logger.Error("Failed to close browser", zap.Error(cerr))
		}
		os.Exit(1)
	}

	logger.Info("Manual injection session completed successfully")
}
