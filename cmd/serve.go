package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rashkid-n/datagenesis-53/internal/api"
	"github.com/rashkid-n/datagenesis-53/internal/archive"
	"github.com/rashkid-n/datagenesis-53/internal/config"
	"github.com/rashkid-n/datagenesis-53/internal/infrastructure/sqlite"
	"github.com/rashkid-n/datagenesis-53/internal/jobstore"
	"github.com/rashkid-n/datagenesis-53/internal/log"
	"github.com/rashkid-n/datagenesis-53/internal/orchestrator"
	"github.com/rashkid-n/datagenesis-53/internal/progress"
	"github.com/rashkid-n/datagenesis-53/internal/service"
	"github.com/rashkid-n/datagenesis-53/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation service",
	Long: `Run the generation service as an HTTP server. Clients submit
schemas with POST /generate, poll GET /status/{id}, and stream progress
events over SSE from GET /events.

Example:
  datagenesis serve                  # Listen on the configured address
  datagenesis serve --addr :8080     # Listen on port 8080`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	// Initialize logging if debug mode enabled (via flag or env var)
	debug := os.Getenv("DATAGENESIS_DEBUG") != "" || debugFlag
	if debug {
		logPath := os.Getenv("DATAGENESIS_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}

		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()

		log.Info(log.CatConfig, "Datagenesis serving", "debug", true, "logPath", logPath)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownTracing, err := tracing.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	store := jobstore.NewMemoryStore(cfg.Store.TTL)
	bus := progress.NewBus()

	var arc archive.JobArchive
	if cfg.Archive.Enabled {
		path := cfg.Archive.Path
		if path == "" {
			path = config.DefaultArchivePath()
		}
		db, err := sqlite.NewDB(path)
		if err != nil {
			return fmt.Errorf("opening job archive: %w", err)
		}
		defer func() { _ = db.Close() }()
		arc = sqlite.NewJobRepository(db)
	}

	orch := orchestrator.New(orchestrator.Options{
		Store:         store,
		Bus:           bus,
		MaxRows:       cfg.Generation.MaxRows,
		MaxConcurrent: int64(cfg.Generation.MaxConcurrent),
	})
	svc := service.New(store, orch, bus, arc)

	handler := api.NewHandler(api.HandlerConfig{
		Service:         svc,
		EventBufferSize: cfg.Progress.BufferSize,
		DefaultRowCount: cfg.Generation.DefaultRowCount,
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	fmt.Printf("Datagenesis listening on %s\n", addr)
	fmt.Println("Press Ctrl+C to stop")

	select {
	case sig := <-sigCh:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown: stop accepting requests, let in-flight runs
	// finish so their terminal records reach the archive.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(log.CatHTTP, "Error stopping HTTP server", "error", err)
	}

	svc.Wait()
	bus.Close()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error(log.CatTrace, "Error flushing traces", "error", err)
	}

	fmt.Println("Server stopped")
	return nil
}
