package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	"github.com/vuelacn/flightdesk/internal/agent"
	"github.com/vuelacn/flightdesk/internal/api"
	"github.com/vuelacn/flightdesk/internal/config"
	"github.com/vuelacn/flightdesk/internal/flights"
	"github.com/vuelacn/flightdesk/internal/storage/sqlite"
	"github.com/vuelacn/flightdesk/internal/tools"
	"github.com/vuelacn/flightdesk/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "flightdesk: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting flightdesk",
		logger.String("addr", cfg.Server.Addr()),
		logger.String("db", cfg.Storage.Path),
	)

	db, err := sqlite.Open(cfg.Storage.Path, cfg.Storage.BusyTimeoutMs, log)
	if err != nil {
		return fmt.Errorf("failed to open flight database: %w", err)
	}
	defer db.Close()

	// Schema initialization failure is not fatal to the server: operations
	// against an unreachable store fail cleanly per request instead.
	if err := sqlite.EnsureSchema(db, !cfg.Storage.SkipInitialSeed, log); err != nil {
		log.Error("Failed to initialize flight database schema", logger.Error(err))
	}

	flightStorage := sqlite.NewFlightStorage(db, log)
	reservationStorage := sqlite.NewReservationStorage(db, log)
	service := flights.NewService(flightStorage, reservationStorage, cfg.Storage.SeatsPerFlight, log)

	registry := tools.NewRegistry(log)
	if err := tools.RegisterFlightTools(registry, service); err != nil {
		return fmt.Errorf("failed to register flight tools: %w", err)
	}

	assistant := agent.NewService(cfg.Agent, registry, log)
	if assistant.Enabled() {
		log.Info("Chat assistant enabled", logger.String("model", cfg.Agent.Model))
	} else {
		log.Info("Chat assistant disabled")
	}

	router := api.NewRouter(service, registry, assistant, cfg, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}

	listener, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr(), err)
	}
	if cfg.Server.MaxConns > 0 {
		listener = netutil.LimitListener(listener, cfg.Server.MaxConns)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logger.String("addr", cfg.Server.Addr()))
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Info("Shutting down", logger.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
