package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	storefront "github.com/nlstn/go-storefront"
	"github.com/nlstn/go-storefront/internal/config"
	"github.com/nlstn/go-storefront/internal/repository"
)

const (
	addrFlag     = "addr"
	logLevelFlag = "log-level"
)

var serveFlags = map[string]cobraflags.Flag{
	configFlag: configFlagDef(),
	addrFlag: &cobraflags.StringFlag{
		Name:  addrFlag,
		Value: "",
		Usage: "Listen address, overrides server.addr",
	},
	logLevelFlag: &cobraflags.StringFlag{
		Name:  logLevelFlag,
		Value: "",
		Usage: "Log level (debug, info, warn, error), overrides log.level",
	},
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL API over HTTP",
		RunE:  runServe,
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveFlags[configFlag].GetString(), map[string]string{
		"server.addr": serveFlags[addrFlag].GetString(),
		"log.level":   serveFlags[logLevelFlag].GetString(),
	})
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	service, err := newService(cfg, logger)
	defer func() {
		if err := repository.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(service, cfg, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// newService builds the service on the process-wide database handle.
func newService(cfg *config.Config, logger *slog.Logger) (*storefront.Service, error) {
	db, err := repository.Default(cfg.Database.RepositoryOptions())
	if err != nil {
		return nil, err
	}
	service, err := storefront.NewService(db)
	if err != nil {
		return nil, err
	}
	service.SetLogger(logger)

	err = service.SetObservability(storefront.ObservabilityConfig{
		TracerProvider:          otel.GetTracerProvider(),
		MeterProvider:           otel.GetMeterProvider(),
		ServiceName:             cfg.Observability.ServiceName,
		EnableDetailedDBTracing: cfg.Observability.DetailedDBTracing,
		EnableServerTiming:      cfg.Observability.ServerTiming,
	})
	if err != nil {
		return nil, err
	}
	return service, nil
}
