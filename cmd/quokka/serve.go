package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pedif/Quokka/internal/app"
	"github.com/pedif/Quokka/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the journal API and repair overnight actions at midnight",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	// An action left open across midnight is repaired on startup, then
	// again every midnight while the server runs.
	if n, err := application.Journal().RepairOvernight(ctx); err != nil {
		logger.Error("startup repair failed", slog.String("error", err.Error()))
	} else if n > 0 {
		logger.Info("startup repair applied", slog.Int("operations", n))
	}

	srv := application.HTTPServer(cfg.HTTP.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("serving", slog.String("addr", cfg.HTTP.Addr))

	loc := application.Journal().Cal.Location()
	for {
		next := nextMidnight(time.Now().In(loc))
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		case <-time.After(time.Until(next)):
			if n, err := application.Journal().RepairOvernight(ctx); err != nil {
				logger.Error("midnight repair failed", slog.String("error", err.Error()))
			} else {
				logger.Info("midnight repair completed", slog.Int("operations", n))
			}
		}
	}
}

// nextMidnight returns the next midnight strictly after t in t's location,
// so a tick at midnight exactly never schedules a double run.
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).Add(24 * time.Hour)
}
