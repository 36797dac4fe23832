package app

import (
	"context"
	"fmt"
	"log/slog"

	msql "github.com/pedif/Quokka/internal/adapter/mysql"
	"github.com/pedif/Quokka/internal/adapter/sqlite"
	"github.com/pedif/Quokka/internal/config"
	"github.com/pedif/Quokka/internal/domain"
	"github.com/pedif/Quokka/internal/migrate"
	"github.com/pedif/Quokka/internal/ports"
	"github.com/pedif/Quokka/internal/usecase"
)

// App wires the configured store into the journal use case.
type App struct {
	log     *slog.Logger
	journal *usecase.Journal
	closer  interface{ Close() error }
}

func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid QUOKKA_TZ %q: %w", cfg.Timezone, err)
	}

	var (
		store  ports.Store
		closer interface{ Close() error }
	)
	switch cfg.DB.Driver {
	case "mysql":
		// Run migrations before opening the store for use.
		if err := migrate.Run(ctx, cfg.DB.MySQLDSN, log); err != nil {
			return nil, err
		}
		s, err := msql.NewStore(ctx, cfg.DB.MySQLDSN, log)
		if err != nil {
			return nil, err
		}
		store, closer = s, s
	default:
		s, err := sqlite.Open(cfg.DB.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		store, closer = s, s
	}

	journal := &usecase.Journal{
		Log:   log,
		Store: store,
		Cal:   domain.NewCalendar(loc),
	}
	return &App{log: log, journal: journal, closer: closer}, nil
}

// Journal exposes the wired use case.
func (a *App) Journal() *usecase.Journal { return a.journal }

// Close releases the underlying store.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
