package ports

import (
	"context"

	"github.com/pedif/Quokka/internal/domain"
)

// Store is the persistence contract the engine requires. Implementations
// must keep at most one open action; the reconcilers guarantee this as long
// as every mutation flows through them.
type Store interface {
	// ActionsInRange returns actions whose start lies in [start, end),
	// most recent start first.
	ActionsInRange(ctx context.Context, start, end int64) ([]domain.Action, error)

	// OpenAction returns the single still-open action starting at or after
	// since, or nil when there is none.
	OpenAction(ctx context.Context, since int64) (*domain.Action, error)

	// Insert persists a new action and returns its assigned id.
	Insert(ctx context.Context, a domain.Action) (int64, error)

	Update(ctx context.Context, a domain.Action) error

	Delete(ctx context.Context, id int64) error
}
