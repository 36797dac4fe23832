package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/pedif/Quokka/internal/adapter/sqlite"
	"github.com/pedif/Quokka/internal/domain"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quokka.db")
	store, err := sqlite.Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func at(y int, m time.Month, d, h, min int) int64 {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC).UnixMilli()
}

func TestInsertAndQueryRange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := domain.Action{
		Title:   "morning",
		Start:   at(2024, 3, 15, 9, 0),
		Feeling: domain.Happiness,
		Comment: "walk",
	}.WithDuration(60)
	second := domain.Action{
		Start:   at(2024, 3, 15, 14, 0),
		Feeling: domain.Anger,
	}.WithDuration(30)

	if _, err := store.Insert(ctx, first); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.Insert(ctx, second); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.ActionsInRange(ctx, at(2024, 3, 15, 0, 0), at(2024, 3, 16, 0, 0))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d actions, want 2", len(got))
	}
	// Newest start first.
	if got[0].Feeling != domain.Anger || got[1].Feeling != domain.Happiness {
		t.Errorf("unexpected order: %s, %s", got[0].Feeling, got[1].Feeling)
	}
	if got[1].Title != "morning" || got[1].Comment != "walk" {
		t.Errorf("text fields lost: %+v", got[1])
	}
	if got[1].Duration() != 60 {
		t.Errorf("duration = %d, want 60", got[1].Duration())
	}

	// Query outside the range is empty.
	got, err = store.ActionsInRange(ctx, at(2024, 3, 16, 0, 0), at(2024, 3, 17, 0, 0))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d actions outside range, want 0", len(got))
	}
}

func TestOpenActionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if open, err := store.OpenAction(ctx, 0); err != nil || open != nil {
		t.Fatalf("expected no open action, got %+v, %v", open, err)
	}

	id, err := store.Insert(ctx, domain.Action{
		Start:   at(2024, 3, 15, 9, 0),
		Feeling: domain.Sadness,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	open, err := store.OpenAction(ctx, 0)
	if err != nil {
		t.Fatalf("open action: %v", err)
	}
	if open == nil || open.ID != id || !open.End.Open() {
		t.Fatalf("open action = %+v", open)
	}

	// Closing it makes the open query empty again.
	if err := store.Update(ctx, open.WithEnd(domain.EndAt(at(2024, 3, 15, 10, 0)))); err != nil {
		t.Fatalf("update: %v", err)
	}
	if open, err := store.OpenAction(ctx, 0); err != nil || open != nil {
		t.Fatalf("expected no open action after close, got %+v, %v", open, err)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, domain.Action{
		Start:   at(2024, 3, 15, 9, 0),
		Feeling: domain.Anxiety,
	}.WithDuration(15))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := store.ActionsInRange(ctx, 0, at(2024, 3, 16, 0, 0))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d actions after delete, want 0", len(got))
	}
}

func TestInsertRejectsInvalidAction(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, domain.Action{
		Start:   at(2024, 3, 15, 9, 0),
		Feeling: domain.NoInput,
	}); err == nil {
		t.Error("no_input action must not be persisted")
	}
}
