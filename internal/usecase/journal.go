package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pedif/Quokka/internal/domain"
	"github.com/pedif/Quokka/internal/ports"
	"github.com/pedif/Quokka/internal/reconcile"
)

// Journal coordinates the pure engine with the action store. It holds no
// state of its own: the ongoing action and the day budget are loaded fresh
// for every reconciliation.
type Journal struct {
	Log   *slog.Logger
	Store ports.Store
	Cal   domain.Calendar

	// Now overrides the clock in tests; nil means wall clock.
	Now func() int64
}

func (j *Journal) now() int64 {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now().UnixMilli()
}

// Day returns the aggregate for the day starting at dayID.
func (j *Journal) Day(ctx context.Context, dayID int64) (domain.Day, error) {
	if j.Store == nil {
		return domain.Day{}, errors.New("journal not initialized: missing store")
	}
	actions, err := j.Store.ActionsInRange(ctx, dayID, domain.Tomorrow(dayID))
	if err != nil {
		return domain.Day{}, fmt.Errorf("loading day %d: %w", dayID, err)
	}
	return domain.DaysBetween(j.Cal, actions, dayID, dayID)[0], nil
}

// Week returns the last seven days plus today, most recent first.
func (j *Journal) Week(ctx context.Context) ([]domain.Day, error) {
	if j.Store == nil {
		return nil, errors.New("journal not initialized: missing store")
	}
	now := j.now()
	startOfToday := j.Cal.StartOfDay(now)
	firstDay := startOfToday - 7*domain.DayMillis
	actions, err := j.Store.ActionsInRange(ctx, firstDay, domain.Tomorrow(startOfToday))
	if err != nil {
		return nil, fmt.Errorf("loading week: %w", err)
	}
	return domain.DaysBetween(j.Cal, actions, firstDay, now), nil
}

// Days returns the aggregates for every calendar day between start and end,
// most recent first. An inverted range yields no days.
func (j *Journal) Days(ctx context.Context, start, end int64) ([]domain.Day, error) {
	if j.Store == nil {
		return nil, errors.New("journal not initialized: missing store")
	}
	actions, err := j.Store.ActionsInRange(ctx, j.Cal.StartOfDay(start), j.Cal.EndOfDay(end)+1)
	if err != nil {
		return nil, fmt.Errorf("loading days: %w", err)
	}
	return domain.DaysBetween(j.Cal, actions, start, end), nil
}

// RepairOvernight splits any open action that has crossed midnight so every
// elapsed day owns a closed record and today owns the still-open one. Safe
// to call on every load; when nothing crossed midnight it writes nothing.
// Returns the number of store mutations applied.
func (j *Journal) RepairOvernight(ctx context.Context) (int, error) {
	return j.splitOngoing(ctx, false)
}

// FinishOngoing ends the open action at the current instant, splitting it
// first if it spans several days. Returns the number of store mutations
// applied; zero means there was no open action.
func (j *Journal) FinishOngoing(ctx context.Context) (int, error) {
	return j.splitOngoing(ctx, true)
}

func (j *Journal) splitOngoing(ctx context.Context, finishNow bool) (int, error) {
	if j.Store == nil {
		return 0, errors.New("journal not initialized: missing store")
	}
	ongoing, err := j.Store.OpenAction(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("loading open action: %w", err)
	}
	if ongoing == nil {
		return 0, nil
	}
	ops := reconcile.SplitOvernight(j.Cal, *ongoing, j.now(), finishNow)
	if err := j.apply(ctx, ops); err != nil {
		return 0, err
	}
	if len(ops) > 0 {
		j.Log.Info("reconciled open action",
			slog.Int64("id", ongoing.ID),
			slog.Int("ops", len(ops)),
			slog.Bool("finished", finishNow))
	}
	return len(ops), nil
}

// Save runs the draft through the save reconciler and, when admitted,
// applies the resulting mutations. The returned result carries the clamped
// draft, the outcome and any validation notice for the caller to surface.
func (j *Journal) Save(ctx context.Context, draft domain.Action, dayID int64, confirmEnd bool) (reconcile.SaveResult, error) {
	if j.Store == nil {
		return reconcile.SaveResult{}, errors.New("journal not initialized: missing store")
	}
	if err := draft.Validate(); err != nil {
		return reconcile.SaveResult{}, err
	}

	ongoing, err := j.Store.OpenAction(ctx, 0)
	if err != nil {
		return reconcile.SaveResult{}, fmt.Errorf("loading open action: %w", err)
	}
	actions, err := j.Store.ActionsInRange(ctx, dayID, domain.Tomorrow(dayID))
	if err != nil {
		return reconcile.SaveResult{}, fmt.Errorf("loading day %d: %w", dayID, err)
	}

	// Remaining capacity of the day, not counting the stored version of the
	// draft itself when this is an edit.
	budget := domain.DayMinutes
	for _, a := range actions {
		if a.ID != 0 && a.ID == draft.ID {
			continue
		}
		budget -= a.Duration()
	}

	res := reconcile.Save(j.Cal, draft, dayID, ongoing, budget, j.now(), confirmEnd)
	if res.Outcome != reconcile.Persisted {
		j.Log.Debug("save not persisted", slog.String("outcome", res.Outcome.String()))
		return res, nil
	}
	if err := j.apply(ctx, res.Ops); err != nil {
		return reconcile.SaveResult{}, err
	}
	return res, nil
}

// NewDraft seeds an empty action for the day starting at dayID, placed at
// the current wall-clock time on that day. Drafts for past days default to a
// 30 minute duration; a draft for today starts open.
func (j *Journal) NewDraft(dayID int64) domain.Action {
	now := j.now()
	draft := domain.Action{
		Start:   j.Cal.AtSameTime(dayID, now),
		Feeling: domain.Happiness,
	}
	if j.Cal.StartOfDay(dayID) != j.Cal.StartOfDay(now) {
		draft = draft.WithDuration(30)
	}
	return draft
}

// Delete removes an action by id.
func (j *Journal) Delete(ctx context.Context, id int64) error {
	if j.Store == nil {
		return errors.New("journal not initialized: missing store")
	}
	return j.Store.Delete(ctx, id)
}

func (j *Journal) apply(ctx context.Context, ops []reconcile.Op) error {
	for _, op := range ops {
		var err error
		switch op.Kind {
		case reconcile.OpInsert:
			_, err = j.Store.Insert(ctx, op.Action)
		case reconcile.OpUpdate:
			err = j.Store.Update(ctx, op.Action)
		case reconcile.OpDelete:
			err = j.Store.Delete(ctx, op.Action.ID)
		}
		if err != nil {
			return fmt.Errorf("applying %s for action %d: %w", op.Kind, op.Action.ID, err)
		}
	}
	return nil
}
