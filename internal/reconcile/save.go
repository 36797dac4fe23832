package reconcile

import (
	"errors"

	"github.com/pedif/Quokka/internal/domain"
)

// ErrStartBeforeOngoing is the non-fatal notice attached when a draft's
// start had to be floored to the ongoing action's start. The save proceeds.
var ErrStartBeforeOngoing = errors.New("action cannot start before the ongoing action")

// Outcome is the decision of a save reconciliation.
type Outcome int

const (
	// Persisted means the draft (possibly clamped) may be written; Ops
	// carries the mutations in order.
	Persisted Outcome = iota
	// Rejected means the day has no capacity left and nothing is written.
	Rejected
	// NeedsConfirmation means an ongoing action would have to be ended
	// and the user has not agreed yet. Nothing is written; the caller
	// re-invokes with confirmEnd once the user decides.
	NeedsConfirmation
)

func (o Outcome) String() string {
	switch o {
	case Persisted:
		return "persisted"
	case Rejected:
		return "rejected"
	case NeedsConfirmation:
		return "needs_confirmation"
	}
	return "unknown"
}

// SaveResult is the full decision: the outcome, the draft as it will be
// persisted after clamping, the ordered operations to apply, and an optional
// validation notice to surface to the user.
type SaveResult struct {
	Outcome Outcome
	Action  domain.Action
	Ops     []Op
	Notice  error
}

// Save decides whether a draft action may be persisted into the day starting
// at dayID. ongoing is the currently open action as freshly loaded by the
// caller (nil when none), budget the unallocated minutes the day has left
// not counting the draft's stored version, and now the clock reading.
//
// The draft is never written here; when the outcome is Persisted the caller
// applies Ops against the store in order.
func Save(cal domain.Calendar, draft domain.Action, dayID int64, ongoing *domain.Action, budget int, now int64, confirmEnd bool) SaveResult {
	res := SaveResult{Action: draft}

	// A draft can never start before the ongoing action; floor it and
	// carry on with a notice rather than failing the save.
	if ongoing != nil && draft.Start < ongoing.Start {
		draft = draft.WithStart(ongoing.Start)
		res.Notice = ErrStartBeforeOngoing
	}

	// Saving anything other than the ongoing action itself ends it: either
	// superseded outright when both start at the same instant, or truncated
	// to the millisecond before the draft begins. Both need the user's
	// explicit agreement first.
	if ongoing != nil && draft.ID != ongoing.ID {
		if !confirmEnd {
			res.Outcome = NeedsConfirmation
			res.Action = draft
			return res
		}
		if draft.Start == ongoing.Start {
			res.Ops = append(res.Ops, Op{Kind: OpDelete, Action: *ongoing})
		} else {
			truncated := ongoing.WithEnd(domain.EndAt(draft.Start - 1))
			res.Ops = append(res.Ops, Op{Kind: OpUpdate, Action: truncated})
		}
	}

	// An action may stay open only on the current day, and a closed one may
	// not run past the end of its day.
	endOfDay := cal.EndOfDay(dayID)
	dayStart := cal.StartOfDay(dayID)
	today := cal.StartOfDay(now)
	if draft.End.Open() {
		if dayStart < today {
			draft = draft.WithEnd(domain.EndAt(endOfDay))
		}
	} else if draft.End.Millis() >= endOfDay {
		draft = draft.WithEnd(domain.EndAt(endOfDay))
	}

	// The day cannot hold more than its remaining unallocated minutes.
	if budget == 0 {
		res.Outcome = Rejected
		res.Action = draft
		res.Ops = nil
		return res
	}
	if budget < draft.Duration() {
		draft = draft.WithDuration(budget)
	}

	kind := OpUpdate
	if draft.ID == 0 {
		kind = OpInsert
	}
	res.Outcome = Persisted
	res.Action = draft
	res.Ops = append(res.Ops, Op{Kind: kind, Action: draft})
	return res
}
