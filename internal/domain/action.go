package domain

import "fmt"

// Feeling is the category of a logged action. Declaration order is part of
// the contract: aggregates iterate feelings in this order and tie-breaks
// resolve to the earlier entry.
type Feeling int

const (
	Happiness Feeling = iota
	Anger
	Anxiety
	Sadness
	Depression
	// NoInput keys the unallocated remainder of a day in aggregates.
	// It is never a valid feeling for a persisted action.
	NoInput
)

// Feelings lists the real feeling categories in declaration order.
var Feelings = [...]Feeling{Happiness, Anger, Anxiety, Sadness, Depression}

var feelingNames = map[Feeling]string{
	Happiness:  "happiness",
	Anger:      "anger",
	Anxiety:    "anxiety",
	Sadness:    "sadness",
	Depression: "depression",
	NoInput:    "no_input",
}

func (f Feeling) String() string {
	if s, ok := feelingNames[f]; ok {
		return s
	}
	return fmt.Sprintf("feeling(%d)", int(f))
}

// Valid reports whether f may be assigned to a persisted action.
func (f Feeling) Valid() bool {
	return f >= Happiness && f < NoInput
}

// ParseFeeling converts a stored or transported name back to a Feeling.
func ParseFeeling(s string) (Feeling, error) {
	for f, name := range feelingNames {
		if name == s {
			return f, nil
		}
	}
	return NoInput, fmt.Errorf("unknown feeling %q", s)
}

// End is the closing instant of an action. The zero value means the action
// is still open; only the storage adapters translate this to and from the
// persisted 0 column value.
type End struct {
	ms int64
}

// EndAt returns a closed End at the given instant.
func EndAt(ms int64) End { return End{ms: ms} }

// Open reports whether the action has not finished yet.
func (e End) Open() bool { return e.ms == 0 }

// Millis returns the closing instant, or 0 when open.
func (e End) Millis() int64 { return e.ms }

// Action is one logged feeling episode: a typed interval that may still be
// open. Values are immutable; the With* constructors return adjusted copies
// so the derived duration can never go stale.
type Action struct {
	ID      int64 // 0 until persisted
	Title   string
	Start   int64
	End     End
	Feeling Feeling
	Comment string
}

// Duration returns the length of the action in whole minutes, 0 while open.
func (a Action) Duration() int {
	if a.End.Open() {
		return 0
	}
	return int((a.End.Millis() - a.Start) / MinuteMillis)
}

// DayID returns the start-of-day instant of the day the action belongs to.
func (a Action) DayID(cal Calendar) int64 {
	return cal.StartOfDay(a.Start)
}

// WithEnd returns a copy of a closed (or reopened) at end.
func (a Action) WithEnd(end End) Action {
	a.End = end
	return a
}

// WithStart returns a copy of a starting at start, leaving the end as is.
func (a Action) WithStart(start int64) Action {
	a.Start = start
	return a
}

// WithDuration returns a copy of a closed exactly minutes after its start.
// A zero duration reopens the action.
func (a Action) WithDuration(minutes int) Action {
	if minutes == 0 {
		a.End = End{}
		return a
	}
	a.End = EndAt(a.Start + int64(minutes)*MinuteMillis)
	return a
}

// ShiftedTo returns a copy of a moved to start with its duration preserved.
func (a Action) ShiftedTo(start int64) Action {
	d := a.Duration()
	a.Start = start
	if !a.End.Open() {
		a.End = EndAt(start + int64(d)*MinuteMillis)
	}
	return a
}

// Validate checks the invariants every persisted action must satisfy.
func (a Action) Validate() error {
	if !a.Feeling.Valid() {
		return fmt.Errorf("action feeling %s cannot be persisted", a.Feeling)
	}
	if !a.End.Open() && a.End.Millis() <= a.Start {
		return fmt.Errorf("action end %d not after start %d", a.End.Millis(), a.Start)
	}
	return nil
}
