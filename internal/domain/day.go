package domain

import "sort"

// FeelingDuration is one aggregated (feeling, minutes) pair.
type FeelingDuration struct {
	Feeling Feeling
	Minutes int
}

// Day aggregates the actions of one calendar day. Start is the start-of-day
// instant identifying the day. The per-feeling totals are computed once at
// construction; whatever part of the day is not covered by actions is
// attributed to NoInput, so the totals always sum to a full day.
type Day struct {
	Start   int64
	Actions []Action

	durations [NoInput + 1]int
}

// NewDay builds the aggregate for the day starting at start.
func NewDay(start int64, actions []Action) Day {
	d := Day{Start: start, Actions: actions}
	total := 0
	for _, a := range actions {
		d.durations[a.Feeling] += a.Duration()
		total += a.Duration()
	}
	d.durations[NoInput] = DayMinutes - total
	return d
}

// Duration returns the minute total aggregated for f.
func (d Day) Duration(f Feeling) int {
	if f < 0 || f > NoInput {
		return 0
	}
	return d.durations[f]
}

// Durations returns all six totals in declaration order, NoInput last.
// The fixed order is what makes tie-breaking in the selectors deterministic.
func (d Day) Durations() []FeelingDuration {
	out := make([]FeelingDuration, 0, len(d.durations))
	for f := Happiness; f <= NoInput; f++ {
		out = append(out, FeelingDuration{Feeling: f, Minutes: d.durations[f]})
	}
	return out
}

// Budget returns the minutes of the day not yet taken by any action.
func (d Day) Budget() int {
	return d.durations[NoInput]
}

// MostFelt returns the feeling the user spent the most time on. Days with no
// recorded actions (or a single non-zero entry, which is always NoInput)
// report NoInput; otherwise NoInput itself never wins over a real feeling.
func (d Day) MostFelt() Feeling {
	entries := make([]FeelingDuration, 0, len(d.durations))
	for _, fd := range d.Durations() {
		if fd.Minutes > 0 {
			entries = append(entries, fd)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Minutes > entries[j].Minutes
	})
	if len(entries) <= 1 {
		return NoInput
	}
	if entries[0].Feeling == NoInput {
		return entries[1].Feeling
	}
	return entries[0].Feeling
}

// LeastFelt returns the real feeling with the smallest total, NoInput when
// the day is completely empty. Ties resolve to the earlier declared feeling.
func (d Day) LeastFelt() Feeling {
	if d.durations[NoInput] == DayMinutes {
		return NoInput
	}
	target := NoInput
	min := int(^uint(0) >> 1)
	for _, f := range Feelings {
		if d.durations[f] < min {
			target = f
			min = d.durations[f]
		}
	}
	return target
}
