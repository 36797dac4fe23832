package domain

import "sort"

// DaysUntil buckets actions into calendar days ending at the day containing
// end. The range begins at the day of the earliest action; with no actions
// at all the result is a single empty day. See DaysBetween for the variant
// with an explicit lower bound.
func DaysUntil(cal Calendar, actions []Action, end int64) []Day {
	if len(actions) == 0 {
		return []Day{NewDay(cal.StartOfDay(end), nil)}
	}
	first := actions[0].Start
	for _, a := range actions[1:] {
		if a.Start < first {
			first = a.Start
		}
	}
	return DaysBetween(cal, actions, first, end)
}

// DaysBetween buckets actions into one Day per calendar day from the day of
// start through the day of end, inclusive. Days without actions are kept and
// aggregate to a full NoInput day; actions falling outside the range are
// dropped. The result is ordered most recent day first, and actions within a
// day most recent start first. An inverted range yields an empty slice.
func DaysBetween(cal Calendar, actions []Action, start, end int64) []Day {
	firstDay := cal.StartOfDay(start)
	lastDay := cal.StartOfDay(end)
	if firstDay > lastDay {
		return []Day{}
	}

	buckets := make(map[int64][]Action)
	for day := lastDay; day >= firstDay; day = Yesterday(day) {
		buckets[day] = nil
	}
	for _, a := range actions {
		id := a.DayID(cal)
		if _, ok := buckets[id]; ok {
			buckets[id] = append(buckets[id], a)
		}
	}

	days := make([]Day, 0, len(buckets))
	for id, acts := range buckets {
		sort.Slice(acts, func(i, j int) bool { return acts[i].Start > acts[j].Start })
		days = append(days, NewDay(id, acts))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Start > days[j].Start })
	return days
}
