package reconcile

import "github.com/pedif/Quokka/internal/domain"

// SplitOvernight repairs an open action that silently crossed midnight.
// Each elapsed day between the action's start day and the day of now gets a
// closed copy covering it end to end; the original action is truncated to
// its own start day. The final emitted action belongs to today and either
// stays open (finishNow false, the app-resume repair) or closes at now
// (finishNow true, the user explicitly finished it).
//
// The input must be open. When it already belongs to today there is nothing
// to repair: the result is empty, or a single update closing it at now when
// finishNow is set. Calling this again on an already-repaired state is a
// no-op, which is what keeps the repair safe to run on every home load.
func SplitOvernight(cal domain.Calendar, ongoing domain.Action, now int64, finishNow bool) []Op {
	today := cal.StartOfDay(now)
	cur := ongoing.DayID(cal)

	if cur == today {
		if finishNow {
			return []Op{{Kind: OpUpdate, Action: ongoing.WithEnd(domain.EndAt(now))}}
		}
		return nil
	}

	var ops []Op
	for ; cur < today; cur = domain.Tomorrow(cur) {
		endOfDay := domain.EndAt(domain.Tomorrow(cur) - 1)
		if len(ops) == 0 {
			// Close the original record at the end of its start day.
			ops = append(ops, Op{Kind: OpUpdate, Action: ongoing.WithEnd(endOfDay)})
			continue
		}
		// Every fully elapsed day in between gets its own closed record.
		filler := ongoing
		filler.ID = 0
		filler.Start = cur
		filler.End = endOfDay
		ops = append(ops, Op{Kind: OpInsert, Action: filler})
	}

	todays := ongoing
	todays.ID = 0
	todays.Start = today
	todays.End = domain.End{}
	if finishNow {
		todays.End = domain.EndAt(now)
	}
	return append(ops, Op{Kind: OpInsert, Action: todays})
}
