package domain

import "time"

// Instants are epoch milliseconds throughout the engine; the storage schema
// and the HTTP DTOs use the same representation.
const (
	DayMillis    int64 = 24 * 60 * 60 * 1000
	DayMinutes         = 24 * 60
	MinuteMillis int64 = 60 * 1000
)

// Calendar maps instants to calendar days in a fixed location.
// The zero value uses the local time zone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a Calendar for loc. A nil loc means time.Local.
func NewCalendar(loc *time.Location) Calendar {
	return Calendar{loc: loc}
}

// Location returns the calendar's time zone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// StartOfDay returns the instant at 00:00:00.000 of the day containing ms.
func (c Calendar) StartOfDay(ms int64) int64 {
	t := time.UnixMilli(ms).In(c.Location())
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location()).UnixMilli()
}

// EndOfDay returns the last millisecond of the day containing ms, i.e. the
// start of the next day minus one.
func (c Calendar) EndOfDay(ms int64) int64 {
	return c.StartOfDay(ms+DayMillis) - 1
}

// HourOf returns the hour-of-day field of ms.
func (c Calendar) HourOf(ms int64) int {
	return time.UnixMilli(ms).In(c.Location()).Hour()
}

// MinuteOf returns the minute field of ms.
func (c Calendar) MinuteOf(ms int64) int {
	return time.UnixMilli(ms).In(c.Location()).Minute()
}

// WithHour returns ms with its hour-of-day field replaced.
func (c Calendar) WithHour(ms int64, hour int) int64 {
	t := time.UnixMilli(ms).In(c.Location())
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, t.Minute(), t.Second(), t.Nanosecond(), c.Location()).UnixMilli()
}

// WithMinute returns ms with its minute field replaced.
func (c Calendar) WithMinute(ms int64, minute int) int64 {
	t := time.UnixMilli(ms).In(c.Location())
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), minute, t.Second(), t.Nanosecond(), c.Location()).UnixMilli()
}

// AtSameTime returns the target day's date with ref's hour and minute,
// used to seed a draft on a past day with the current wall-clock time.
func (c Calendar) AtSameTime(target, ref int64) int64 {
	return c.WithMinute(c.WithHour(target, c.HourOf(ref)), c.MinuteOf(ref))
}

// Yesterday returns ms minus exactly 24 hours.
func Yesterday(ms int64) int64 { return ms - DayMillis }

// Tomorrow returns ms plus exactly 24 hours.
func Tomorrow(ms int64) int64 { return ms + DayMillis }

// PercentageOfDay returns the share of a day the given duration covers,
// truncated to a whole percent.
func PercentageOfDay(minutes int) int {
	return minutes * 100 / DayMinutes
}
