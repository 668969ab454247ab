package schedule

import "time"

// WeeklyPattern is the default trading-day mask applied before holiday rules.
// Most exchanges trade Monday through Friday, but the set is configurable per
// exchange (some Middle East exchanges trade Sunday through Thursday).
type WeeklyPattern struct {
	mask [7]bool
}

// NewWeeklyPattern builds a pattern from the given trading weekdays.
func NewWeeklyPattern(days ...time.Weekday) WeeklyPattern {
	var p WeeklyPattern
	for _, d := range days {
		p.mask[int(d)%7] = true
	}
	return p
}

// MondayToFriday is the common western trading week.
func MondayToFriday() WeeklyPattern {
	return NewWeeklyPattern(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

// SundayToThursday is used by several Middle East exchanges.
func SundayToThursday() WeeklyPattern {
	return NewWeeklyPattern(time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday)
}

// IsTradingDay reports whether the weekday is part of the trading week.
func (p WeeklyPattern) IsTradingDay(d time.Weekday) bool {
	return p.mask[int(d)%7]
}

// TradingDays returns the trading weekdays in Sunday-first order.
func (p WeeklyPattern) TradingDays() []time.Weekday {
	var out []time.Weekday
	for i, on := range p.mask {
		if on {
			out = append(out, time.Weekday(i))
		}
	}
	return out
}

// IsZero reports whether no weekday is marked as trading.
func (p WeeklyPattern) IsZero() bool {
	return p == WeeklyPattern{}
}
