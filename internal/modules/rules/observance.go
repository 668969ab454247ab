package rules

import "time"

// ObservanceKind selects how a raw holiday date is shifted when it falls on a
// non-trading day.
type ObservanceKind int

const (
	// ObserveNone leaves the date untouched
	ObserveNone ObservanceKind = iota
	// ObserveNearestWeekday moves Saturday to Friday and Sunday to Monday
	ObserveNearestWeekday
	// ObserveNextMonday moves Saturday and Sunday to the following Monday
	ObserveNextMonday
	// ObservePreviousFriday moves Saturday and Sunday to the preceding Friday
	ObservePreviousFriday
	// ObserveSundayToMonday moves Sunday to Monday and leaves Saturday alone
	ObserveSundayToMonday
)

// Observance is an optional transform applied to a rule's raw occurrence
// dates. FromYear/UntilYear gate the transform to a historical window, since
// exchanges adopt and retire observance conventions (Taiwan's weekend makeup
// only applies from 2014, for example). Zero means unbounded on that side.
type Observance struct {
	Kind      ObservanceKind
	FromYear  int
	UntilYear int
}

// NearestWeekday is the common Saturday-to-Friday, Sunday-to-Monday rule.
func NearestWeekday() Observance {
	return Observance{Kind: ObserveNearestWeekday}
}

// SundayToMonday is the UK-style Monday observance for Sunday holidays.
func SundayToMonday() Observance {
	return Observance{Kind: ObserveSundayToMonday}
}

func (o Observance) apply(d Date) Date {
	if o.Kind == ObserveNone {
		return d
	}
	if o.FromYear != 0 && d.Year < o.FromYear {
		return d
	}
	if o.UntilYear != 0 && d.Year > o.UntilYear {
		return d
	}
	switch o.Kind {
	case ObserveNearestWeekday:
		switch d.Weekday() {
		case time.Saturday:
			return d.AddDays(-1)
		case time.Sunday:
			return d.AddDays(1)
		}
	case ObserveNextMonday:
		switch d.Weekday() {
		case time.Saturday:
			return d.AddDays(2)
		case time.Sunday:
			return d.AddDays(1)
		}
	case ObservePreviousFriday:
		switch d.Weekday() {
		case time.Saturday:
			return d.AddDays(-1)
		case time.Sunday:
			return d.AddDays(-2)
		}
	case ObserveSundayToMonday:
		if d.Weekday() == time.Sunday {
			return d.AddDays(1)
		}
	}
	return d
}
