package rules

import (
	"fmt"
	"time"
)

// Kind identifies how a rule computes its occurrence dates.
type Kind int

const (
	// KindFixedDate occurs on the same month/day every year
	KindFixedDate Kind = iota
	// KindNthWeekday occurs on the nth weekday of a month (n = -1 for last)
	KindNthWeekday
	// KindAnchorOffset occurs a fixed number of days from a calendrical anchor
	KindAnchorOffset
	// KindDateList occurs on an explicit list of dates (ad-hoc closures)
	KindDateList
)

func (k Kind) String() string {
	switch k {
	case KindFixedDate:
		return "fixed-date"
	case KindNthWeekday:
		return "nth-weekday"
	case KindAnchorOffset:
		return "anchor-offset"
	case KindDateList:
		return "date-list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Anchor identifies the calendrical anchor for KindAnchorOffset rules.
type Anchor int

const (
	// AnchorEasterGregorian is Easter Sunday per the Gregorian computus
	AnchorEasterGregorian Anchor = iota
	// AnchorEasterJulian is Orthodox Easter Sunday, returned as a Gregorian date
	AnchorEasterJulian
	// AnchorLunarNewYear is Chinese Lunar New Year (first day of the lunar year)
	AnchorLunarNewYear
)

// EffectKind classifies what a rule does to a trading day.
type EffectKind int

const (
	// EffectClosed removes the day from the session table
	EffectClosed EffectKind = iota
	// EffectEarlyClose replaces the regular close with an earlier one
	EffectEarlyClose
	// EffectLateOpen replaces the regular open with a later one
	EffectLateOpen
)

func (k EffectKind) String() string {
	switch k {
	case EffectClosed:
		return "closed"
	case EffectEarlyClose:
		return "early-close"
	case EffectLateOpen:
		return "late-open"
	default:
		return fmt.Sprintf("effect(%d)", int(k))
	}
}

// Effect is the resolved consequence of a rule on a single date. Hour/Minute
// are exchange-local wall clock and only meaningful for early closes and
// late opens.
type Effect struct {
	Kind   EffectKind
	Hour   int
	Minute int
}

// Closed is the effect that removes a day entirely.
func Closed() Effect {
	return Effect{Kind: EffectClosed}
}

// EarlyClose is the effect that closes the market at hh:mm local time.
func EarlyClose(hour, minute int) Effect {
	return Effect{Kind: EffectEarlyClose, Hour: hour, Minute: minute}
}

// LateOpen is the effect that opens the market at hh:mm local time.
func LateOpen(hour, minute int) Effect {
	return Effect{Kind: EffectLateOpen, Hour: hour, Minute: minute}
}

func (e Effect) String() string {
	if e.Kind == EffectClosed {
		return "closed"
	}
	return fmt.Sprintf("%s(%02d:%02d)", e.Kind, e.Hour, e.Minute)
}

// Rule is an immutable description of one recurring or one-off calendar
// event. A Rule is pure: given a date range it deterministically enumerates
// its occurrence dates and holds no mutable state.
type Rule struct {
	Name   string
	Kind   Kind
	Effect Effect

	// Override marks the rule as winning any precedence conflict.
	Override bool

	// Fixed-date parameters
	Month time.Month
	Day   int

	// Nth-weekday parameters (Month shared with fixed-date). Nth is
	// 1-based; -1 selects the last occurrence in the month.
	Weekday time.Weekday
	Nth     int

	// Anchor-offset parameters. Offset also applies to nth-weekday rules,
	// which is how "the day after the fourth Thursday" is expressed: the
	// fifth Friday of a long November is not the day after Thanksgiving.
	Anchor Anchor
	Offset int // days from the anchor, negative for before

	// Explicit occurrence dates for KindDateList
	Dates []Date

	// Validity window. Zero values mean unbounded on that side. Calendars
	// change rules over history; occurrences outside the window are
	// suppressed.
	ValidFrom Date
	ValidTo   Date

	// Observance adjusts raw occurrence dates (weekend makeup etc.).
	Observance Observance
}

// Validate reports configuration errors that would otherwise surface as
// silent misbehavior during resolution.
func (r Rule) Validate() error {
	if r.Name == "" {
		return &InvalidRuleError{Rule: "(unnamed)", Reason: "rule must have a name"}
	}
	if !r.ValidFrom.IsZero() && !r.ValidTo.IsZero() && r.ValidFrom.After(r.ValidTo) {
		return &InvalidRuleError{
			Rule:   r.Name,
			Reason: fmt.Sprintf("valid-from %s is after valid-to %s", r.ValidFrom, r.ValidTo),
		}
	}
	switch r.Kind {
	case KindFixedDate:
		if r.Month < time.January || r.Month > time.December || r.Day < 1 || r.Day > 31 {
			return &InvalidRuleError{Rule: r.Name, Reason: fmt.Sprintf("invalid fixed date %d/%d", r.Month, r.Day)}
		}
	case KindNthWeekday:
		if r.Month < time.January || r.Month > time.December {
			return &InvalidRuleError{Rule: r.Name, Reason: fmt.Sprintf("invalid month %d", r.Month)}
		}
		if r.Nth == 0 || r.Nth > 5 || r.Nth < -1 {
			return &InvalidRuleError{Rule: r.Name, Reason: fmt.Sprintf("invalid nth %d (want 1..5 or -1)", r.Nth)}
		}
	case KindAnchorOffset:
		switch r.Anchor {
		case AnchorEasterGregorian, AnchorEasterJulian, AnchorLunarNewYear:
		default:
			return &InvalidRuleError{Rule: r.Name, Reason: fmt.Sprintf("unknown anchor %d", r.Anchor)}
		}
	case KindDateList:
		if len(r.Dates) == 0 {
			return &InvalidRuleError{Rule: r.Name, Reason: "date-list rule has no dates"}
		}
	default:
		return &InvalidRuleError{Rule: r.Name, Reason: fmt.Sprintf("unknown kind %d", r.Kind)}
	}
	if e := r.Effect; e.Kind != EffectClosed {
		if e.Hour < 0 || e.Hour > 23 || e.Minute < 0 || e.Minute > 59 {
			return &InvalidRuleError{Rule: r.Name, Reason: fmt.Sprintf("invalid effect time %02d:%02d", e.Hour, e.Minute)}
		}
	}
	return nil
}

// Occurrences enumerates the rule's dates within [start, end], intersected
// with the rule's validity window and adjusted by its observance. Output is
// sorted ascending with no duplicates.
func (r Rule) Occurrences(start, end Date) ([]Date, error) {
	if start.After(end) {
		return nil, nil
	}
	// Clamp to the validity window before computing.
	if !r.ValidFrom.IsZero() && start.Before(r.ValidFrom) {
		start = r.ValidFrom
	}
	if !r.ValidTo.IsZero() && end.After(r.ValidTo) {
		end = r.ValidTo
	}
	if start.After(end) {
		return nil, nil
	}

	var raw []Date
	switch r.Kind {
	case KindFixedDate, KindNthWeekday, KindAnchorOffset:
		// Observance can shift a date across a year boundary (New Year's
		// Day observed on the preceding Friday lands in the prior year),
		// so compute one year of slack on each side.
		for year := start.Year - 1; year <= end.Year+1; year++ {
			d, ok, err := r.dateForYear(year)
			if err != nil {
				// A lunar year outside the table only matters when it
				// could actually contribute to the queried range.
				if year >= start.Year && year <= end.Year {
					return nil, err
				}
				continue
			}
			if ok {
				raw = append(raw, d)
			}
		}
	case KindDateList:
		raw = append(raw, r.Dates...)
	}

	seen := make(map[Date]struct{}, len(raw))
	out := make([]Date, 0, len(raw))
	for _, d := range raw {
		d = r.Observance.apply(d)
		if d.Before(start) || d.After(end) {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sortDates(out)
	return out, nil
}

// dateForYear computes the raw (pre-observance) occurrence for one year.
// ok is false when the rule has no occurrence that year.
func (r Rule) dateForYear(year int) (Date, bool, error) {
	switch r.Kind {
	case KindFixedDate:
		return NewDate(year, r.Month, r.Day), true, nil
	case KindNthWeekday:
		if r.Nth == -1 {
			return lastWeekday(year, r.Month, r.Weekday).AddDays(r.Offset), true, nil
		}
		d := nthWeekday(year, r.Month, r.Weekday, r.Nth)
		// A 5th weekday does not exist in every month.
		if d.Month != r.Month {
			return Date{}, false, nil
		}
		return d.AddDays(r.Offset), true, nil
	case KindAnchorOffset:
		anchor, err := r.anchorForYear(year)
		if err != nil {
			return Date{}, false, err
		}
		return anchor.AddDays(r.Offset), true, nil
	default:
		return Date{}, false, nil
	}
}

func (r Rule) anchorForYear(year int) (Date, error) {
	switch r.Anchor {
	case AnchorEasterGregorian:
		return GregorianEaster(year), nil
	case AnchorEasterJulian:
		return JulianEaster(year), nil
	case AnchorLunarNewYear:
		d, ok := LunarNewYear(year)
		if !ok {
			first, last := LunarNewYearRange()
			return Date{}, &InvalidRuleError{
				Rule: r.Name,
				Reason: fmt.Sprintf("lunar new year conversion unavailable for %d (supported %d-%d)",
					year, first, last),
			}
		}
		return d, nil
	default:
		return Date{}, &InvalidRuleError{Rule: r.Name, Reason: fmt.Sprintf("unknown anchor %d", r.Anchor)}
	}
}

// nthWeekday finds the nth occurrence of a weekday in a month. The result may
// normalize into the following month when the nth occurrence does not exist;
// callers check the month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) Date {
	first := NewDate(year, month, 1)
	daysToAdd := int(weekday - first.Weekday())
	if daysToAdd < 0 {
		daysToAdd += 7
	}
	return first.AddDays(daysToAdd + (n-1)*7)
}

// lastWeekday finds the last occurrence of a weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) Date {
	last := NewDate(year, month+1, 1).AddDays(-1)
	daysBack := int(last.Weekday() - weekday)
	if daysBack < 0 {
		daysBack += 7
	}
	return last.AddDays(-daysBack)
}

func sortDates(dates []Date) {
	// Insertion sort; per-rule occurrence lists are small (one per year).
	for i := 1; i < len(dates); i++ {
		for j := i; j > 0 && dates[j].Before(dates[j-1]); j-- {
			dates[j], dates[j-1] = dates[j-1], dates[j]
		}
	}
}
