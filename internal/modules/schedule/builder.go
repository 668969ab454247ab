package schedule

import (
	"fmt"
	"time"

	"github.com/aristath/market-sessions/internal/modules/rules"
)

// BuildError reports a violated session invariant during a build. It always
// indicates a rule/data bug and is fatal to that build; the previous table,
// if any, stays in place.
type BuildError struct {
	Exchange string
	Reason   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("schedule build failed for %s: %s", e.Exchange, e.Reason)
}

// BreakPolicy decides what happens to an intraday break on an early-close
// day. Exchange policies differ: some keep the morning+afternoon split as
// long as it fits, others cancel the afternoon session outright.
type BreakPolicy int

const (
	// BreakPolicyKeep keeps the break when it still fits before the early
	// close; an early close at or before the break start drops it.
	BreakPolicyKeep BreakPolicy = iota
	// BreakPolicyDrop suppresses the break on any early-close day.
	BreakPolicyDrop
)

// Builder combines a weekly pattern, a rule calendar, and the declared
// regular-hours regimes into a concrete session table. Building is a pure
// function of its inputs and the requested range.
type Builder struct {
	Exchange    string
	Pattern     WeeklyPattern
	Hours       []HoursRow
	Rules       *rules.Calendar
	Location    *time.Location
	BreakPolicy BreakPolicy
}

// Build produces the ordered session table for [start, end]. Rule
// resolution happens once for the whole range; the per-day loop only
// assembles timestamps. Any invariant violation aborts the build.
func (b *Builder) Build(start, end rules.Date) ([]Session, error) {
	if start.After(end) {
		return nil, &BuildError{Exchange: b.Exchange, Reason: fmt.Sprintf("range start %s is after end %s", start, end)}
	}
	if b.Location == nil {
		return nil, &BuildError{Exchange: b.Exchange, Reason: "no timezone declared"}
	}
	if b.Pattern.IsZero() {
		return nil, &BuildError{Exchange: b.Exchange, Reason: "weekly pattern has no trading days"}
	}
	for i, row := range b.Hours {
		if err := row.validate(); err != nil {
			return nil, &BuildError{Exchange: b.Exchange, Reason: fmt.Sprintf("hours row %d: %v", i, err)}
		}
		for j := i + 1; j < len(b.Hours); j++ {
			if row.overlapsRange(b.Hours[j]) {
				return nil, &BuildError{Exchange: b.Exchange,
					Reason: fmt.Sprintf("hours rows %d and %d have overlapping effective ranges", i, j)}
			}
		}
	}

	// Bulk-resolve all special dates up front.
	effects := map[rules.Date]rules.Entry{}
	if b.Rules != nil {
		resolved, err := b.Rules.Resolve(start, end)
		if err != nil {
			return nil, err
		}
		effects = resolved
	}

	days := start.DaysUntil(end) + 1
	sessions := make([]Session, 0, days*5/7)

	for d := start; !d.After(end); d = d.AddDays(1) {
		if !b.Pattern.IsTradingDay(d.Weekday()) {
			continue
		}
		entry, special := effects[d]
		if special && entry.Effect.Kind == rules.EffectClosed {
			continue
		}

		row, ok := selectHours(b.Hours, d)
		if !ok {
			return nil, &BuildError{
				Exchange: b.Exchange,
				Reason:   fmt.Sprintf("no regular-hours row covers %s", d),
			}
		}

		s, err := b.assemble(d, row, entry, special)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	// Ordering invariant: strictly increasing labels, internally ordered
	// timestamps. The loop produces labels in order by construction; the
	// check guards against data bugs all the same.
	for i, s := range sessions {
		if err := s.validate(); err != nil {
			return nil, &BuildError{Exchange: b.Exchange, Reason: err.Error()}
		}
		if i > 0 && !sessions[i-1].Label.Before(s.Label) {
			return nil, &BuildError{
				Exchange: b.Exchange,
				Reason:   fmt.Sprintf("session labels not strictly increasing at %s", s.Label),
			}
		}
	}

	return sessions, nil
}

// assemble builds a single session row from the selected hours regime and
// the resolved rule effect, converting exchange-local wall clock to UTC.
func (b *Builder) assemble(d rules.Date, row HoursRow, entry rules.Entry, special bool) (Session, error) {
	open := row.Open
	close := row.Close
	s := Session{Label: d}

	if special {
		switch entry.Effect.Kind {
		case rules.EffectEarlyClose:
			close = At(entry.Effect.Hour, entry.Effect.Minute)
			s.IsEarlyClose = close.minuteOfDay() != row.Close.minuteOfDay()
		case rules.EffectLateOpen:
			open = At(entry.Effect.Hour, entry.Effect.Minute)
			s.IsLateOpen = open.minuteOfDay() != row.Open.minuteOfDay()
		}
		if !open.before(close) {
			return Session{}, &BuildError{
				Exchange: b.Exchange,
				Reason: fmt.Sprintf("rule %q leaves %s with open %s not before close %s",
					entry.RuleName, d, open, close),
			}
		}
	}

	s.MarketOpen = localToUTC(d, open, b.Location)
	s.MarketClose = localToUTC(d, close, b.Location)

	if row.BreakStart != nil && b.keepBreak(row, open, close, special, entry) {
		bs := localToUTC(d, *row.BreakStart, b.Location)
		be := localToUTC(d, *row.BreakEnd, b.Location)
		s.BreakStart = &bs
		s.BreakEnd = &be
	}

	return s, nil
}

// keepBreak applies the exchange's break policy for the (possibly adjusted)
// open and close.
func (b *Builder) keepBreak(row HoursRow, open, close ClockTime, special bool, entry rules.Entry) bool {
	adjusted := special && (entry.Effect.Kind == rules.EffectEarlyClose || entry.Effect.Kind == rules.EffectLateOpen)
	if adjusted && b.BreakPolicy == BreakPolicyDrop {
		return false
	}
	// Regardless of policy the break must still sit strictly inside the
	// session.
	return open.before(*row.BreakStart) && row.BreakEnd.before(close)
}

// localToUTC maps an exchange-local wall-clock time on a date to a UTC
// instant. time.Date normalizes wall clocks that do not exist on a DST
// transition day onto the shifted offset, and resolves ambiguous (repeated)
// wall clocks deterministically; both normalizations are accepted as the
// documented disambiguation policy rather than failing the build.
func localToUTC(d rules.Date, c ClockTime, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc).UTC()
}
