package schedule

import (
	"sort"
	"time"

	"github.com/aristath/market-sessions/internal/modules/rules"
)

// Direction selects the fallback when a minute-to-session lookup lands
// outside every trading interval.
type Direction int

const (
	// DirectionNone reports no session for non-trading minutes
	DirectionNone Direction = iota
	// DirectionNext falls back to the nearest session opening after the minute
	DirectionNext
	// DirectionPrevious falls back to the nearest session closing before the minute
	DirectionPrevious
)

// Index is a read-only queryable view over a built session table. The table
// is sorted by label (the builder guarantees it) and every lookup is a
// binary search; ranges span decades at daily granularity, so linear scans
// are off the table.
type Index struct {
	sessions     []Session
	excludeBreak bool
}

// NewIndex wraps a built session table. excludeBreak controls whether
// minutes inside an intraday break count as trading minutes.
func NewIndex(sessions []Session, excludeBreak bool) *Index {
	return &Index{sessions: sessions, excludeBreak: excludeBreak}
}

// Len returns the number of sessions.
func (ix *Index) Len() int {
	return len(ix.sessions)
}

// Sessions returns the underlying table. Callers must not mutate it.
func (ix *Index) Sessions() []Session {
	return ix.sessions
}

// First returns the earliest session; ok is false for an empty table.
func (ix *Index) First() (Session, bool) {
	if len(ix.sessions) == 0 {
		return Session{}, false
	}
	return ix.sessions[0], true
}

// Last returns the latest session; ok is false for an empty table.
func (ix *Index) Last() (Session, bool) {
	if len(ix.sessions) == 0 {
		return Session{}, false
	}
	return ix.sessions[len(ix.sessions)-1], true
}

// searchLabel returns the position of the first session whose label is not
// before d.
func (ix *Index) searchLabel(d rules.Date) int {
	return sort.Search(len(ix.sessions), func(i int) bool {
		return !ix.sessions[i].Label.Before(d)
	})
}

// Find returns the session labeled d.
func (ix *Index) Find(d rules.Date) (Session, bool) {
	i := ix.searchLabel(d)
	if i < len(ix.sessions) && ix.sessions[i].Label == d {
		return ix.sessions[i], true
	}
	return Session{}, false
}

// IsSession reports whether d is a trading session.
func (ix *Index) IsSession(d rules.Date) bool {
	_, ok := ix.Find(d)
	return ok
}

// Next returns the nearest session strictly after d. ok is false at the
// table's upper bound.
func (ix *Index) Next(d rules.Date) (Session, bool) {
	i := ix.searchLabel(d.AddDays(1))
	if i < len(ix.sessions) {
		return ix.sessions[i], true
	}
	return Session{}, false
}

// Previous returns the nearest session strictly before d. ok is false at the
// table's lower bound.
func (ix *Index) Previous(d rules.Date) (Session, bool) {
	i := ix.searchLabel(d)
	if i > 0 {
		return ix.sessions[i-1], true
	}
	return Session{}, false
}

// Range returns the sessions labeled within [start, end], inclusive. An
// inverted range is empty.
func (ix *Index) Range(start, end rules.Date) []Session {
	if start.After(end) {
		return nil
	}
	lo := ix.searchLabel(start)
	hi := ix.searchLabel(end.AddDays(1))
	return ix.sessions[lo:hi]
}

// MinuteToSession maps a UTC timestamp to the session whose trading interval
// contains it. For timestamps outside every interval the direction policy
// picks the nearest session after (DirectionNext) or before
// (DirectionPrevious); DirectionNone reports no match.
func (ix *Index) MinuteToSession(ts time.Time, dir Direction) (Session, bool) {
	// First session whose close is after ts: the only candidate that can
	// contain ts, and the DirectionNext fallback when it does not.
	i := sort.Search(len(ix.sessions), func(j int) bool {
		return ix.sessions[j].MarketClose.After(ts)
	})

	if i < len(ix.sessions) && ix.sessions[i].Contains(ts, ix.excludeBreak) {
		return ix.sessions[i], true
	}

	switch dir {
	case DirectionNext:
		// Break minutes with DirectionNext resolve to the containing
		// session's afternoon half, i.e. the session itself.
		if i < len(ix.sessions) {
			return ix.sessions[i], true
		}
	case DirectionPrevious:
		if i < len(ix.sessions) && ix.sessions[i].MarketOpen.Before(ts) {
			// Inside session i's break: it is also the most recent
			// session to have traded.
			return ix.sessions[i], true
		}
		if i > 0 {
			return ix.sessions[i-1], true
		}
	}
	return Session{}, false
}
