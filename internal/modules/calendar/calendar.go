package calendar

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/market-sessions/internal/modules/rules"
	"github.com/aristath/market-sessions/internal/modules/schedule"
)

// Built is one immutable generation of a calendar's session table with its
// query index. A rebuild produces a fresh Built and swaps it in atomically,
// so readers never observe a partially built table.
type Built struct {
	BuildID  uuid.UUID
	Start    rules.Date
	End      rules.Date
	BuiltAt  time.Time
	Index    *schedule.Index
	Sessions []schedule.Session
}

// Calendar binds one exchange's definition to the rule engine and schedule
// builder and exposes the query API. A Calendar is safe for concurrent
// reads; rebuilds are serialized internally and swap the table in one step.
type Calendar struct {
	def      Definition
	location *time.Location
	ruleCal  *rules.Calendar
	log      zerolog.Logger

	buildMu sync.Mutex
	built   atomic.Pointer[Built]
}

// New constructs a Calendar from a definition. Rule validation happens here:
// a calendar with broken rule data must fail construction.
func New(def Definition, log zerolog.Logger) (*Calendar, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(def.Timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar %s: unknown timezone %q: %w", def.Code, def.Timezone, err)
	}
	ruleCal, err := rules.NewCalendar(def.Rules...)
	if err != nil {
		return nil, fmt.Errorf("calendar %s: %w", def.Code, err)
	}
	return &Calendar{
		def:      def,
		location: loc,
		ruleCal:  ruleCal,
		log:      log.With().Str("component", "calendar").Str("exchange", def.Code).Logger(),
	}, nil
}

// Code returns the exchange code.
func (c *Calendar) Code() string {
	return c.def.Code
}

// Name returns the exchange display name.
func (c *Calendar) Name() string {
	return c.def.Name
}

// Definition returns the declarative input the calendar was built from.
func (c *Calendar) Definition() Definition {
	return c.def
}

// Location returns the exchange's timezone.
func (c *Calendar) Location() *time.Location {
	return c.location
}

// Built returns the current table generation, or nil before the first
// successful build.
func (c *Calendar) Built() *Built {
	return c.built.Load()
}

// Bounds reports the currently built range. ok is false before the first
// build.
func (c *Calendar) Bounds() (start, end rules.Date, ok bool) {
	b := c.built.Load()
	if b == nil {
		return rules.Date{}, rules.Date{}, false
	}
	return b.Start, b.End, true
}

// EnsureRange guarantees the built table covers [start, end]. If the current
// table already covers it this is a no-op. Otherwise the whole union of the
// old and requested ranges is rebuilt — rules can reorder sessions near
// boundaries, so incremental patching is not safe — and swapped in on
// success. On failure the previous table remains the queryable state.
func (c *Calendar) EnsureRange(start, end rules.Date) error {
	if start.After(end) {
		return fmt.Errorf("calendar %s: range start %s after end %s", c.def.Code, start, end)
	}

	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	if cur := c.built.Load(); cur != nil {
		if !start.Before(cur.Start) && !end.After(cur.End) {
			return nil
		}
		// Union of old and new bounds.
		if cur.Start.Before(start) {
			start = cur.Start
		}
		if cur.End.After(end) {
			end = cur.End
		}
	}

	builder := &schedule.Builder{
		Exchange:    c.def.Code,
		Pattern:     c.def.Week,
		Hours:       c.def.Hours,
		Rules:       c.ruleCal,
		Location:    c.location,
		BreakPolicy: c.def.BreakPolicy,
	}

	began := time.Now()
	sessions, err := builder.Build(start, end)
	if err != nil {
		c.log.Error().Err(err).
			Str("start", start.String()).
			Str("end", end.String()).
			Msg("Schedule build failed, previous table kept")
		return err
	}

	b := &Built{
		BuildID:  uuid.New(),
		Start:    start,
		End:      end,
		BuiltAt:  time.Now().UTC(),
		Index:    schedule.NewIndex(sessions, c.def.ExcludeBreak),
		Sessions: sessions,
	}
	c.built.Store(b)

	c.log.Info().
		Str("build_id", b.BuildID.String()).
		Str("start", start.String()).
		Str("end", end.String()).
		Int("sessions", len(sessions)).
		Dur("took", time.Since(began)).
		Msg("Schedule built")
	return nil
}

// Restore installs a previously built session table, typically loaded from
// the on-disk cache, without recomputing it. Restore only applies when
// nothing is built yet or the restored range covers the current one; a
// later EnsureRange still rebuilds when the range needs to grow.
func (c *Calendar) Restore(buildID uuid.UUID, start, end rules.Date, sessions []schedule.Session) error {
	if start.After(end) {
		return fmt.Errorf("calendar %s: restore range start %s after end %s", c.def.Code, start, end)
	}

	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	if cur := c.built.Load(); cur != nil {
		if start.After(cur.Start) || end.Before(cur.End) {
			return fmt.Errorf("calendar %s: restore range %s..%s does not cover built %s..%s",
				c.def.Code, start, end, cur.Start, cur.End)
		}
	}

	c.built.Store(&Built{
		BuildID:  buildID,
		Start:    start,
		End:      end,
		BuiltAt:  time.Now().UTC(),
		Index:    schedule.NewIndex(sessions, c.def.ExcludeBreak),
		Sessions: sessions,
	})
	c.log.Info().
		Str("build_id", buildID.String()).
		Str("start", start.String()).
		Str("end", end.String()).
		Int("sessions", len(sessions)).
		Msg("Schedule restored from cache")
	return nil
}

// table returns the current generation or an error when nothing is built.
func (c *Calendar) table() (*Built, error) {
	b := c.built.Load()
	if b == nil {
		return nil, fmt.Errorf("calendar %s has no built schedule", c.def.Code)
	}
	return b, nil
}

// checkBounds maps a query date outside the built range to OutOfRangeError.
func (c *Calendar) checkBounds(b *Built, d rules.Date) error {
	if d.Before(b.Start) || d.After(b.End) {
		return &OutOfRangeError{Exchange: c.def.Code, Date: d, Start: b.Start, End: b.End}
	}
	return nil
}

// notSession builds the caller-visible NotSessionError with table context.
func (c *Calendar) notSession(b *Built, d rules.Date) error {
	first, _ := b.Index.First()
	last, _ := b.Index.Last()
	return &NotSessionError{Exchange: c.def.Code, Date: d, First: first.Label, Last: last.Label}
}

// IsSession reports whether d is a trading session.
func (c *Calendar) IsSession(d rules.Date) (bool, error) {
	b, err := c.table()
	if err != nil {
		return false, err
	}
	if err := c.checkBounds(b, d); err != nil {
		return false, err
	}
	return b.Index.IsSession(d), nil
}

// Session returns the full session row for d.
func (c *Calendar) Session(d rules.Date) (schedule.Session, error) {
	b, err := c.table()
	if err != nil {
		return schedule.Session{}, err
	}
	if err := c.checkBounds(b, d); err != nil {
		return schedule.Session{}, err
	}
	s, ok := b.Index.Find(d)
	if !ok {
		return schedule.Session{}, c.notSession(b, d)
	}
	return s, nil
}

// SessionOpen returns the UTC open of the session labeled d.
func (c *Calendar) SessionOpen(d rules.Date) (time.Time, error) {
	s, err := c.Session(d)
	if err != nil {
		return time.Time{}, err
	}
	return s.MarketOpen, nil
}

// SessionClose returns the UTC close of the session labeled d.
func (c *Calendar) SessionClose(d rules.Date) (time.Time, error) {
	s, err := c.Session(d)
	if err != nil {
		return time.Time{}, err
	}
	return s.MarketClose, nil
}

// NextSession returns the nearest session strictly after d. Hitting the
// table's upper bound is an OutOfRangeError so the caller can extend.
func (c *Calendar) NextSession(d rules.Date) (schedule.Session, error) {
	b, err := c.table()
	if err != nil {
		return schedule.Session{}, err
	}
	if err := c.checkBounds(b, d); err != nil {
		return schedule.Session{}, err
	}
	s, ok := b.Index.Next(d)
	if !ok {
		return schedule.Session{}, &OutOfRangeError{Exchange: c.def.Code, Date: d.AddDays(1), Start: b.Start, End: b.End}
	}
	return s, nil
}

// PreviousSession returns the nearest session strictly before d.
func (c *Calendar) PreviousSession(d rules.Date) (schedule.Session, error) {
	b, err := c.table()
	if err != nil {
		return schedule.Session{}, err
	}
	if err := c.checkBounds(b, d); err != nil {
		return schedule.Session{}, err
	}
	s, ok := b.Index.Previous(d)
	if !ok {
		return schedule.Session{}, &OutOfRangeError{Exchange: c.def.Code, Date: d.AddDays(-1), Start: b.Start, End: b.End}
	}
	return s, nil
}

// SessionsInRange returns sessions labeled within [start, end] inclusive.
func (c *Calendar) SessionsInRange(start, end rules.Date) ([]schedule.Session, error) {
	if start.After(end) {
		return nil, fmt.Errorf("calendar %s: range start %s after end %s", c.def.Code, start, end)
	}
	b, err := c.table()
	if err != nil {
		return nil, err
	}
	if err := c.checkBounds(b, start); err != nil {
		return nil, err
	}
	if err := c.checkBounds(b, end); err != nil {
		return nil, err
	}
	return b.Index.Range(start, end), nil
}

// MinuteToSession maps a UTC timestamp to a session per the direction
// policy. A timestamp whose exchange-local date is outside the built range
// is an OutOfRangeError; a non-trading minute with DirectionNone is a
// NotSessionError.
func (c *Calendar) MinuteToSession(ts time.Time, dir schedule.Direction) (schedule.Session, error) {
	b, err := c.table()
	if err != nil {
		return schedule.Session{}, err
	}
	local := rules.DateOf(ts.In(c.location))
	if err := c.checkBounds(b, local); err != nil {
		return schedule.Session{}, err
	}
	s, ok := b.Index.MinuteToSession(ts, dir)
	if !ok {
		return schedule.Session{}, c.notSession(b, local)
	}
	return s, nil
}
