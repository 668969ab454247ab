package exchanges

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/market-sessions/internal/modules/calendar"
	"github.com/aristath/market-sessions/internal/modules/rules"
)

func build(t *testing.T, def calendar.Definition, start, end string) *calendar.Calendar {
	t.Helper()
	c, err := calendar.New(def, zerolog.Nop())
	if err != nil {
		t.Fatalf("New(%s): %v", def.Code, err)
	}
	if err := c.EnsureRange(rules.MustDate(start), rules.MustDate(end)); err != nil {
		t.Fatalf("EnsureRange(%s): %v", def.Code, err)
	}
	return c
}

func TestDefinitions_AllBuild(t *testing.T) {
	for _, def := range Definitions() {
		def := def
		t.Run(def.Code, func(t *testing.T) {
			c := build(t, def, "2020-01-01", "2025-12-31")
			sessions, err := c.SessionsInRange(rules.MustDate("2020-01-01"), rules.MustDate("2025-12-31"))
			if err != nil {
				t.Fatalf("SessionsInRange: %v", err)
			}
			if len(sessions) == 0 {
				t.Fatal("no sessions built")
			}
		})
	}
}

func TestNewYork_Holidays2024(t *testing.T) {
	c := build(t, NewYork(), "2024-01-01", "2024-12-31")

	closed := []string{
		"2024-01-01", // New Year's Day
		"2024-01-15", // MLK
		"2024-02-19", // Washington's Birthday
		"2024-03-29", // Good Friday
		"2024-05-27", // Memorial Day
		"2024-06-19", // Juneteenth
		"2024-07-04",
		"2024-09-02", // Labor Day
		"2024-11-28", // Thanksgiving
		"2024-12-25",
	}
	for _, d := range closed {
		ok, err := c.IsSession(rules.MustDate(d))
		if err != nil {
			t.Fatalf("IsSession(%s): %v", d, err)
		}
		if ok {
			t.Errorf("%s should be closed", d)
		}
	}

	earlyClose := []string{"2024-07-03", "2024-11-29", "2024-12-24"}
	for _, d := range earlyClose {
		s, err := c.Session(rules.MustDate(d))
		if err != nil {
			t.Fatalf("Session(%s): %v", d, err)
		}
		if !s.IsEarlyClose {
			t.Errorf("%s should be an early close", d)
		}
	}
}

func TestNewYork_ObservedHolidayBeatsEarlyClose(t *testing.T) {
	c := build(t, NewYork(), "2015-01-01", "2015-12-31")

	// July 4, 2015 was a Saturday: the closure is observed on Friday July 3
	// and wins over the Day Before Independence Day early close.
	ok, err := c.IsSession(rules.MustDate("2015-07-03"))
	if err != nil {
		t.Fatalf("IsSession: %v", err)
	}
	if ok {
		t.Error("2015-07-03 should be fully closed")
	}
}

func TestNewYork_ChristmasObservedOnEve(t *testing.T) {
	c := build(t, NewYork(), "2021-12-01", "2021-12-31")

	// Christmas 2021 fell on Saturday, observed Friday Dec 24.
	ok, err := c.IsSession(rules.MustDate("2021-12-24"))
	if err != nil {
		t.Fatalf("IsSession: %v", err)
	}
	if ok {
		t.Error("2021-12-24 should be fully closed")
	}
}

func TestNewYork_HoursRegimeChange(t *testing.T) {
	c := build(t, NewYork(), "1985-09-02", "1985-10-31")

	// Before the regime change the market opened at 10:00 New York time.
	open, err := c.SessionOpen(rules.MustDate("1985-09-27"))
	if err != nil {
		t.Fatalf("SessionOpen: %v", err)
	}
	if !open.Equal(time.Date(1985, 9, 27, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("pre-change open = %v, want 14:00 UTC", open)
	}

	open, err = c.SessionOpen(rules.MustDate("1985-09-30"))
	if err != nil {
		t.Fatalf("SessionOpen: %v", err)
	}
	if !open.Equal(time.Date(1985, 9, 30, 13, 30, 0, 0, time.UTC)) {
		t.Errorf("post-change open = %v, want 13:30 UTC", open)
	}
}

func TestNewYork_DateListClosures(t *testing.T) {
	c := build(t, NewYork(), "2012-10-01", "2012-11-30")
	for _, d := range []string{"2012-10-29", "2012-10-30"} {
		ok, err := c.IsSession(rules.MustDate(d))
		if err != nil {
			t.Fatalf("IsSession(%s): %v", d, err)
		}
		if ok {
			t.Errorf("%s should be closed for Hurricane Sandy", d)
		}
	}
}

func TestHongKong_LunarNewYear2024(t *testing.T) {
	c := build(t, HongKong(), "2024-01-01", "2024-12-31")

	// Lunar New Year 2024 fell on Saturday Feb 10; Monday and Tuesday are
	// the day-2 and day-3 closures.
	for _, d := range []string{"2024-02-12", "2024-02-13"} {
		ok, err := c.IsSession(rules.MustDate(d))
		if err != nil {
			t.Fatalf("IsSession(%s): %v", d, err)
		}
		if ok {
			t.Errorf("%s should be closed", d)
		}
	}

	// The eve, Friday Feb 9, is a half day closing at noon Hong Kong time.
	s, err := c.Session(rules.MustDate("2024-02-09"))
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if !s.IsEarlyClose {
		t.Error("2024-02-09 should be an early close")
	}
	if !s.MarketClose.Equal(time.Date(2024, 2, 9, 4, 0, 0, 0, time.UTC)) {
		t.Errorf("close = %v, want 04:00 UTC", s.MarketClose)
	}
	// The noon close swallows the lunch break.
	if s.HasBreak() {
		t.Error("half day should have no break")
	}
}

func TestHongKong_RegularSessionHasBreak(t *testing.T) {
	c := build(t, HongKong(), "2024-03-01", "2024-03-31")
	s, err := c.Session(rules.MustDate("2024-03-06"))
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if !s.HasBreak() {
		t.Fatal("regular session should have a lunch break")
	}
	// 12:00 to 13:00 Hong Kong time.
	if !s.BreakStart.Equal(time.Date(2024, 3, 6, 4, 0, 0, 0, time.UTC)) {
		t.Errorf("break start = %v", *s.BreakStart)
	}
	if !s.BreakEnd.Equal(time.Date(2024, 3, 6, 5, 0, 0, 0, time.UTC)) {
		t.Errorf("break end = %v", *s.BreakEnd)
	}
}

func TestHongKong_PreReformHours(t *testing.T) {
	c := build(t, HongKong(), "2011-02-01", "2011-03-31")

	// The 2011-03-07 trading-hours reform moved the open from 10:00 to 9:30.
	pre, err := c.SessionOpen(rules.MustDate("2011-03-04"))
	if err != nil {
		t.Fatalf("SessionOpen: %v", err)
	}
	if !pre.Equal(time.Date(2011, 3, 4, 2, 0, 0, 0, time.UTC)) {
		t.Errorf("pre-reform open = %v, want 02:00 UTC", pre)
	}
	post, err := c.SessionOpen(rules.MustDate("2011-03-07"))
	if err != nil {
		t.Fatalf("SessionOpen: %v", err)
	}
	if !post.Equal(time.Date(2011, 3, 7, 1, 30, 0, 0, time.UTC)) {
		t.Errorf("post-reform open = %v, want 01:30 UTC", post)
	}
}

func TestTaipei_WeekendMakeupGate(t *testing.T) {
	// Feb 28, 2021 was a Sunday. The makeup scheme applies from 2014, so
	// Monday March 1 is closed.
	c := build(t, Taipei(), "2021-02-01", "2021-03-31")
	ok, err := c.IsSession(rules.MustDate("2021-03-01"))
	if err != nil {
		t.Fatalf("IsSession: %v", err)
	}
	if ok {
		t.Error("2021-03-01 should be a makeup closure")
	}

	// Feb 28, 2010 was also a Sunday, but before 2014 there is no makeup.
	c = build(t, Taipei(), "2010-02-01", "2010-03-31")
	ok, err = c.IsSession(rules.MustDate("2010-03-01"))
	if err != nil {
		t.Fatalf("IsSession: %v", err)
	}
	if !ok {
		t.Error("2010-03-01 should be a regular session")
	}
}

func TestTaipei_TyphoonAndHours(t *testing.T) {
	c := build(t, Taipei(), "2024-07-01", "2024-07-31")

	for _, d := range []string{"2024-07-24", "2024-07-25"} {
		ok, err := c.IsSession(rules.MustDate(d))
		if err != nil {
			t.Fatalf("IsSession(%s): %v", d, err)
		}
		if ok {
			t.Errorf("%s should be a typhoon closure", d)
		}
	}

	// 9:00 to 13:30 Taipei time is 01:00 to 05:30 UTC.
	s, err := c.Session(rules.MustDate("2024-07-02"))
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if !s.MarketOpen.Equal(time.Date(2024, 7, 2, 1, 0, 0, 0, time.UTC)) {
		t.Errorf("open = %v", s.MarketOpen)
	}
	if !s.MarketClose.Equal(time.Date(2024, 7, 2, 5, 30, 0, 0, time.UTC)) {
		t.Errorf("close = %v", s.MarketClose)
	}
}
