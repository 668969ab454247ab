// Package exchanges holds the built-in calendar definitions. Each definition
// is pure data: the rule engine and schedule builder never special-case an
// exchange, everything an exchange does differently is expressed here.
package exchanges

import (
	"time"

	"github.com/aristath/market-sessions/internal/modules/calendar"
	"github.com/aristath/market-sessions/internal/modules/rules"
	"github.com/aristath/market-sessions/internal/modules/schedule"
)

func clock(hour, minute int) *schedule.ClockTime {
	c := schedule.At(hour, minute)
	return &c
}

// Definitions returns all built-in exchange calendars, sorted by code.
func Definitions() []calendar.Definition {
	return []calendar.Definition{
		HongKong(),
		NewYork(),
		Taipei(),
	}
}

// NewYork is XNYS: the New York Stock Exchange.
//
// The hours table carries the 1985 regime change from a 10:00 open to 9:30;
// session queries before and after the switch produce different open times
// from the same definition.
func NewYork() calendar.Definition {
	return calendar.Definition{
		Code:     "XNYS",
		Name:     "New York Stock Exchange",
		Timezone: "America/New_York",
		Week:     schedule.MondayToFriday(),
		Hours: []schedule.HoursRow{
			{
				To:    rules.MustDate("1985-09-29"),
				Open:  schedule.At(10, 0),
				Close: schedule.At(16, 0),
			},
			{
				From:  rules.MustDate("1985-09-30"),
				Open:  schedule.At(9, 30),
				Close: schedule.At(16, 0),
			},
		},
		Rules: []rules.Rule{
			{
				Name:       "New Year's Day",
				Kind:       rules.KindFixedDate,
				Month:      time.January,
				Day:        1,
				Effect:     rules.Closed(),
				Observance: rules.SundayToMonday(),
			},
			{
				Name:      "Martin Luther King Jr. Day",
				Kind:      rules.KindNthWeekday,
				Month:     time.January,
				Weekday:   time.Monday,
				Nth:       3,
				Effect:    rules.Closed(),
				ValidFrom: rules.MustDate("1998-01-01"),
			},
			{
				Name:    "Washington's Birthday",
				Kind:    rules.KindNthWeekday,
				Month:   time.February,
				Weekday: time.Monday,
				Nth:     3,
				Effect:  rules.Closed(),
			},
			{
				Name:   "Good Friday",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorEasterGregorian,
				Offset: -2,
				Effect: rules.Closed(),
			},
			{
				Name:    "Memorial Day",
				Kind:    rules.KindNthWeekday,
				Month:   time.May,
				Weekday: time.Monday,
				Nth:     -1,
				Effect:  rules.Closed(),
			},
			{
				Name:       "Juneteenth",
				Kind:       rules.KindFixedDate,
				Month:      time.June,
				Day:        19,
				Effect:     rules.Closed(),
				ValidFrom:  rules.MustDate("2022-01-01"),
				Observance: rules.NearestWeekday(),
			},
			{
				Name:   "Independence Day",
				Kind:   rules.KindFixedDate,
				Month:  time.July,
				Day:    4,
				Effect: rules.Closed(),
				// When July 4 is observed on July 3 the full closure beats
				// the Day Before Independence Day early close.
				Override:   true,
				Observance: rules.NearestWeekday(),
			},
			{
				Name:      "Day Before Independence Day",
				Kind:      rules.KindFixedDate,
				Month:     time.July,
				Day:       3,
				Effect:    rules.EarlyClose(13, 0),
				ValidFrom: rules.MustDate("1995-01-01"),
			},
			{
				Name:    "Labor Day",
				Kind:    rules.KindNthWeekday,
				Month:   time.September,
				Weekday: time.Monday,
				Nth:     1,
				Effect:  rules.Closed(),
			},
			{
				Name:    "Thanksgiving Day",
				Kind:    rules.KindNthWeekday,
				Month:   time.November,
				Weekday: time.Thursday,
				Nth:     4,
				Effect:  rules.Closed(),
			},
			{
				Name:    "Day After Thanksgiving",
				Kind:    rules.KindNthWeekday,
				Month:   time.November,
				Weekday: time.Thursday,
				Nth:     4,
				Offset:  1,
				Effect:  rules.EarlyClose(13, 0),
			},
			{
				Name:   "Christmas Day",
				Kind:   rules.KindFixedDate,
				Month:  time.December,
				Day:    25,
				Effect: rules.Closed(),
				// Same collision as July 4: observed Dec 24 beats the
				// Christmas Eve early close.
				Override:   true,
				Observance: rules.NearestWeekday(),
			},
			{
				Name:      "Christmas Eve",
				Kind:      rules.KindFixedDate,
				Month:     time.December,
				Day:       24,
				Effect:    rules.EarlyClose(13, 0),
				ValidFrom: rules.MustDate("1993-01-01"),
			},
			{
				Name:   "Hurricane Sandy",
				Kind:   rules.KindDateList,
				Effect: rules.Closed(),
				Dates: []rules.Date{
					rules.MustDate("2012-10-29"),
					rules.MustDate("2012-10-30"),
				},
			},
			{
				Name:   "September 11 Attacks",
				Kind:   rules.KindDateList,
				Effect: rules.Closed(),
				Dates: []rules.Date{
					rules.MustDate("2001-09-11"),
					rules.MustDate("2001-09-12"),
					rules.MustDate("2001-09-13"),
					rules.MustDate("2001-09-14"),
				},
			},
		},
	}
}

// HongKong is XHKG: the Stock Exchange of Hong Kong. Sessions carry a lunch
// break; the break is dropped on early-close days because the 12:00 close
// overlaps it. Minute queries treat break minutes as non-trading.
func HongKong() calendar.Definition {
	return calendar.Definition{
		Code:         "XHKG",
		Name:         "Stock Exchange of Hong Kong",
		Timezone:     "Asia/Hong_Kong",
		Week:         schedule.MondayToFriday(),
		BreakPolicy:  schedule.BreakPolicyDrop,
		ExcludeBreak: true,
		Hours: []schedule.HoursRow{
			{
				To:         rules.MustDate("2011-03-06"),
				Open:       schedule.At(10, 0),
				Close:      schedule.At(16, 0),
				BreakStart: clock(12, 30),
				BreakEnd:   clock(14, 30),
			},
			{
				From:       rules.MustDate("2011-03-07"),
				Open:       schedule.At(9, 30),
				Close:      schedule.At(16, 0),
				BreakStart: clock(12, 0),
				BreakEnd:   clock(13, 0),
			},
		},
		Rules: []rules.Rule{
			{
				Name:       "New Year's Day",
				Kind:       rules.KindFixedDate,
				Month:      time.January,
				Day:        1,
				Effect:     rules.Closed(),
				Observance: rules.SundayToMonday(),
			},
			{
				Name:   "Lunar New Year",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorLunarNewYear,
				Effect: rules.Closed(),
			},
			{
				Name:   "Lunar New Year Day 2",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorLunarNewYear,
				Offset: 1,
				Effect: rules.Closed(),
			},
			{
				Name:   "Lunar New Year Day 3",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorLunarNewYear,
				Offset: 2,
				Effect: rules.Closed(),
			},
			{
				Name:   "Lunar New Year's Eve",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorLunarNewYear,
				Offset: -1,
				Effect: rules.EarlyClose(12, 0),
			},
			{
				Name:   "Good Friday",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorEasterGregorian,
				Offset: -2,
				Effect: rules.Closed(),
			},
			{
				Name:   "Easter Monday",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorEasterGregorian,
				Offset: 1,
				Effect: rules.Closed(),
			},
			{
				Name:       "Labour Day",
				Kind:       rules.KindFixedDate,
				Month:      time.May,
				Day:        1,
				Effect:     rules.Closed(),
				Observance: rules.SundayToMonday(),
			},
			{
				Name:       "Hong Kong SAR Establishment Day",
				Kind:       rules.KindFixedDate,
				Month:      time.July,
				Day:        1,
				Effect:     rules.Closed(),
				Observance: rules.SundayToMonday(),
			},
			{
				Name:       "National Day",
				Kind:       rules.KindFixedDate,
				Month:      time.October,
				Day:        1,
				Effect:     rules.Closed(),
				Observance: rules.SundayToMonday(),
			},
			{
				Name:       "Christmas Day",
				Kind:       rules.KindFixedDate,
				Month:      time.December,
				Day:        25,
				Effect:     rules.Closed(),
				Observance: rules.SundayToMonday(),
			},
			{
				Name:   "Christmas Eve",
				Kind:   rules.KindFixedDate,
				Month:  time.December,
				Day:    24,
				Effect: rules.EarlyClose(12, 0),
			},
			{
				Name:   "New Year's Eve",
				Kind:   rules.KindFixedDate,
				Month:  time.December,
				Day:    31,
				Effect: rules.EarlyClose(12, 0),
			},
		},
	}
}

// Taipei is XTAI: the Taiwan Stock Exchange. The weekend-makeup observance
// on fixed holidays only applies from 2014, when the government adopted the
// adjusted-working-day scheme, so the observance is year-gated rather than
// the rule being split in two.
func Taipei() calendar.Definition {
	makeup := rules.Observance{Kind: rules.ObserveNextMonday, FromYear: 2014}
	return calendar.Definition{
		Code:     "XTAI",
		Name:     "Taiwan Stock Exchange",
		Timezone: "Asia/Taipei",
		Week:     schedule.MondayToFriday(),
		Hours: []schedule.HoursRow{
			{Open: schedule.At(9, 0), Close: schedule.At(13, 30)},
		},
		Rules: []rules.Rule{
			{
				Name:       "New Year's Day",
				Kind:       rules.KindFixedDate,
				Month:      time.January,
				Day:        1,
				Effect:     rules.Closed(),
				Observance: makeup,
			},
			{
				Name:   "Lunar New Year's Eve",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorLunarNewYear,
				Offset: -1,
				Effect: rules.Closed(),
			},
			{
				Name:   "Lunar New Year",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorLunarNewYear,
				Effect: rules.Closed(),
			},
			{
				Name:   "Lunar New Year Day 2",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorLunarNewYear,
				Offset: 1,
				Effect: rules.Closed(),
			},
			{
				Name:   "Lunar New Year Day 3",
				Kind:   rules.KindAnchorOffset,
				Anchor: rules.AnchorLunarNewYear,
				Offset: 2,
				Effect: rules.Closed(),
			},
			{
				Name:       "Peace Memorial Day",
				Kind:       rules.KindFixedDate,
				Month:      time.February,
				Day:        28,
				Effect:     rules.Closed(),
				Observance: makeup,
			},
			{
				Name:       "Children's Day",
				Kind:       rules.KindFixedDate,
				Month:      time.April,
				Day:        4,
				Effect:     rules.Closed(),
				ValidFrom:  rules.MustDate("2012-01-01"),
				Observance: makeup,
			},
			{
				Name:       "Labour Day",
				Kind:       rules.KindFixedDate,
				Month:      time.May,
				Day:        1,
				Effect:     rules.Closed(),
				Observance: makeup,
			},
			{
				Name:       "National Day",
				Kind:       rules.KindFixedDate,
				Month:      time.October,
				Day:        10,
				Effect:     rules.Closed(),
				Observance: makeup,
			},
			{
				Name:   "Typhoon Closures",
				Kind:   rules.KindDateList,
				Effect: rules.Closed(),
				Dates: []rules.Date{
					rules.MustDate("2015-09-29"),
					rules.MustDate("2016-09-27"),
					rules.MustDate("2016-09-28"),
					rules.MustDate("2019-08-09"),
					rules.MustDate("2024-07-24"),
					rules.MustDate("2024-07-25"),
				},
			},
		},
	}
}
