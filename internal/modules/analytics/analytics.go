// Package analytics computes summary statistics over built session tables:
// counts per session category and the distribution of trading-day lengths.
package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/market-sessions/internal/modules/schedule"
)

// YearStats summarizes the sessions of one calendar year.
type YearStats struct {
	Year          int     `json:"year"`
	Sessions      int     `json:"sessions"`
	EarlyCloses   int     `json:"early_closes"`
	LateOpens     int     `json:"late_opens"`
	WithBreak     int     `json:"with_break"`
	MeanHours     float64 `json:"mean_hours"`
	StdDevHours   float64 `json:"stddev_hours"`
	ShortestHours float64 `json:"shortest_hours"`
	LongestHours  float64 `json:"longest_hours"`
}

// ForYear computes statistics over the sessions labeled within one year.
// Duration figures are net of breaks and expressed in hours. A year with no
// sessions yields the zero YearStats carrying only the year.
func ForYear(sessions []schedule.Session, year int) YearStats {
	s := YearStats{Year: year}
	var hours []float64
	for _, sess := range sessions {
		if sess.Label.Year != year {
			continue
		}
		s.Sessions++
		if sess.IsEarlyClose {
			s.EarlyCloses++
		}
		if sess.IsLateOpen {
			s.LateOpens++
		}
		if sess.HasBreak() {
			s.WithBreak++
		}
		hours = append(hours, sess.Duration().Hours())
	}
	if len(hours) == 0 {
		return s
	}
	s.MeanHours = stat.Mean(hours, nil)
	if len(hours) > 1 {
		s.StdDevHours = stat.StdDev(hours, nil)
	}
	sort.Float64s(hours)
	s.ShortestHours = hours[0]
	s.LongestHours = hours[len(hours)-1]
	return s
}

// Years computes YearStats for every year present in the session list,
// sorted ascending.
func Years(sessions []schedule.Session) []YearStats {
	seen := map[int]struct{}{}
	var years []int
	for _, sess := range sessions {
		if _, ok := seen[sess.Label.Year]; !ok {
			seen[sess.Label.Year] = struct{}{}
			years = append(years, sess.Label.Year)
		}
	}
	sort.Ints(years)
	out := make([]YearStats, 0, len(years))
	for _, y := range years {
		out = append(out, ForYear(sessions, y))
	}
	return out
}

// Round trims a stats value for presentation. Durations are exact rational
// hours in practice, so two decimals lose nothing meaningful.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
