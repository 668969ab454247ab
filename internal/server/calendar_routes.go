package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/market-sessions/internal/modules/analytics"
	"github.com/aristath/market-sessions/internal/modules/calendar"
	"github.com/aristath/market-sessions/internal/modules/rules"
	"github.com/aristath/market-sessions/internal/modules/schedule"
)

// sessionPayload is the wire form of one trading session. All instants are
// UTC RFC 3339.
type sessionPayload struct {
	Label        string  `json:"label"`
	MarketOpen   string  `json:"market_open"`
	MarketClose  string  `json:"market_close"`
	BreakStart   *string `json:"break_start,omitempty"`
	BreakEnd     *string `json:"break_end,omitempty"`
	IsEarlyClose bool    `json:"is_early_close"`
	IsLateOpen   bool    `json:"is_late_open"`
}

func toSessionPayload(s schedule.Session) sessionPayload {
	p := sessionPayload{
		Label:        s.Label.String(),
		MarketOpen:   s.MarketOpen.Format(time.RFC3339),
		MarketClose:  s.MarketClose.Format(time.RFC3339),
		IsEarlyClose: s.IsEarlyClose,
		IsLateOpen:   s.IsLateOpen,
	}
	if s.HasBreak() {
		bs := s.BreakStart.Format(time.RFC3339)
		be := s.BreakEnd.Format(time.RFC3339)
		p.BreakStart, p.BreakEnd = &bs, &be
	}
	return p
}

// setupCalendarRoutes configures the calendar query routes.
func (s *Server) setupCalendarRoutes(r chi.Router) {
	r.Route("/calendars", func(r chi.Router) {
		r.Get("/", s.handleListCalendars)
		r.Route("/{code}", func(r chi.Router) {
			r.Use(s.calendarCtx)
			r.Get("/", s.handleCalendarDetail)
			r.Get("/sessions", s.handleSessionsRange)
			r.Get("/sessions/{date}", s.handleSession)
			r.Get("/sessions/{date}/next", s.handleNextSession)
			r.Get("/sessions/{date}/previous", s.handlePreviousSession)
			r.Get("/minute", s.handleMinute)
			r.Get("/stats", s.handleStats)
		})
	})
}

// calendarCtx rejects unknown exchange codes before the handlers run.
func (s *Server) calendarCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if _, ok := s.registry.Get(code); !ok {
			s.writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"error":   "unknown_calendar",
				"message": "no calendar registered for code " + code,
				"known":   s.registry.Codes(),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cal returns the calendar for the request; calendarCtx guarantees presence.
func (s *Server) cal(r *http.Request) *calendar.Calendar {
	c, _ := s.registry.Get(chi.URLParam(r, "code"))
	return c
}

func (s *Server) handleListCalendars(w http.ResponseWriter, r *http.Request) {
	type item struct {
		Code       string `json:"code"`
		Name       string `json:"name"`
		Timezone   string `json:"timezone"`
		RangeStart string `json:"range_start,omitempty"`
		RangeEnd   string `json:"range_end,omitempty"`
	}
	items := make([]item, 0, len(s.registry.Codes()))
	for _, c := range s.registry.All() {
		it := item{Code: c.Code(), Name: c.Name(), Timezone: c.Location().String()}
		if start, end, ok := c.Bounds(); ok {
			it.RangeStart = start.String()
			it.RangeEnd = end.String()
		}
		items = append(items, it)
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"calendars": items})
}

func (s *Server) handleCalendarDetail(w http.ResponseWriter, r *http.Request) {
	c := s.cal(r)
	resp := map[string]interface{}{
		"code":     c.Code(),
		"name":     c.Name(),
		"timezone": c.Location().String(),
	}
	if b := c.Built(); b != nil {
		resp["range_start"] = b.Start.String()
		resp["range_end"] = b.End.String()
		resp["build_id"] = b.BuildID.String()
		resp["built_at"] = b.BuiltAt.Format(time.RFC3339)
		resp["sessions"] = len(b.Sessions)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionsRange(w http.ResponseWriter, r *http.Request) {
	start, err := rules.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		s.writeBadRequest(w, "start must be a date in 2006-01-02 form")
		return
	}
	end, err := rules.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		s.writeBadRequest(w, "end must be a date in 2006-01-02 form")
		return
	}
	if end.Before(start) {
		s.writeBadRequest(w, "end must not be before start")
		return
	}

	sessions, err := s.cal(r).SessionsInRange(start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]sessionPayload, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionPayload(sess))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"start":    start.String(),
		"end":      end.String(),
		"sessions": out,
	})
}

func (s *Server) parseDateParam(w http.ResponseWriter, r *http.Request) (rules.Date, bool) {
	d, err := rules.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		s.writeBadRequest(w, "date must be in 2006-01-02 form")
		return rules.Date{}, false
	}
	return d, true
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	d, ok := s.parseDateParam(w, r)
	if !ok {
		return
	}
	sess, err := s.cal(r).Session(d)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

func (s *Server) handleNextSession(w http.ResponseWriter, r *http.Request) {
	d, ok := s.parseDateParam(w, r)
	if !ok {
		return
	}
	sess, err := s.cal(r).NextSession(d)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

func (s *Server) handlePreviousSession(w http.ResponseWriter, r *http.Request) {
	d, ok := s.parseDateParam(w, r)
	if !ok {
		return
	}
	sess, err := s.cal(r).PreviousSession(d)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

func (s *Server) handleMinute(w http.ResponseWriter, r *http.Request) {
	ts, err := time.Parse(time.RFC3339, r.URL.Query().Get("ts"))
	if err != nil {
		s.writeBadRequest(w, "ts must be an RFC 3339 timestamp")
		return
	}

	var dir schedule.Direction
	switch r.URL.Query().Get("direction") {
	case "", "none":
		dir = schedule.DirectionNone
	case "next":
		dir = schedule.DirectionNext
	case "previous":
		dir = schedule.DirectionPrevious
	default:
		s.writeBadRequest(w, "direction must be none, next or previous")
		return
	}

	sess, err := s.cal(r).MinuteToSession(ts.UTC(), dir)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c := s.cal(r)
	b := c.Built()
	if b == nil {
		s.writeBadRequest(w, "calendar has no built schedule")
		return
	}

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			s.writeBadRequest(w, "year must be an integer")
			return
		}
		stats := analytics.ForYear(b.Sessions, year)
		s.writeJSON(w, http.StatusOK, roundStats(stats))
		return
	}

	years := analytics.Years(b.Sessions)
	out := make([]analytics.YearStats, 0, len(years))
	for _, y := range years {
		out = append(out, roundStats(y))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"years": out})
}

func roundStats(s analytics.YearStats) analytics.YearStats {
	s.MeanHours = analytics.Round(s.MeanHours)
	s.StdDevHours = analytics.Round(s.StdDevHours)
	s.ShortestHours = analytics.Round(s.ShortestHours)
	s.LongestHours = analytics.Round(s.LongestHours)
	return s
}
