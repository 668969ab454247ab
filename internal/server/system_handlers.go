package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/market-sessions/internal/modules/calendar"
	"github.com/aristath/market-sessions/internal/scheduler"
	"github.com/aristath/market-sessions/internal/storage"
)

// SystemHandlers handles system monitoring and operations endpoints.
type SystemHandlers struct {
	log        zerolog.Logger
	registry   *calendar.Registry
	cacheDB    *storage.DB
	scheduler  *scheduler.Scheduler
	horizonJob scheduler.Job
	startedAt  time.Time
}

// NewSystemHandlers creates system handlers. cacheDB and horizonJob may be
// nil when persistence or background jobs are disabled.
func NewSystemHandlers(
	log zerolog.Logger,
	registry *calendar.Registry,
	cacheDB *storage.DB,
	sched *scheduler.Scheduler,
	horizonJob scheduler.Job,
) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("component", "system_handlers").Logger(),
		registry:   registry,
		cacheDB:    cacheDB,
		scheduler:  sched,
		horizonJob: horizonJob,
		startedAt:  time.Now(),
	}
}

// setupSystemRoutes configures system monitoring routes.
func (s *Server) setupSystemRoutes(r chi.Router) {
	h := s.systemHandlers
	r.Route("/system", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/status", h.HandleStatus)
		r.Post("/jobs/horizon", h.HandleTriggerHorizon)
	})
}

// HandleHealth reports process and cache database health.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemStats()

	response := map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"cpu_percent":    cpuPercent,
		"memory_percent": memPercent,
	}

	status := http.StatusOK
	if h.cacheDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.cacheDB.QuickCheck(ctx); err != nil {
			h.log.Error().Err(err).Msg("Cache database health check failed")
			response["status"] = "degraded"
			response["cache_db"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			response["cache_db"] = "ok"
		}
	}

	writeJSONResponse(w, status, response, h.log)
}

// HandleStatus reports each calendar's built range and freshness.
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	type calStatus struct {
		Code       string `json:"code"`
		Built      bool   `json:"built"`
		RangeStart string `json:"range_start,omitempty"`
		RangeEnd   string `json:"range_end,omitempty"`
		Sessions   int    `json:"sessions,omitempty"`
		BuiltAt    string `json:"built_at,omitempty"`
	}

	statuses := make([]calStatus, 0, len(h.registry.Codes()))
	for _, c := range h.registry.All() {
		cs := calStatus{Code: c.Code()}
		if b := c.Built(); b != nil {
			cs.Built = true
			cs.RangeStart = b.Start.String()
			cs.RangeEnd = b.End.String()
			cs.Sessions = len(b.Sessions)
			cs.BuiltAt = b.BuiltAt.Format(time.RFC3339)
		}
		statuses = append(statuses, cs)
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"calendars": statuses,
	}, h.log)
}

// HandleTriggerHorizon runs the horizon extension job immediately.
func (h *SystemHandlers) HandleTriggerHorizon(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil || h.horizonJob == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error":   "unavailable",
			"message": "background jobs are disabled",
		}, h.log)
		return
	}
	if err := h.scheduler.RunNow(h.horizonJob); err != nil {
		writeJSONResponse(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   "job_failed",
			"message": err.Error(),
		}, h.log)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status": "completed",
		"job":    h.horizonJob.Name(),
	}, h.log)
}

// systemStats samples CPU and memory usage. Failures degrade to zero values
// rather than failing the health endpoint.
func (h *SystemHandlers) systemStats() (float64, float64) {
	var cpuPercent, memPercent float64

	if percents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	} else if err != nil {
		h.log.Debug().Err(err).Msg("CPU sampling failed")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		memPercent = vm.UsedPercent
	} else {
		h.log.Debug().Err(err).Msg("Memory sampling failed")
	}

	return cpuPercent, memPercent
}
