package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/market-sessions/internal/config"
	"github.com/aristath/market-sessions/internal/modules/calendar"
	"github.com/aristath/market-sessions/internal/modules/exchanges"
	"github.com/aristath/market-sessions/internal/modules/rules"
	"github.com/aristath/market-sessions/internal/scheduler"
	"github.com/aristath/market-sessions/internal/server"
	"github.com/aristath/market-sessions/internal/storage"
	"github.com/aristath/market-sessions/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Pretty:  true,
		Service: "market-sessions",
	})

	log.Info().Msg("Starting market sessions service")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Schedule cache database.
	cacheDB, err := storage.Open(storage.Config{
		Path:    cfg.DataDir + "/schedules.db",
		Profile: storage.ProfileCache,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open schedule cache")
	}
	defer cacheDB.Close()

	if err := cacheDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schedule cache")
	}
	repo := storage.NewRepository(cacheDB, log)

	// Load calendars from the built-in definitions.
	var calendars []*calendar.Calendar
	for _, def := range exchanges.Definitions() {
		c, err := calendar.New(def, log)
		if err != nil {
			log.Fatal().Err(err).Str("exchange", def.Code).Msg("Failed to load calendar")
		}
		calendars = append(calendars, c)
	}
	registry, err := calendar.NewRegistry(calendars...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build calendar registry")
	}

	// Build or restore each calendar's session table for the configured
	// range. A valid cache skips the build; stale or missing caches rebuild
	// and repopulate.
	start := rules.NewDate(cfg.StartYear, time.January, 1)
	end := rules.DateOf(time.Now().UTC().AddDate(cfg.HorizonYears, 0, 0))
	ctx := context.Background()
	for _, c := range registry.All() {
		cached, ok, err := repo.Load(ctx, c.Definition())
		if err != nil {
			log.Warn().Err(err).Str("exchange", c.Code()).Msg("Cache load failed, rebuilding")
		}
		if ok && !cached.Start.After(start) && !cached.End.Before(end) {
			if err := c.Restore(cached.BuildID, cached.Start, cached.End, cached.Sessions); err == nil {
				continue
			}
			log.Warn().Str("exchange", c.Code()).Msg("Cache restore rejected, rebuilding")
		}

		if err := c.EnsureRange(start, end); err != nil {
			log.Fatal().Err(err).Str("exchange", c.Code()).Msg("Initial schedule build failed")
		}
		if err := repo.Save(ctx, c.Definition(), c.Built()); err != nil {
			log.Warn().Err(err).Str("exchange", c.Code()).Msg("Failed to cache schedule")
		}
	}
	log.Info().
		Strs("calendars", registry.Codes()).
		Str("start", start.String()).
		Str("end", end.String()).
		Msg("Calendars ready")

	// Background horizon extension keeps tables ahead of the clock.
	sched := scheduler.New(log)
	horizonJob := scheduler.NewHorizonJob(registry, repo, cfg.HorizonYears, log)
	if err := sched.AddJob(cfg.CronSchedule, horizonJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register horizon job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:        log,
		Registry:   registry,
		CacheDB:    cacheDB,
		Scheduler:  sched,
		HorizonJob: horizonJob,
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
