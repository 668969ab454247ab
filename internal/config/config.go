package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for the schedule cache database
	Port         int
	LogLevel     string
	DevMode      bool
	StartYear    int // First calendar year built at startup
	HorizonYears int // Years past today kept built by the horizon job
	CronSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic
	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		if _, err := os.Stat("../data"); err == nil {
			dataDir = "../data"
		} else {
			dataDir = "./data"
		}
	}

	cfg := &Config{
		DataDir:      dataDir,
		Port:         getEnvAsInt("PORT", 8010),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		StartYear:    getEnvAsInt("CALENDAR_START_YEAR", 2000),
		HorizonYears: getEnvAsInt("CALENDAR_HORIZON_YEARS", 1),
		// Default: rebuild horizon nightly at 03:00
		CronSchedule: getEnv("HORIZON_CRON", "0 0 3 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.HorizonYears < 0 {
		return fmt.Errorf("invalid horizon years: %d", c.HorizonYears)
	}
	if c.StartYear < 1900 {
		return fmt.Errorf("invalid start year: %d (calendars before 1900 are not supported)", c.StartYear)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
