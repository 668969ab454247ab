package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	original := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if original != "" {
			os.Setenv(key, original)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATA_DIR", t.TempDir())
	os.Unsetenv("PORT")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("CALENDAR_START_YEAR")
	os.Unsetenv("CALENDAR_HORIZON_YEARS")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2000, cfg.StartYear)
	assert.Equal(t, 1, cfg.HorizonYears)
	assert.False(t, cfg.DevMode)
}

func TestLoad_FromEnvironment(t *testing.T) {
	setEnv(t, "DATA_DIR", t.TempDir())
	setEnv(t, "PORT", "9100")
	setEnv(t, "LOG_LEVEL", "debug")
	setEnv(t, "CALENDAR_START_YEAR", "1995")
	setEnv(t, "CALENDAR_HORIZON_YEARS", "3")
	setEnv(t, "DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1995, cfg.StartYear)
	assert.Equal(t, 3, cfg.HorizonYears)
	assert.True(t, cfg.DevMode)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	setEnv(t, "DATA_DIR", t.TempDir())
	setEnv(t, "PORT", "not-a-number")
	setEnv(t, "CALENDAR_HORIZON_YEARS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, 1, cfg.HorizonYears)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Port: 8010, StartYear: 2000, HorizonYears: 1}, false},
		{"bad port", Config{Port: -1, StartYear: 2000}, true},
		{"bad horizon", Config{Port: 8010, StartYear: 2000, HorizonYears: -2}, true},
		{"start year too early", Config{Port: 8010, StartYear: 1850}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
