package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 20, cfg.Scheduler.Attempts)
	assert.Equal(t, int64(0), cfg.Scheduler.Seed)
	assert.Equal(t, 3, cfg.Scheduler.DefaultLunchSlot)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Database.AutoMigrate)
}

func TestLoadSchedulerOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULER_ATTEMPTS", "40")
	t.Setenv("SCHEDULER_SEED", "99")
	t.Setenv("SCHEDULER_DEFAULT_LUNCH_SLOT", "12")
	t.Setenv("TIMETABLE_CACHE_TTL", "bogus")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Scheduler.Attempts)
	assert.Equal(t, int64(99), cfg.Scheduler.Seed)
	assert.Equal(t, 3, cfg.Scheduler.DefaultLunchSlot, "out of range falls back")
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
