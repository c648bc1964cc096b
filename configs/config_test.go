package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SCHEDULE_WEEK_START", "")

	cfg := LoadConfig()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.LockWait)
	assert.Equal(t, 72*time.Hour, cfg.TokenDuration)

	opts, err := cfg.SchedulerOptions()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, opts.WeekStart)
	assert.Equal(t, 10*time.Hour, opts.PublishAt)
	assert.Equal(t, time.UTC, opts.Location)
	assert.Equal(t, 52, opts.HorizonWeeks)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("SCHEDULE_WEEK_START", "sunday")
	t.Setenv("SCHEDULE_PUBLISH_AT", "18:30")
	t.Setenv("SCHEDULE_HORIZON_WEEKS", "8")
	t.Setenv("LOCK_WAIT", "500ms")

	cfg := LoadConfig()
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.LockWait)

	opts, err := cfg.SchedulerOptions()
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, opts.WeekStart)
	assert.Equal(t, 18*time.Hour+30*time.Minute, opts.PublishAt)
	assert.Equal(t, 8, opts.HorizonWeeks)
}

func TestSchedulerOptionsRejectsBadValues(t *testing.T) {
	cfg := &Config{Scheduler: Scheduler{WeekStart: "someday"}}
	_, err := cfg.SchedulerOptions()
	assert.Error(t, err)

	cfg = &Config{Scheduler: Scheduler{PublishAt: "25:99"}}
	_, err = cfg.SchedulerOptions()
	assert.Error(t, err)
}
