package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/maheshrc27/editorial-api/internal/scheduler"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Scheduler struct {
	WeekStart    string
	PublishAt    string // HH:MM in Location
	Location     string
	HorizonWeeks int
}

type Config struct {
	Port              string
	StoreDriver       string
	PostgresURI       string
	RedisURI          string
	FrontendURL       string
	SecretKey         string
	CookieName        string
	TokenDuration     time.Duration
	LockWait          time.Duration
	LockTTL           time.Duration
	WorkerConcurrency int
	RecalculateSpec   string // robfig/cron spec, seconds first
	Scheduler         Scheduler
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("POSTGRES_URI", "")
	v.SetDefault("REDIS_URI", "")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("COOKIE_NAME", "editorial_session")
	v.SetDefault("TOKEN_DURATION", "72h")
	v.SetDefault("LOCK_WAIT", "3s")
	v.SetDefault("LOCK_TTL", "30s")
	v.SetDefault("WORKER_CONCURRENCY", 10)
	v.SetDefault("RECALCULATE_SPEC", "0 0 2 * * *")
	v.SetDefault("SCHEDULE_WEEK_START", "monday")
	v.SetDefault("SCHEDULE_PUBLISH_AT", "10:00")
	v.SetDefault("SCHEDULE_LOCATION", "UTC")
	v.SetDefault("SCHEDULE_HORIZON_WEEKS", scheduler.DefaultHorizonWeeks)
}

// LoadConfig reads the process environment. Call godotenv first to pick up a
// local .env file.
func LoadConfig() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		Port:              v.GetString("PORT"),
		StoreDriver:       strings.ToLower(v.GetString("STORE_DRIVER")),
		PostgresURI:       v.GetString("POSTGRES_URI"),
		RedisURI:          v.GetString("REDIS_URI"),
		FrontendURL:       v.GetString("FRONTEND_URL"),
		SecretKey:         v.GetString("SECRET_KEY"),
		CookieName:        v.GetString("COOKIE_NAME"),
		TokenDuration:     v.GetDuration("TOKEN_DURATION"),
		LockWait:          v.GetDuration("LOCK_WAIT"),
		LockTTL:           v.GetDuration("LOCK_TTL"),
		WorkerConcurrency: v.GetInt("WORKER_CONCURRENCY"),
		RecalculateSpec:   v.GetString("RECALCULATE_SPEC"),
		Scheduler: Scheduler{
			WeekStart:    v.GetString("SCHEDULE_WEEK_START"),
			PublishAt:    v.GetString("SCHEDULE_PUBLISH_AT"),
			Location:     v.GetString("SCHEDULE_LOCATION"),
			HorizonWeeks: v.GetInt("SCHEDULE_HORIZON_WEEKS"),
		},
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func (c *Config) SchedulerOptions() (scheduler.Options, error) {
	opts := scheduler.DefaultOptions()

	if c.Scheduler.WeekStart != "" {
		day, ok := weekdays[strings.ToLower(c.Scheduler.WeekStart)]
		if !ok {
			return opts, fmt.Errorf("unknown week start %q", c.Scheduler.WeekStart)
		}
		opts.WeekStart = day
	}

	if c.Scheduler.PublishAt != "" {
		t, err := time.Parse("15:04", c.Scheduler.PublishAt)
		if err != nil {
			return opts, fmt.Errorf("invalid publish time %q: %w", c.Scheduler.PublishAt, err)
		}
		opts.PublishAt = time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	}

	if c.Scheduler.Location != "" {
		loc, err := time.LoadLocation(c.Scheduler.Location)
		if err != nil {
			return opts, fmt.Errorf("invalid location %q: %w", c.Scheduler.Location, err)
		}
		opts.Location = loc
	}

	if c.Scheduler.HorizonWeeks > 0 {
		opts.HorizonWeeks = c.Scheduler.HorizonWeeks
	}
	return opts, nil
}
