// Package app wires repositories, the scheduler, the client scope and the
// event publisher into the services used by the server and the CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/editorial-api/configs"
	"github.com/maheshrc27/editorial-api/internal/api"
	"github.com/maheshrc27/editorial-api/internal/events"
	"github.com/maheshrc27/editorial-api/internal/lock"
	"github.com/maheshrc27/editorial-api/internal/queue"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/internal/scheduler"
	"github.com/maheshrc27/editorial-api/internal/service"
	"github.com/redis/go-redis/v9"
)

// Deps are the external resources. A nil DB selects the memory store; a nil
// Redis selects the in-process scope and inline event delivery.
type Deps struct {
	DB    *sql.DB
	Redis *redis.Client
	Tasks *asynq.Client
	Now   func() time.Time
}

type Container struct {
	Repos     *repository.Repositories
	Scheduler *scheduler.Scheduler
	Services  api.Services
	Worker    *queue.Queue
	Inline    bool
}

func Wire(cfg config.Config, deps Deps) (*Container, error) {
	opts, err := cfg.SchedulerOptions()
	if err != nil {
		return nil, err
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	var repos *repository.Repositories
	if deps.DB != nil {
		repos = repository.NewRepositories(deps.DB)
	} else {
		repos = repository.NewMemoryRepositories()
	}

	var scope lock.Scope
	if deps.Redis != nil {
		scope = lock.NewRedis(deps.Redis, cfg.LockTTL, cfg.LockWait)
	} else {
		scope = lock.NewLocal(cfg.LockWait)
	}

	var (
		pub    events.Publisher
		inline *queue.Inline
	)
	if deps.Tasks != nil {
		pub = queue.NewPublisher(deps.Tasks)
	} else {
		inline = queue.NewInline(time.Minute)
		pub = inline
	}

	sched := scheduler.New(opts, now)
	queueService := service.NewQueueService(repos.Clients, repos.Posts, sched, scope, pub, now)
	postService := service.NewPostService(repos.Clients, repos.Posts, repos.History, sched, scope, pub, now)

	c := &Container{
		Repos:     repos,
		Scheduler: sched,
		Services: api.Services{
			Auth:            service.NewAuthService(cfg, repos.Users),
			Users:           service.NewUserService(repos.Users, repos.Clients),
			Clients:         service.NewClientService(repos.Clients, repos.Posts, sched, scope, pub, now),
			Posts:           postService,
			Queue:           queueService,
			ContentRequests: service.NewContentRequestService(repos.Clients, repos.ContentRequests, repos.Posts, postService, now),
			Comments:        service.NewCommentService(repos.Posts, repos.Comments),
		},
		Worker: queue.NewQueue(repos.History, queueService),
		Inline: inline != nil,
	}
	if inline != nil {
		inline.Attach(c.Worker.ServeMux())
	}
	return c, nil
}

// Open connects to the stores named by cfg. The returned func releases them.
func Open(ctx context.Context, cfg config.Config) (Deps, func(), error) {
	var deps Deps
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("close: %v", err)
			}
		}
	}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
	case config.StoreDriverPostgres, "":
		db, err := sql.Open("postgres", cfg.PostgresURI)
		if err != nil {
			return deps, cleanup, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			cleanup()
			return deps, func() {}, fmt.Errorf("database is unreachable: %w", err)
		}
		deps.DB = db
	default:
		return deps, cleanup, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisURI != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
		closers = append(closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cleanup()
			return Deps{}, func() {}, fmt.Errorf("redis is unreachable: %w", err)
		}
		deps.Redis = rdb

		tasks := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisURI})
		closers = append(closers, tasks.Close)
		deps.Tasks = tasks
	}

	return deps, cleanup, nil
}
