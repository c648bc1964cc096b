package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/editorial-api/internal/events"
)

func newTask(event events.Event) (*asynq.Task, []asynq.Option, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}

	opts := []asynq.Option{asynq.MaxRetry(5)}
	if e, ok := event.(events.QueueInvalidated); ok {
		// collapse bursts of cadence edits into one recompute per client
		opts = append(opts, asynq.TaskID(fmt.Sprintf("recalculate:%d:%d", e.ClientID, e.OccurredAt.Unix()/60)))
	}
	return asynq.NewTask(string(event.EventType()), payload), opts, nil
}

// Publisher delivers events as asynq tasks.
type Publisher struct {
	client *asynq.Client
}

func NewPublisher(client *asynq.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	task, opts, err := newTask(event)
	if err != nil {
		return err
	}

	info, err := p.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("task enqueued", "type", info.Type, "id", info.ID)
	return nil
}

// Inline runs the handlers in the publishing goroutine. It is used when no
// redis is configured.
type Inline struct {
	mu      sync.RWMutex
	handler asynq.Handler
	timeout time.Duration
}

func NewInline(timeout time.Duration) *Inline {
	return &Inline{timeout: timeout}
}

func (p *Inline) Attach(handler asynq.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = handler
}

func (p *Inline) Publish(ctx context.Context, event events.Event) error {
	p.mu.RLock()
	handler := p.handler
	p.mu.RUnlock()
	if handler == nil {
		return errors.New("no handler attached")
	}

	task, _, err := newTask(event)
	if err != nil {
		return err
	}

	// the handler outlives the request that published the event
	hctx := context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(hctx, p.timeout)
		defer cancel()
	}

	if err := handler.ProcessTask(hctx, task); err != nil {
		slog.Error("inline task failed", "type", task.Type(), "error", err)
		return err
	}
	return nil
}
