package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/editorial-api/internal/events"
	"github.com/maheshrc27/editorial-api/internal/models"
)

// HandlePostStatusChanged appends the transition to the post's history.
func (q *Queue) HandlePostStatusChanged(ctx context.Context, task *asynq.Task) error {
	var payload events.PostStatusChanged
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	_, err := q.ph.Create(ctx, &models.PostHistory{
		PostID:      payload.PostID,
		ClientID:    payload.ClientID,
		ActorID:     payload.ActorID,
		FromStatus:  payload.From,
		ToStatus:    payload.To,
		ScheduledAt: payload.ScheduledAt,
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (q *Queue) HandleSlotAssigned(ctx context.Context, task *asynq.Task) error {
	var payload events.SlotAssigned
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	slog.Info("slot assigned", "post_id", payload.PostID, "client_id", payload.ClientID, "date", payload.Date)
	return nil
}

// HandleQueueInvalidated recomputes the client's queue. A busy scope is
// retried by asynq; a queue that no longer fits the horizon is not.
func (q *Queue) HandleQueueInvalidated(ctx context.Context, task *asynq.Task) error {
	var payload events.QueueInvalidated
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	_, err := q.qs.RecalculateQueue(ctx, payload.ClientID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrSchedulingHorizonExceeded), errors.Is(err, models.ErrNotFound):
		slog.Error("queue recalculation abandoned", "client_id", payload.ClientID, "reason", payload.Reason, "error", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	default:
		return err
	}
}
