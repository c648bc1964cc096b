package service

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/maheshrc27/editorial-api/internal/events"
	"github.com/maheshrc27/editorial-api/internal/lock"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/policy"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/internal/scheduler"
	"github.com/maheshrc27/editorial-api/internal/transfer"
)

type QueueService interface {
	// RecalculateQueue re-places the client's movable posts and returns the
	// posts whose slot changed. It is the system entry point used by workers
	// and jobs and performs no access check.
	RecalculateQueue(ctx context.Context, clientID int64) ([]*models.Post, error)
	Recalculate(ctx context.Context, actor *models.User, clientID int64) ([]*models.Post, error)
	GetCalendar(ctx context.Context, actor *models.User, clientID int64, from, to time.Time) (iter.Seq2[scheduler.Entry, error], error)
	SuggestPillar(ctx context.Context, actor *models.User, clientID int64) (*transfer.PillarSuggestion, error)
}

type queueService struct {
	cr    repository.ClientRepository
	pr    repository.PostRepository
	sched *scheduler.Scheduler
	scope lock.Scope
	pub   events.Publisher
	now   func() time.Time
}

func NewQueueService(
	cr repository.ClientRepository,
	pr repository.PostRepository,
	sched *scheduler.Scheduler,
	scope lock.Scope,
	pub events.Publisher,
	now func() time.Time) QueueService {
	if now == nil {
		now = time.Now
	}
	return &queueService{
		cr:    cr,
		pr:    pr,
		sched: sched,
		scope: scope,
		pub:   pub,
		now:   now,
	}
}

func clientResource(clientID int64) policy.Resource {
	return policy.Resource{Type: policy.ResourceClient, OwnerClientID: clientID}
}

func (s *queueService) client(ctx context.Context, clientID int64) (*models.Client, error) {
	client, err := s.cr.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("error getting client: %w", err)
	}
	if client == nil {
		return nil, notFound("client", clientID)
	}
	return client, nil
}

func (s *queueService) RecalculateQueue(ctx context.Context, clientID int64) ([]*models.Post, error) {
	client, err := s.client(ctx, clientID)
	if err != nil {
		return nil, err
	}

	release, err := s.scope.Acquire(ctx, lock.ClientKey(clientID))
	if err != nil {
		return nil, err
	}
	defer release()

	posts, err := s.pr.ListByClient(ctx, clientID, scheduledStatuses...)
	if err != nil {
		return nil, fmt.Errorf("error listing queue: %w", err)
	}

	assignments, err := s.sched.Recalculate(client, posts)
	if err != nil {
		return nil, err
	}

	var changed []*models.Post
	for _, p := range posts {
		at, ok := assignments[p.ID]
		if !ok || (p.ScheduledAt != nil && p.ScheduledAt.Equal(at)) {
			continue
		}
		p.ScheduledAt = &at
		changed = append(changed, p)
	}

	// nothing has been written yet, so a cancelled recompute leaves the old
	// queue in place
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.pr.SaveBatch(ctx, changed); err != nil {
		return nil, fmt.Errorf("error saving queue: %w", err)
	}

	for _, p := range changed {
		if err := s.pub.Publish(ctx, events.SlotAssigned{
			ID:         events.NewID(),
			PostID:     p.ID,
			ClientID:   clientID,
			Date:       *p.ScheduledAt,
			OccurredAt: s.now(),
		}); err != nil {
			slog.Error("failed to publish event", "type", events.TypeSlotAssigned, "error", err)
		}
	}

	slog.Info("queue recalculated", "client_id", clientID, "moved", len(changed))
	return changed, nil
}

func (s *queueService) Recalculate(ctx context.Context, actor *models.User, clientID int64) ([]*models.Post, error) {
	if err := authorize(actor, policy.ActionUpdate, clientResource(clientID)); err != nil {
		return nil, err
	}
	return s.RecalculateQueue(ctx, clientID)
}

func (s *queueService) GetCalendar(ctx context.Context, actor *models.User, clientID int64, from, to time.Time) (iter.Seq2[scheduler.Entry, error], error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: calendar range must end after it starts", models.ErrValidation)
	}
	if err := authorize(actor, policy.ActionRead, postResource(clientID)); err != nil {
		return nil, err
	}
	if _, err := s.client(ctx, clientID); err != nil {
		return nil, err
	}

	load := func() ([]*models.Post, error) {
		return s.pr.ListByClient(ctx, clientID, scheduledStatuses...)
	}
	return scheduler.Calendar(load, from, to), nil
}

func (s *queueService) SuggestPillar(ctx context.Context, actor *models.User, clientID int64) (*transfer.PillarSuggestion, error) {
	if err := authorize(actor, policy.ActionRead, clientResource(clientID)); err != nil {
		return nil, err
	}
	client, err := s.client(ctx, clientID)
	if err != nil {
		return nil, err
	}

	posts, err := s.pr.ListByClient(ctx, clientID, scheduledStatuses...)
	if err != nil {
		return nil, fmt.Errorf("error listing queue: %w", err)
	}

	return &transfer.PillarSuggestion{
		ClientID: clientID,
		Pillar:   s.sched.SuggestPillar(client, posts),
		Usage:    s.sched.PillarUsage(posts),
		Share:    client.PillarShare(scheduler.PillarWindowWeeks),
	}, nil
}
