package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/maheshrc27/editorial-api/internal/events"
	"github.com/maheshrc27/editorial-api/internal/lock"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/policy"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/internal/scheduler"
	"github.com/maheshrc27/editorial-api/internal/transfer"
)

type ClientService interface {
	Create(ctx context.Context, actor *models.User, cc *transfer.ClientCreation) (*models.Client, error)
	Get(ctx context.Context, actor *models.User, clientID int64) (*models.Client, error)
	List(ctx context.Context, actor *models.User) ([]*models.Client, error)
	// UpdateCadence stores the new cadence together with the re-placed queue.
	// When the queued posts no longer fit, nothing is written.
	UpdateCadence(ctx context.Context, actor *models.User, clientID int64, cadence models.Cadence) (*models.Client, error)
	// Remove deletes the client. Its posts and content requests are orphaned,
	// not deleted.
	Remove(ctx context.Context, actor *models.User, clientID int64) error
}

type clientService struct {
	cr    repository.ClientRepository
	pr    repository.PostRepository
	sched *scheduler.Scheduler
	scope lock.Scope
	pub   events.Publisher
	now   func() time.Time
}

func NewClientService(
	cr repository.ClientRepository,
	pr repository.PostRepository,
	sched *scheduler.Scheduler,
	scope lock.Scope,
	pub events.Publisher,
	now func() time.Time) ClientService {
	if now == nil {
		now = time.Now
	}
	return &clientService{
		cr:    cr,
		pr:    pr,
		sched: sched,
		scope: scope,
		pub:   pub,
		now:   now,
	}
}

func validateCadence(c *models.Cadence) error {
	return invalid(validation.ValidateStruct(c,
		validation.Field(&c.WeeklyCapacity, validation.Min(0)),
		validation.Field(&c.MonthlyCapacity, validation.Min(0)),
		validation.Field(&c.StrategyPillars, uniquePillars),
	))
}

func (s *clientService) Create(ctx context.Context, actor *models.User, cc *transfer.ClientCreation) (*models.Client, error) {
	if cc == nil {
		return nil, fmt.Errorf("%w: client data is nil", models.ErrValidation)
	}
	if err := authorize(actor, policy.ActionCreate, clientResource(0)); err != nil {
		return nil, err
	}

	if err := invalid(validation.ValidateStruct(cc,
		validation.Field(&cc.Name, validation.Required, validation.Length(1, 200)),
	)); err != nil {
		return nil, err
	}
	cadence := models.Cadence{
		WeeklyCapacity:  cc.WeeklyCapacity,
		MonthlyCapacity: cc.MonthlyCapacity,
		StrategyPillars: cc.StrategyPillars,
	}
	if err := validateCadence(&cadence); err != nil {
		return nil, err
	}

	client := models.Client{
		Name:            cc.Name,
		Status:          models.ClientStatusActive,
		WeeklyCapacity:  cadence.WeeklyCapacity,
		MonthlyCapacity: cadence.MonthlyCapacity,
		StrategyPillars: cadence.StrategyPillars,
	}
	if client.StrategyPillars == nil {
		client.StrategyPillars = []string{}
	}

	id, err := s.cr.Create(ctx, &client)
	if err != nil {
		return nil, fmt.Errorf("error creating client: %w", err)
	}
	return s.load(ctx, id)
}

func (s *clientService) load(ctx context.Context, clientID int64) (*models.Client, error) {
	client, err := s.cr.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("error getting client: %w", err)
	}
	if client == nil {
		return nil, notFound("client", clientID)
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, actor *models.User, clientID int64) (*models.Client, error) {
	if err := authorize(actor, policy.ActionRead, clientResource(clientID)); err != nil {
		return nil, err
	}
	return s.load(ctx, clientID)
}

// List returns the clients the actor may read.
func (s *clientService) List(ctx context.Context, actor *models.User) ([]*models.Client, error) {
	clients, err := s.cr.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("error listing clients: %w", err)
	}

	visible := make([]*models.Client, 0, len(clients))
	for _, c := range clients {
		if policy.CanPerform(actor, policy.ActionRead, clientResource(c.ID)) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

func (s *clientService) UpdateCadence(ctx context.Context, actor *models.User, clientID int64, cadence models.Cadence) (*models.Client, error) {
	if err := authorize(actor, policy.ActionUpdate, clientResource(clientID)); err != nil {
		return nil, err
	}
	if err := validateCadence(&cadence); err != nil {
		return nil, err
	}

	release, err := s.scope.Acquire(ctx, lock.ClientKey(clientID))
	if err != nil {
		return nil, err
	}
	defer release()

	client, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}

	client.WeeklyCapacity = cadence.WeeklyCapacity
	client.MonthlyCapacity = cadence.MonthlyCapacity
	if cadence.StrategyPillars != nil {
		client.StrategyPillars = cadence.StrategyPillars
	}

	posts, err := s.pr.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	changed := make(map[int64]*models.Post)
	for _, p := range posts {
		if p.Pillar != "" && !client.HasPillar(p.Pillar) {
			p.Pillar = ""
			changed[p.ID] = p
		}
	}

	assignments, err := s.sched.Recalculate(client, posts)
	if err != nil {
		return nil, fmt.Errorf("queue does not fit the new cadence: %w", err)
	}

	var moved []*models.Post
	for _, p := range posts {
		at, ok := assignments[p.ID]
		if !ok || (p.ScheduledAt != nil && p.ScheduledAt.Equal(at)) {
			continue
		}
		p.ScheduledAt = &at
		changed[p.ID] = p
		moved = append(moved, p)
	}

	batch := make([]*models.Post, 0, len(changed))
	for _, p := range posts {
		if _, ok := changed[p.ID]; ok {
			batch = append(batch, p)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.cr.SaveCadence(ctx, client, batch); err != nil {
		return nil, fmt.Errorf("error updating client: %w", err)
	}

	for _, p := range moved {
		s.publish(ctx, events.SlotAssigned{
			ID:         events.NewID(),
			PostID:     p.ID,
			ClientID:   clientID,
			Date:       *p.ScheduledAt,
			OccurredAt: s.now(),
		})
	}
	s.publish(ctx, events.QueueInvalidated{
		ID:         events.NewID(),
		ClientID:   clientID,
		Reason:     "cadence changed",
		OccurredAt: s.now(),
	})

	slog.Info("cadence updated", "client_id", clientID, "moved", len(moved), "unassigned", len(changed)-len(moved))
	return s.load(ctx, clientID)
}

func (s *clientService) Remove(ctx context.Context, actor *models.User, clientID int64) error {
	if err := authorize(actor, policy.ActionDelete, clientResource(clientID)); err != nil {
		return err
	}
	if _, err := s.load(ctx, clientID); err != nil {
		return err
	}
	if err := s.cr.Remove(ctx, clientID); err != nil {
		return fmt.Errorf("error removing client: %w", err)
	}
	return nil
}

func (s *clientService) publish(ctx context.Context, event events.Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		slog.Error("failed to publish event", "type", event.EventType(), "error", err)
	}
}
