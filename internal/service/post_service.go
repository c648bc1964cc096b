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
	"github.com/maheshrc27/editorial-api/internal/workflow"
)

// scheduledStatuses are the statuses that hold a calendar slot.
var scheduledStatuses = []models.PostStatus{
	models.PostStatusApproved,
	models.PostStatusFinished,
	models.PostStatusClientApproved,
}

type PostService interface {
	Create(ctx context.Context, actor *models.User, pc *transfer.PostCreation) (*models.Post, error)
	Get(ctx context.Context, actor *models.User, postID int64) (*models.Post, error)
	List(ctx context.Context, actor *models.User, clientID int64, status models.PostStatus) ([]*models.Post, error)
	Transition(ctx context.Context, actor *models.User, postID int64, target models.PostStatus) (*models.Post, error)
	EditContent(ctx context.Context, actor *models.User, postID int64, patch models.ContentPatch) (*models.Post, error)
	Remove(ctx context.Context, actor *models.User, postID int64) error
	History(ctx context.Context, actor *models.User, postID int64) ([]*models.PostHistory, error)
}

type postService struct {
	cr    repository.ClientRepository
	pr    repository.PostRepository
	ph    repository.PostHistoryRepository
	wf    *workflow.Engine
	sched *scheduler.Scheduler
	scope lock.Scope
	pub   events.Publisher
	now   func() time.Time
}

func NewPostService(
	cr repository.ClientRepository,
	pr repository.PostRepository,
	ph repository.PostHistoryRepository,
	sched *scheduler.Scheduler,
	scope lock.Scope,
	pub events.Publisher,
	now func() time.Time) PostService {
	if now == nil {
		now = time.Now
	}
	return &postService{
		cr:    cr,
		pr:    pr,
		ph:    ph,
		wf:    workflow.NewEngine(now),
		sched: sched,
		scope: scope,
		pub:   pub,
		now:   now,
	}
}

func postResource(clientID int64) policy.Resource {
	return policy.Resource{Type: policy.ResourcePost, OwnerClientID: clientID}
}

func (s *postService) load(ctx context.Context, postID int64) (*models.Post, error) {
	if postID == 0 {
		return nil, fmt.Errorf("%w: post id is not valid", models.ErrValidation)
	}
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil {
		return nil, notFound("post", postID)
	}
	return post, nil
}

func (s *postService) Create(ctx context.Context, actor *models.User, pc *transfer.PostCreation) (*models.Post, error) {
	if pc == nil {
		return nil, fmt.Errorf("%w: post creation data is nil", models.ErrValidation)
	}
	err := validation.ValidateStruct(pc,
		validation.Field(&pc.ClientID, validation.Required),
		validation.Field(&pc.Type, validation.Required, validation.In(postTypeValues()...)),
		validation.Field(&pc.Pillar, validation.Length(0, 100)),
	)
	if err != nil {
		return nil, invalid(err)
	}

	if err := authorize(actor, policy.ActionCreate, postResource(pc.ClientID)); err != nil {
		return nil, err
	}

	client, err := s.cr.GetByID(ctx, pc.ClientID)
	if err != nil {
		return nil, fmt.Errorf("error getting client: %w", err)
	}
	if client == nil {
		return nil, notFound("client", pc.ClientID)
	}
	if pc.Pillar != "" && !client.HasPillar(pc.Pillar) {
		return nil, fmt.Errorf("%w: pillar %q is not one of the client's strategy pillars", models.ErrValidation, pc.Pillar)
	}

	post := models.Post{
		ClientID: pc.ClientID,
		Type:     pc.Type,
		Pillar:   pc.Pillar,
		Status:   models.PostStatusDraft,
		Content: models.Content{
			Script:    pc.Script,
			Caption:   pc.Caption,
			AssetLink: pc.AssetLink,
		},
		CreatedBy: actor.ID,
	}

	postID, err := s.pr.Create(ctx, &post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	return s.load(ctx, postID)
}

func (s *postService) Get(ctx context.Context, actor *models.User, postID int64) (*models.Post, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, policy.ActionRead, postResource(post.ClientID)); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, actor *models.User, clientID int64, status models.PostStatus) ([]*models.Post, error) {
	if clientID == 0 {
		return nil, fmt.Errorf("%w: client_id is required", models.ErrValidation)
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}
	if err := authorize(actor, policy.ActionRead, postResource(clientID)); err != nil {
		return nil, err
	}

	var statuses []models.PostStatus
	if status != "" {
		statuses = append(statuses, status)
	}
	posts, err := s.pr.ListByClient(ctx, clientID, statuses...)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

// Transition runs inside the client's scope so that the slot it may assign is
// computed against a stable queue.
func (s *postService) Transition(ctx context.Context, actor *models.User, postID int64, target models.PostStatus) (*models.Post, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	release, err := s.scope.Acquire(ctx, lock.ClientKey(post.ClientID))
	if err != nil {
		return nil, err
	}
	defer release()

	post, err = s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	result, err := s.wf.Transition(post, target, actor, s.slotFor(ctx, post.ClientID))
	if err != nil {
		return nil, err
	}

	if err := s.pr.Save(ctx, result.Post); err != nil {
		return nil, fmt.Errorf("error saving post: %w", err)
	}

	s.publish(ctx, events.PostStatusChanged{
		ID:          events.NewID(),
		PostID:      result.Post.ID,
		ClientID:    result.Post.ClientID,
		From:        result.From,
		To:          result.To,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		ScheduledAt: result.Post.ScheduledAt,
		OccurredAt:  s.now(),
	})
	if result.SlotAssigned {
		s.publish(ctx, events.SlotAssigned{
			ID:         events.NewID(),
			PostID:     result.Post.ID,
			ClientID:   result.Post.ClientID,
			Date:       *result.Post.ScheduledAt,
			OccurredAt: s.now(),
		})
	}

	return result.Post, nil
}

func (s *postService) slotFor(ctx context.Context, clientID int64) workflow.SlotFunc {
	return func(post *models.Post) (time.Time, error) {
		client, err := s.cr.GetByID(ctx, clientID)
		if err != nil {
			return time.Time{}, fmt.Errorf("error getting client: %w", err)
		}
		if client == nil {
			return time.Time{}, notFound("client", clientID)
		}
		existing, err := s.pr.ListByClient(ctx, clientID, scheduledStatuses...)
		if err != nil {
			return time.Time{}, fmt.Errorf("error listing queue: %w", err)
		}
		return s.sched.Assign(client, existing, post)
	}
}

func (s *postService) publish(ctx context.Context, event events.Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		slog.Error("failed to publish event", "type", event.EventType(), "error", err)
	}
}

func (s *postService) EditContent(ctx context.Context, actor *models.User, postID int64, patch models.ContentPatch) (*models.Post, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	next, err := s.wf.EditContent(post, patch, actor)
	if err != nil {
		return nil, err
	}

	if err := s.pr.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("error saving post: %w", err)
	}
	return next, nil
}

func (s *postService) Remove(ctx context.Context, actor *models.User, postID int64) error {
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if err := authorize(actor, policy.ActionDelete, postResource(post.ClientID)); err != nil {
		return err
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	return nil
}

func (s *postService) History(ctx context.Context, actor *models.User, postID int64) ([]*models.PostHistory, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, policy.ActionRead, postResource(post.ClientID)); err != nil {
		return nil, err
	}

	entries, err := s.ph.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post history: %w", err)
	}
	return entries, nil
}
