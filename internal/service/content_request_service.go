package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/policy"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/internal/transfer"
)

type ContentRequestService interface {
	Create(ctx context.Context, actor *models.User, rc *transfer.ContentRequestCreation) (*models.ContentRequest, error)
	List(ctx context.Context, actor *models.User, clientID int64, status models.ContentRequestStatus) ([]*models.ContentRequest, error)
	Convert(ctx context.Context, actor *models.User, requestID int64, conv *transfer.ContentRequestConversion) (*models.ContentRequest, *models.Post, error)
	Reject(ctx context.Context, actor *models.User, requestID int64) (*models.ContentRequest, error)
}

type contentRequestService struct {
	cr    repository.ClientRepository
	rr    repository.ContentRequestRepository
	posts PostService
	pr    repository.PostRepository
	now   func() time.Time
}

func NewContentRequestService(
	cr repository.ClientRepository,
	rr repository.ContentRequestRepository,
	pr repository.PostRepository,
	posts PostService,
	now func() time.Time) ContentRequestService {
	if now == nil {
		now = time.Now
	}
	return &contentRequestService{cr: cr, rr: rr, pr: pr, posts: posts, now: now}
}

func requestResource(clientID int64) policy.Resource {
	return policy.Resource{Type: policy.ResourceContentRequest, OwnerClientID: clientID}
}

func (s *contentRequestService) Create(ctx context.Context, actor *models.User, rc *transfer.ContentRequestCreation) (*models.ContentRequest, error) {
	if rc == nil {
		return nil, fmt.Errorf("%w: content request data is nil", models.ErrValidation)
	}
	if err := invalid(validation.ValidateStruct(rc,
		validation.Field(&rc.ClientID, validation.Required),
		validation.Field(&rc.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&rc.Description, validation.Length(0, 5000)),
	)); err != nil {
		return nil, err
	}
	if err := authorize(actor, policy.ActionCreate, requestResource(rc.ClientID)); err != nil {
		return nil, err
	}

	client, err := s.cr.GetByID(ctx, rc.ClientID)
	if err != nil {
		return nil, fmt.Errorf("error getting client: %w", err)
	}
	if client == nil {
		return nil, notFound("client", rc.ClientID)
	}

	request := models.ContentRequest{
		ClientID:    rc.ClientID,
		Title:       rc.Title,
		Description: rc.Description,
		Status:      models.ContentRequestPending,
		RequestedBy: actor.ID,
	}
	id, err := s.rr.Create(ctx, &request)
	if err != nil {
		return nil, fmt.Errorf("error creating content request: %w", err)
	}
	return s.load(ctx, id)
}

func (s *contentRequestService) load(ctx context.Context, requestID int64) (*models.ContentRequest, error) {
	request, err := s.rr.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("error getting content request: %w", err)
	}
	if request == nil {
		return nil, notFound("content request", requestID)
	}
	return request, nil
}

func (s *contentRequestService) List(ctx context.Context, actor *models.User, clientID int64, status models.ContentRequestStatus) ([]*models.ContentRequest, error) {
	if clientID == 0 {
		return nil, fmt.Errorf("%w: client_id is required", models.ErrValidation)
	}
	if err := authorize(actor, policy.ActionRead, requestResource(clientID)); err != nil {
		return nil, err
	}

	requests, err := s.rr.ListByClient(ctx, clientID, status)
	if err != nil {
		return nil, fmt.Errorf("error listing content requests: %w", err)
	}
	return requests, nil
}

// pending loads a request the actor may respond to.
func (s *contentRequestService) pending(ctx context.Context, actor *models.User, requestID int64) (*models.ContentRequest, error) {
	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, policy.ActionRespond, requestResource(request.ClientID)); err != nil {
		return nil, err
	}
	if request.Status != models.ContentRequestPending {
		return nil, fmt.Errorf("%w: content request %d is already %s", models.ErrInvalidTransition, requestID, request.Status)
	}
	return request, nil
}

// Convert turns a pending request into a draft post. The post is removed
// again if the request cannot be marked as converted.
func (s *contentRequestService) Convert(ctx context.Context, actor *models.User, requestID int64, conv *transfer.ContentRequestConversion) (*models.ContentRequest, *models.Post, error) {
	if conv == nil {
		conv = &transfer.ContentRequestConversion{}
	}
	if conv.Type == "" {
		conv.Type = models.PostTypeFeed
	}

	request, err := s.pending(ctx, actor, requestID)
	if err != nil {
		return nil, nil, err
	}

	post, err := s.posts.Create(ctx, actor, &transfer.PostCreation{
		ClientID: request.ClientID,
		Type:     conv.Type,
		Pillar:   conv.Pillar,
		Script:   request.Description,
	})
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	request.Status = models.ContentRequestConverted
	request.PostID = &post.ID
	request.RespondedAt = &now
	if err := s.rr.Respond(ctx, request); err != nil {
		if rmErr := s.pr.Remove(ctx, post.ID); rmErr != nil {
			slog.Error("failed to remove post of unconverted request", "post_id", post.ID, "error", rmErr)
		}
		if errors.Is(err, models.ErrVersionConflict) {
			return nil, nil, alreadyAnswered(requestID)
		}
		return nil, nil, fmt.Errorf("error converting content request: %w", err)
	}

	request, err = s.load(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	return request, post, nil
}

func (s *contentRequestService) Reject(ctx context.Context, actor *models.User, requestID int64) (*models.ContentRequest, error) {
	request, err := s.pending(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	request.Status = models.ContentRequestRejected
	request.PostID = nil
	request.RespondedAt = &now
	if err := s.rr.Respond(ctx, request); err != nil {
		if errors.Is(err, models.ErrVersionConflict) {
			return nil, alreadyAnswered(requestID)
		}
		return nil, fmt.Errorf("error rejecting content request: %w", err)
	}
	return s.load(ctx, requestID)
}

// alreadyAnswered reports a request another responder settled first.
func alreadyAnswered(requestID int64) error {
	return fmt.Errorf("%w: content request %d was already answered", models.ErrInvalidTransition, requestID)
}
