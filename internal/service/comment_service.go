package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/policy"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/internal/transfer"
)

type CommentService interface {
	Create(ctx context.Context, actor *models.User, postID int64, cc *transfer.CommentCreation) (*models.Comment, error)
	List(ctx context.Context, actor *models.User, postID int64) ([]*models.Comment, error)
}

type commentService struct {
	pr repository.PostRepository
	cm repository.CommentRepository
}

func NewCommentService(pr repository.PostRepository, cm repository.CommentRepository) CommentService {
	return &commentService{pr: pr, cm: cm}
}

func (s *commentService) post(ctx context.Context, actor *models.User, action policy.Action, postID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil {
		return nil, notFound("post", postID)
	}
	res := policy.Resource{Type: policy.ResourceComment, OwnerClientID: post.ClientID}
	if err := authorize(actor, action, res); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *commentService) Create(ctx context.Context, actor *models.User, postID int64, cc *transfer.CommentCreation) (*models.Comment, error) {
	if cc == nil {
		return nil, fmt.Errorf("%w: comment data is nil", models.ErrValidation)
	}
	if err := invalid(validation.ValidateStruct(cc,
		validation.Field(&cc.Message, validation.Required, validation.Length(1, 5000)),
	)); err != nil {
		return nil, err
	}
	if _, err := s.post(ctx, actor, policy.ActionCreate, postID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		PostID:     postID,
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
		Message:    cc.Message,
	}
	id, err := s.cm.Create(ctx, &comment)
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}
	comment.ID = id
	return &comment, nil
}

func (s *commentService) List(ctx context.Context, actor *models.User, postID int64) ([]*models.Comment, error) {
	if _, err := s.post(ctx, actor, policy.ActionRead, postID); err != nil {
		return nil, err
	}
	comments, err := s.cm.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return comments, nil
}
