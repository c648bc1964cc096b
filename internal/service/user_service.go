package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/policy"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/internal/transfer"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, actor *models.User, uc *transfer.UserCreation) (*models.User, error)
	RemoveUser(ctx context.Context, actor *models.User, userID int64) error
}

type userService struct {
	u repository.UserRepository
	c repository.ClientRepository
}

func NewUserService(u repository.UserRepository, c repository.ClientRepository) UserService {
	return &userService{
		u: u,
		c: c,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id int64) (*models.User, error) {
	user, isExist, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user info: %w", err)
	}

	if !isExist {
		err = errors.New("user not found")
		slog.Info(err.Error())
		return nil, notFound("user", id)
	}

	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, actor *models.User, uc *transfer.UserCreation) (*models.User, error) {
	if uc == nil {
		return nil, fmt.Errorf("%w: user data is nil", models.ErrValidation)
	}
	if err := authorize(actor, policy.ActionCreate, policy.Resource{Type: policy.ResourceUser}); err != nil {
		return nil, err
	}

	isClient := uc.Role == models.RoleClient
	if err := invalid(validation.ValidateStruct(uc,
		validation.Field(&uc.Email, validation.Required, is.EmailFormat),
		validation.Field(&uc.Name, validation.Length(0, 200)),
		validation.Field(&uc.Role, validation.Required, validation.In(roleValues()...)),
		validation.Field(&uc.AssignedClientID,
			validation.When(isClient, validation.Required).Else(validation.Nil)),
	)); err != nil {
		return nil, err
	}

	if isClient {
		client, err := s.c.GetByID(ctx, *uc.AssignedClientID)
		if err != nil {
			return nil, fmt.Errorf("error getting client: %w", err)
		}
		if client == nil {
			return nil, notFound("client", *uc.AssignedClientID)
		}
	}

	_, isExist, err := s.u.GetByEmail(ctx, uc.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if isExist {
		return nil, fmt.Errorf("%w: email %s is already registered", models.ErrValidation, uc.Email)
	}

	id, err := s.u.Create(ctx, &models.User{
		Email:            uc.Email,
		Name:             uc.Name,
		Role:             uc.Role,
		AssignedClientID: uc.AssignedClientID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return s.GetUserInfo(ctx, id)
}

func (s *userService) RemoveUser(ctx context.Context, actor *models.User, userID int64) error {
	if err := authorize(actor, policy.ActionDelete, policy.Resource{Type: policy.ResourceUser}); err != nil {
		return err
	}
	err := s.u.Remove(ctx, userID)
	if err != nil {
		return err
	}
	return nil
}
