package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	config "github.com/maheshrc27/editorial-api/configs"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/pkg/utils"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type AuthService interface {
	IssueToken(ctx context.Context, userID int64) (string, error)
	// Authenticate resolves a token to the user it was issued for. The role
	// always comes from the store, not from the token.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
	}
}

func (s *authService) IssueToken(ctx context.Context, userID int64) (string, error) {
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !isExist {
		return "", notFound("user", userID)
	}
	return utils.GenerateToken(s.cfg.SecretKey, user, s.cfg.TokenDuration)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ValidateToken(s.cfg.SecretKey, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return nil, ErrInvalidToken
	}

	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrInvalidToken
	}
	return user, nil
}
