package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/maheshrc27/coolify-admin/internal/repository"
	"github.com/maheshrc27/coolify-admin/pkg/utils"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, email, name, password string) (int64, error)
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{
		u: u,
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
		return nil, ErrNotFound
	}

	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, email, name, password string) (int64, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || len(password) < 8 {
		return 0, fmt.Errorf("%w: email and a password of at least 8 characters are required", ErrValidation)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return 0, err
	}

	return s.u.Create(ctx, &models.User{Email: email, Name: name, PasswordHash: hash})
}
