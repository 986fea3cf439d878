package service

import (
	"context"
	"errors"
	"strings"

	"planroom/internal/models"
	"planroom/internal/repository"
)

var ErrReservedUsername = errors.New("username is reserved")

var reservedUsernames = []string{models.UsernameAI, models.UsernameSystem, models.UsernameAnonymous}

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	for _, reserved := range reservedUsernames {
		if strings.EqualFold(user.Username, reserved) {
			return ErrReservedUsername
		}
	}
	return s.userRepo.Create(ctx, user)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}
