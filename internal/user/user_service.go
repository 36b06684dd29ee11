package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crosspost/internal/common"
	"crosspost/internal/dbmysql"
)

type UserService interface {
	RegisterUser(ctx context.Context, email, password, name string) (*dbmysql.User, string, error)
	LoginUser(ctx context.Context, email, password string) (*dbmysql.User, string, error)
	GetProfile(ctx context.Context, userID uint64) (*dbmysql.User, error)
}

type userService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) RegisterUser(ctx context.Context, email, password, name string) (*dbmysql.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := common.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(name) == "" {
		return nil, "", errors.New("name is required")
	}

	exists, err := s.repo.CheckEmailExists(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, "", errors.New("email already registered")
	}

	hash, err := common.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &dbmysql.User{
		Email:        email,
		PasswordHash: &hash,
		Name:         strings.TrimSpace(name),
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := common.GenerateToken(user.UserID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

func (s *userService) LoginUser(ctx context.Context, email, password string) (*dbmysql.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", errors.New("invalid email or password")
	}
	if user.PasswordHash == nil {
		// SSO account without a local password
		return nil, "", errors.New("invalid email or password")
	}
	if err := common.CheckPassword(password, *user.PasswordHash); err != nil {
		return nil, "", errors.New("invalid email or password")
	}

	token, err := common.GenerateToken(user.UserID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint64) (*dbmysql.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}
