// File: services/user/user.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	userRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/user"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthResponse contains the user's ID, role and the issued JWT token.
type AuthResponse struct {
	ID    string      `json:"id"`
	Role  models.Role `json:"role"`
	Token string      `json:"token"`
}

// RegisterRequest carries the self-service signup payload. Everyone signs up
// as a customer; staff and admin roles are granted out of band.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" binding:"required,min=8"`
}

var (
	ErrEmailTaken         = utils.NewError(utils.KindConflict, "EMAIL_TAKEN", "an account with this email already exists")
	ErrInvalidCredentials = utils.NewError(utils.KindUnauthorized, "INVALID_CREDENTIALS", "email or password is incorrect")
	ErrUserNotFound       = utils.NewError(utils.KindNotFound, "USER_NOT_FOUND", "user not found")
)

// UserService owns account lifecycle: signup, login, logout, profile reads.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Sessions *redis.Client
}

// Register hashes the password, persists the account and issues the first
// token.
func (s *DefaultUserService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, utils.NewError(utils.KindValidation, "MISSING_CREDENTIALS", "email and password are required")
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, userRepo.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, "HASH_FAILED", "failed to hash password", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         models.RoleCustomer,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	utils.GetLogger().Info("user registered", zap.String("userId", u.ID))
	return s.issueToken(ctx, u)
}

// Login verifies credentials and rotates the session token.
func (s *DefaultUserService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(ctx, u)
}

// Logout revokes the user's active session; outstanding tokens stop working
// at the next request.
func (s *DefaultUserService) Logout(ctx context.Context, userID string) error {
	if s.Sessions == nil {
		return nil
	}
	return utils.RevokeSession(ctx, s.Sessions, userID)
}

// GetProfile returns the account record for the given user.
func (s *DefaultUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *DefaultUserService) issueToken(ctx context.Context, u *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateToken(u.ID, string(u.Role), utils.SessionTTL)
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, "TOKEN_FAILED", "failed to generate auth token", err)
	}
	if s.Sessions != nil {
		if err := utils.SaveSession(ctx, s.Sessions, u.ID, utils.HashToken(token)); err != nil {
			utils.GetLogger().Warn("failed to record auth session", zap.String("userId", u.ID), zap.Error(err))
		}
	}
	return &AuthResponse{ID: u.ID, Role: u.Role, Token: token}, nil
}
