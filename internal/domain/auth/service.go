package auth

import (
	"context"
	"time"

	"pms/internal/core/apperror"
	"pms/internal/domain/users"
	"pms/pkg/logger"
)

// Service authenticates users and issues access tokens.
type Service struct {
	users *users.Service
	jwt   *JWTService
}

// NewService creates a new auth service.
func NewService(userSvc *users.Service, jwtSvc *JWTService) *Service {
	return &Service{users: userSvc, jwt: jwtSvc}
}

// LoginResult is a successful authentication.
type LoginResult struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        *users.User `json:"user"`
}

// Login verifies credentials and issues an access token. Invalid email and
// invalid password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive || user.IsDeleted() {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	if !user.CheckPassword(password) {
		logger.Warn(ctx, "failed login attempt", "email", email)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(
		user.ID.String(), user.Email, user.Roles, user.HasRole(users.RoleAdmin))
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
