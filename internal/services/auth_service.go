package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baharkarakas/tradebinder/internal/api/validate"
	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/logger"
	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type AuthService struct {
	store repo.Store
	tm    *auth.TokenManager
}

func NewAuthService(store repo.Store, tm *auth.TokenManager) *AuthService {
	return &AuthService{store: store, tm: tm}
}

type RegisterInput struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	LocationID string `json:"locationId"`
}

type AuthResult struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         models.User `json:"user"`
}

type RefreshResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	u := models.User{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Username: strings.TrimSpace(in.Username),
		IsActive: true,
	}
	var errs validate.Errs
	errs.Add(
		validate.Email("email", u.Email),
		validate.MinLen("username", u.Username, 3),
		validate.MinLen("password", in.Password, auth.MinPasswordLen),
	)
	if len(in.Password) > auth.MaxPasswordBytes {
		errs.Add(&validate.ErrField{Field: "password", Msg: "must be at most 72 bytes"})
	}
	if in.LocationID != "" {
		errs.Add(validate.UUID("locationId", in.LocationID))
	}
	if err := errs.Err(); err != nil {
		return AuthResult{}, err
	}

	existing, err := s.store.Users().FindByEmailOrUsername(ctx, u.Email, u.Username)
	switch {
	case err == nil && existing.Email == u.Email:
		return AuthResult{}, apperr.Conflict("email already exists")
	case err == nil:
		return AuthResult{}, apperr.Conflict("username already exists")
	case !errors.Is(err, repo.ErrNotFound):
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if in.LocationID != "" {
		loc, err := s.store.Locations().GetByID(ctx, in.LocationID)
		if err != nil {
			return AuthResult{}, notFound(err, "Location")
		}
		if !loc.IsActive {
			return AuthResult{}, apperr.NotFound("Location not found or inactive")
		}
		u.LocationID = &loc.ID
	}

	u.PasswordHash, err = auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	u, err = s.store.Users().Create(ctx, u)
	if errors.Is(err, repo.ErrDuplicate) {
		// lost a race with a concurrent registration
		return AuthResult{}, apperr.Conflict("email or username already exists")
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	logger.FromContext(ctx).Info("user registered", "user_id", u.ID)
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repo.ErrNotFound) {
		return AuthResult{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.PasswordMatches(password, u.PasswordHash) {
		return AuthResult{}, apperr.Unauthorized("invalid credentials")
	}
	if !u.IsActive {
		return AuthResult{}, apperr.Unauthorized("account is deactivated")
	}
	return s.issue(u)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (RefreshResult, error) {
	claims, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return RefreshResult{}, apperr.Unauthorized("invalid refresh token")
	}
	u, err := s.ValidateUser(ctx, claims.UserID())
	if err != nil {
		return RefreshResult{}, err
	}
	if u == nil {
		return RefreshResult{}, apperr.Unauthorized("invalid refresh token")
	}
	access, exp, err := s.tm.GenerateAccess(u.ID)
	if err != nil {
		return RefreshResult{}, err
	}
	return RefreshResult{AccessToken: access, ExpiresAt: exp}, nil
}

// ValidateUser returns the active user with id, or nil when there is none.
func (s *AuthService) ValidateUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return nil, nil
	}
	return &u, nil
}

func (s *AuthService) Me(ctx context.Context, actor auth.Principal) (models.User, error) {
	u, err := s.store.Users().GetByID(ctx, actor.UserID)
	if err != nil {
		return models.User{}, notFound(err, "User")
	}
	return u, nil
}

func (s *AuthService) issue(u models.User) (AuthResult, error) {
	pair, err := s.tm.GeneratePair(u.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExpiresAt,
		User:         u,
	}, nil
}
