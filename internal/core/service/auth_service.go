package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

// RoleCache abstracts the role-lookup cache (Redis). Roles are resolved
// server-side and cached with a TTL; any role change invalidates the entry.
type RoleCache interface {
	Get(ctx context.Context, email string) (string, error)
	Set(ctx context.Context, email, role string) error
	Invalidate(ctx context.Context, email string) error
}

// AuthService implements registration, login, and role management.
type AuthService struct {
	repo      ports.UserRepository
	roles     RoleCache
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, roles RoleCache, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, roles: roles, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

// Register creates a new account. Every account starts with the user role;
// elevation happens only through admin action or rider approval.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", email).Msg("user registered")
	return created, nil
}

// Login authenticates a user and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.repo.SetLastLogin(ctx, email, time.Now().UTC()); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to record last login")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Role resolves the access tier for email. Cache first, then the user store;
// unknown users default to the user role so the dashboard can always render.
func (s *AuthService) Role(ctx context.Context, email string) (string, error) {
	if role, err := s.roles.Get(ctx, email); err == nil && role != "" {
		return role, nil
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.RoleUser, nil
		}
		return "", err
	}

	if err := s.roles.Set(ctx, email, user.Role); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to cache role")
	}
	return user.Role, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *AuthService) SearchUsers(ctx context.Context, emailFragment string) ([]*domain.User, error) {
	return s.repo.SearchByEmail(ctx, emailFragment)
}

// UpdateRole changes a user's role and invalidates the cached lookup so the
// next role fetch observes the change immediately.
func (s *AuthService) UpdateRole(ctx context.Context, id, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	if err := s.roles.Invalidate(ctx, user.Email); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("failed to invalidate role cache")
	}

	s.logger.Info().Str("email", user.Email).Str("role", role).Msg("role updated")
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
