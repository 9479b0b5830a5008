package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/etutor-gateway/internal/auth"
	"github.com/spec-kit/etutor-gateway/internal/config"
	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/events"
	"github.com/spec-kit/etutor-gateway/internal/repository"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgAccountDeactivated = "Account is deactivated."
)

// AuthService coordinates registration, login and password changes.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service. The token manager is shared with the gate.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.Tokens,
		bcryptCost: cfg.Auth.BcryptCost,
		dispatcher: deps.Dispatcher,
	}
}

// RegisterInput describes a self-service signup.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Register creates a student or tutor account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, domain.Token, error) {
	if in.Role != domain.RoleStudent && in.Role != domain.RoleTutor {
		return nil, domain.Token{}, apperrors.NewValidationError("invalid role", map[string]any{
			"role": "must be student or tutor",
		})
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        repository.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, domain.Token{}, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}

	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, events.NewEvent(events.EventUserRegistered, user.ID, events.ActorFrom(user),
		events.UserRegisteredPayload{Email: user.Email, Role: user.Role}))
	return user, token, nil
}

// Login verifies credentials and issues a token. Deactivated accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Token, error) {
	user, err := s.users.GetByEmail(ctx, repository.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Token{}, apperrors.NewUnauthenticated(msgInvalidCredentials)
		}
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Token{}, apperrors.NewUnauthenticated(msgInvalidCredentials)
	}
	if !user.Active {
		return nil, domain.Token{}, apperrors.NewUnauthenticated(msgAccountDeactivated)
	}

	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return mapRepoError(err, "user", userID)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewValidationError("current password is incorrect", map[string]any{
			"current_password": "does not match",
		})
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return mapRepoError(err, "user", userID)
	}
	return nil
}
