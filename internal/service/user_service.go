package service

import (
	"context"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/events"
	"github.com/spec-kit/etutor-gateway/internal/repository"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

// UserService exposes account reads and admin account management.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher) *UserService {
	return &UserService{users: users, dispatcher: dispatcher}
}

// Get fetches a single user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "user", id)
	}
	return user, nil
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter.Normalize())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// SetActive activates or deactivates an account. Admins cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actor *domain.User, id string, active bool) (*domain.User, error) {
	if actor != nil && actor.ID == id && !active {
		return nil, apperrors.NewValidationError("cannot deactivate your own account", map[string]any{"user_id": id})
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return nil, mapRepoError(err, "user", id)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "user", id)
	}

	publish(ctx, s.dispatcher, events.NewEvent(events.EventUserStatusChanged, user.ID, events.ActorFrom(actor),
		events.UserStatusChangedPayload{Active: active}))
	return user, nil
}
