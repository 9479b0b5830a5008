package service

import (
	"context"
	"errors"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/events"
	"github.com/spec-kit/etutor-gateway/internal/repository"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}

func mapRepoError(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}

func requireActiveTutor(ctx context.Context, users repository.UserRepository, tutorID string) (*domain.User, error) {
	tutor, err := users.GetByID(ctx, tutorID)
	if err != nil {
		return nil, mapRepoError(err, "tutor", tutorID)
	}
	if tutor.Role != domain.RoleTutor || !tutor.Active {
		return nil, apperrors.NewValidationError("not an active tutor", map[string]any{"tutor_id": tutorID})
	}
	return tutor, nil
}
