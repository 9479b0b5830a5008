package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/repository"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

const (
	msgUserNotFound    = "User not found."
	msgUserDeactivated = "Account is deactivated."
)

// UserReader is the single read the gate performs against the user store.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// UserLookup resolves verified token subjects to active users.
type UserLookup struct {
	users UserReader
}

// NewUserLookup constructs a lookup over the given store.
func NewUserLookup(users UserReader) *UserLookup {
	return &UserLookup{users: users}
}

// Resolve fetches the user once. Missing and inactive users are
// unauthenticated; any other store failure is returned as an internal error.
func (l *UserLookup) Resolve(ctx context.Context, subjectID string) (*domain.User, error) {
	user, err := l.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated(msgUserNotFound)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup user %s: %w", subjectID, err))
	}
	if user == nil {
		return nil, apperrors.NewUnauthenticated(msgUserNotFound)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthenticated(msgUserDeactivated)
	}
	return user, nil
}
