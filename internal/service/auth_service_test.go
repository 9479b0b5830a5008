package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/etutor-gateway/internal/auth"
	"github.com/spec-kit/etutor-gateway/internal/config"
	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/events"
	"github.com/spec-kit/etutor-gateway/internal/repository"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

var testTokens = auth.NewTokenManager("test-secret", time.Hour)

func newAuthService(users *mockUserRepo, dispatcher events.Dispatcher) *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost}}
	return NewAuthService(cfg, AuthDependencies{
		UserRepo:   users,
		Tokens:     testTokens,
		Dispatcher: dispatcher,
	})
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("student account", func(t *testing.T) {
		users := new(mockUserRepo)
		dispatcher := &captureDispatcher{}
		users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.User).ID = "u-1" }).
			Return(nil).Once()

		svc := newAuthService(users, dispatcher)
		user, token, err := svc.Register(ctx, RegisterInput{
			Name: " Ada ", Email: " Ada@Example.com ", Password: "password1", Role: domain.RoleStudent,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.True(t, user.Active)
		assert.NoError(t, auth.ComparePassword(user.PasswordHash, "password1"))

		claims, err := testTokens.ParseToken(token.Value)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.Subject)
		assert.Equal(t, []events.EventType{events.EventUserRegistered}, dispatcher.types())
	})

	t.Run("admin self registration rejected", func(t *testing.T) {
		users := new(mockUserRepo)
		_, _, err := newAuthService(users, nil).Register(ctx, RegisterInput{
			Name: "Eve", Email: "eve@example.com", Password: "password1", Role: domain.RoleAdmin,
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.ToDomainError(err).HTTPStatus)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailExists).Once()

		_, _, err := newAuthService(users, nil).Register(ctx, RegisterInput{
			Name: "Ada", Email: "ada@example.com", Password: "password1", Role: domain.RoleTutor,
		})
		assert.Equal(t, http.StatusConflict, apperrors.ToDomainError(err).HTTPStatus)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	active := &domain.User{ID: "u-1", Email: "ada@example.com", PasswordHash: hashed(t, "password1"), Role: domain.RoleTutor, Active: true}
	inactive := &domain.User{ID: "u-2", Email: "bob@example.com", PasswordHash: hashed(t, "password1"), Role: domain.RoleStudent}

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(active, nil)
	users.On("GetByEmail", mock.Anything, "bob@example.com").Return(inactive, nil)
	users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	svc := newAuthService(users, nil)

	user, token, err := svc.Login(ctx, "ADA@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, domain.RoleTutor, token.Role)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.Equal(t, msgInvalidCredentials, apperrors.ToDomainError(err).Message)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password1")
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, _, err = svc.Login(ctx, "bob@example.com", "password1")
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.Equal(t, "Account is deactivated.", apperrors.ToDomainError(err).Message)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "u-1", PasswordHash: hashed(t, "old-password"), Role: domain.RoleStudent, Active: true}

	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, "u-1").Return(user, nil)
	users.On("Update", mock.Anything, user).Return(nil).Once()
	svc := newAuthService(users, nil)

	err := svc.ChangePassword(ctx, "u-1", "not-it", "new-password")
	assert.Equal(t, http.StatusBadRequest, apperrors.ToDomainError(err).HTTPStatus)

	require.NoError(t, svc.ChangePassword(ctx, "u-1", "old-password", "new-password"))
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "new-password"))
	users.AssertExpectations(t)
}
