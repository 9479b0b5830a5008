package auth

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/etutor-gateway/internal/domain"
)

type mockUserReader struct {
	mock.Mock
}

func (m *mockUserReader) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}
