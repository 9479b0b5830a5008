package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	unauth := NewUnauthenticated("No token provided.")
	forbidden := NewForbidden("Access denied.")

	assert.ErrorIs(t, unauth, ErrUnauthenticated)
	assert.NotErrorIs(t, unauth, ErrForbidden)
	assert.ErrorIs(t, forbidden, ErrForbidden)
	assert.NotErrorIs(t, forbidden, ErrUnauthenticated)

	wrapped := fmt.Errorf("resolve: %w", unauth)
	assert.ErrorIs(t, wrapped, ErrUnauthenticated)

	assert.NotErrorIs(t, NewConflict("taken", nil), ErrForbidden)
}

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("domain errors pass through", func(t *testing.T) {
		de := ToDomainError(NewForbidden("Access denied."))
		require.NotNil(t, de)
		assert.Equal(t, "FORBIDDEN", de.Code)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
		assert.Equal(t, "Access denied.", de.Message)
	})

	t.Run("fiber errors keep their status", func(t *testing.T) {
		de := ToDomainError(fiber.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
		assert.Equal(t, "NOT_FOUND", de.Code)

		de = ToDomainError(fiber.NewError(http.StatusTeapot, "short and stout"))
		assert.Equal(t, "HTTP_ERROR", de.Code)
		assert.Equal(t, "short and stout", de.Message)
	})

	t.Run("sql no rows becomes not found", func(t *testing.T) {
		de := ToDomainError(fmt.Errorf("scan: %w", sql.ErrNoRows))
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("anything else is internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		de := ToDomainError(cause)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
		assert.Equal(t, "internal server error", de.Message)
		assert.ErrorIs(t, de, cause)
	})
}
