package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapOverlap(t *testing.T) {
	t.Run("exclusion violation means the slot is taken", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: exclusionViolation, ConstraintName: "appointments_tutor_no_overlap"})
		assert.ErrorIs(t, mapOverlap(err), ErrSlotTaken)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		cause := &pgconn.PgError{Code: "23503"}
		assert.Same(t, cause, mapOverlap(cause))

		plain := errors.New("connection reset")
		assert.Equal(t, plain, mapOverlap(plain))
		assert.NoError(t, mapOverlap(nil))
	})
}
