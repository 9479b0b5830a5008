package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup matches no row, whichever driver backs the repository.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating a user with an email already on file.
var ErrEmailExists = errors.New("email already exists")

// ErrSlotTaken is returned when an appointment overlaps a scheduled one of the same tutor.
var ErrSlotTaken = errors.New("tutor slot already taken")

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
