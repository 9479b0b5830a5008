package domain

import "time"

// Course is a subject offered by a tutor.
type Course struct {
	ID          string
	TutorID     string
	Title       string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
