package dto

import (
	"time"

	"github.com/spec-kit/etutor-gateway/internal/domain"
)

// CreateCourseRequest payload. TutorID is only read for admin callers.
type CreateCourseRequest struct {
	TutorID     string `json:"tutor_id" validate:"omitempty,uuid"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// CourseResponse response.
type CourseResponse struct {
	ID          string    `json:"id"`
	TutorID     string    `json:"tutor_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCourseResponses maps courses.
func NewCourseResponses(courses []domain.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, NewCourseResponse(&courses[i]))
	}
	return out
}

// NewCourseResponse maps a course.
func NewCourseResponse(c *domain.Course) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		TutorID:     c.TutorID,
		Title:       c.Title,
		Description: c.Description,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
	}
}
