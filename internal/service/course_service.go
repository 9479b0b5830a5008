package service

import (
	"context"
	"strings"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/repository"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

// CourseService manages the course catalogue.
type CourseService struct {
	courses repository.CourseRepository
	users   repository.UserRepository
}

// NewCourseService builds the service.
func NewCourseService(courses repository.CourseRepository, users repository.UserRepository) *CourseService {
	return &CourseService{courses: courses, users: users}
}

// CourseCreateInput describes course creation payload. TutorID is required
// when an admin creates a course and ignored for tutors.
type CourseCreateInput struct {
	TutorID     string
	Title       string
	Description string
}

// Create adds a course owned by the acting tutor, or by the named tutor when an admin acts.
func (s *CourseService) Create(ctx context.Context, actor *domain.User, in CourseCreateInput) (*domain.Course, error) {
	tutorID := actor.ID
	if actor.IsAdmin() {
		if in.TutorID == "" {
			return nil, apperrors.NewValidationError("tutor_id is required", map[string]any{"tutor_id": "required"})
		}
		tutorID = in.TutorID
		if _, err := requireActiveTutor(ctx, s.users, tutorID); err != nil {
			return nil, err
		}
	}

	course := &domain.Course{
		TutorID:     tutorID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Active:      true,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return course, nil
}

// ListActive returns a page of active courses.
func (s *CourseService) ListActive(ctx context.Context, limit, offset int) ([]domain.Course, error) {
	courses, err := s.courses.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return courses, nil
}

// ListForTutor returns the tutor's own courses.
func (s *CourseService) ListForTutor(ctx context.Context, tutorID string, limit, offset int) ([]domain.Course, error) {
	courses, err := s.courses.ListByTutor(ctx, tutorID, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return courses, nil
}
