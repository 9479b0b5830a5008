package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/events"
	"github.com/spec-kit/etutor-gateway/internal/repository"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

// MaxAppointmentLength bounds a single booking.
const MaxAppointmentLength = 4 * time.Hour

// AppointmentService coordinates booking workflows.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	courses      repository.CourseRepository
	dispatcher   events.Dispatcher
	now          func() time.Time
}

// AppointmentDependencies bundles repositories for the appointment service.
type AppointmentDependencies struct {
	AppointmentRepo repository.AppointmentRepository
	UserRepo        repository.UserRepository
	CourseRepo      repository.CourseRepository
	Dispatcher      events.Dispatcher
}

// NewAppointmentService builds the service.
func NewAppointmentService(deps AppointmentDependencies) *AppointmentService {
	return &AppointmentService{
		appointments: deps.AppointmentRepo,
		users:        deps.UserRepo,
		courses:      deps.CourseRepo,
		dispatcher:   deps.Dispatcher,
		now:          time.Now,
	}
}

// BookInput describes a booking request.
type BookInput struct {
	TutorID  string
	CourseID *string
	StartsAt time.Time
	EndsAt   time.Time
	Notes    string
}

// Book schedules an appointment for the student with an active tutor.
func (s *AppointmentService) Book(ctx context.Context, student *domain.User, in BookInput) (*domain.Appointment, error) {
	startsAt, endsAt := in.StartsAt.UTC(), in.EndsAt.UTC()
	switch {
	case !endsAt.After(startsAt):
		return nil, apperrors.NewValidationError("invalid time range", map[string]any{"ends_at": "must be after starts_at"})
	case endsAt.Sub(startsAt) > MaxAppointmentLength:
		return nil, apperrors.NewValidationError("invalid time range", map[string]any{"ends_at": "appointment is too long"})
	case !startsAt.After(s.now()):
		return nil, apperrors.NewValidationError("invalid time range", map[string]any{"starts_at": "must be in the future"})
	}

	if _, err := requireActiveTutor(ctx, s.users, in.TutorID); err != nil {
		return nil, err
	}
	if in.CourseID != nil {
		course, err := s.courses.GetByID(ctx, *in.CourseID)
		if err != nil {
			return nil, mapRepoError(err, "course", *in.CourseID)
		}
		if !course.Active || course.TutorID != in.TutorID {
			return nil, apperrors.NewValidationError("course is not offered by this tutor", map[string]any{"course_id": *in.CourseID})
		}
	}

	busy, err := s.appointments.HasTutorOverlap(ctx, in.TutorID, startsAt, endsAt)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if busy {
		return nil, apperrors.NewConflict("tutor is already booked for this time", map[string]any{"tutor_id": in.TutorID})
	}

	appt := &domain.Appointment{
		StudentID: student.ID,
		TutorID:   in.TutorID,
		CourseID:  in.CourseID,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		Status:    domain.AppointmentScheduled,
		Notes:     strings.TrimSpace(in.Notes),
	}
	// The overlap check above only gives a friendly answer; the exclusion constraint settles concurrent bookings.
	if err := s.appointments.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperrors.NewConflict("tutor is already booked for this time", map[string]any{"tutor_id": in.TutorID})
		}
		return nil, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, events.NewEvent(events.EventAppointmentBooked, appt.ID, events.ActorFrom(student), appointmentPayload(appt)))
	return appt, nil
}

// Cancel cancels a scheduled appointment. Only its participants and admins may cancel.
func (s *AppointmentService) Cancel(ctx context.Context, actor *domain.User, id string) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "appointment", id)
	}
	if !actor.IsAdmin() && !appt.Involves(actor.ID) {
		return nil, apperrors.NewForbidden("Access denied: not the resource owner.")
	}
	if appt.Status == domain.AppointmentCancelled {
		return nil, apperrors.NewConflict("appointment already cancelled", map[string]any{"appointment_id": id})
	}

	if err := s.appointments.UpdateStatus(ctx, id, domain.AppointmentCancelled); err != nil {
		return nil, mapRepoError(err, "appointment", id)
	}
	appt.Status = domain.AppointmentCancelled

	publish(ctx, s.dispatcher, events.NewEvent(events.EventAppointmentCancelled, appt.ID, events.ActorFrom(actor), appointmentPayload(appt)))
	return appt, nil
}

// ListForStudent returns the student's appointments.
func (s *AppointmentService) ListForStudent(ctx context.Context, studentID string, filter repository.AppointmentFilter) ([]domain.Appointment, error) {
	appts, err := s.appointments.ListByStudent(ctx, studentID, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return appts, nil
}

// ListForTutor returns the tutor's appointments.
func (s *AppointmentService) ListForTutor(ctx context.Context, tutorID string, filter repository.AppointmentFilter) ([]domain.Appointment, error) {
	appts, err := s.appointments.ListByTutor(ctx, tutorID, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return appts, nil
}

func appointmentPayload(appt *domain.Appointment) events.AppointmentPayload {
	return events.AppointmentPayload{
		StudentID: appt.StudentID,
		TutorID:   appt.TutorID,
		StartsAt:  appt.StartsAt,
		EndsAt:    appt.EndsAt,
	}
}
