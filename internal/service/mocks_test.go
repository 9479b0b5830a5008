package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/events"
	"github.com/spec-kit/etutor-gateway/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

type mockCourseRepo struct {
	mock.Mock
}

func (m *mockCourseRepo) Create(ctx context.Context, course *domain.Course) error {
	return m.Called(ctx, course).Error(0)
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*domain.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCourseRepo) ListActive(ctx context.Context, limit, offset int) ([]domain.Course, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Course), args.Error(1)
}

func (m *mockCourseRepo) ListByTutor(ctx context.Context, tutorID string, limit, offset int) ([]domain.Course, error) {
	args := m.Called(ctx, tutorID, limit, offset)
	return args.Get(0).([]domain.Course), args.Error(1)
}

type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	return m.Called(ctx, appt).Error(0)
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*domain.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockAppointmentRepo) ListByStudent(ctx context.Context, studentID string, filter repository.AppointmentFilter) ([]domain.Appointment, error) {
	args := m.Called(ctx, studentID, filter)
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) ListByTutor(ctx context.Context, tutorID string, filter repository.AppointmentFilter) ([]domain.Appointment, error) {
	args := m.Called(ctx, tutorID, filter)
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) HasTutorOverlap(ctx context.Context, tutorID string, startsAt, endsAt time.Time) (bool, error) {
	args := m.Called(ctx, tutorID, startsAt, endsAt)
	return args.Bool(0), args.Error(1)
}

// captureDispatcher records published events instead of dispatching them.
type captureDispatcher struct {
	published []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}
