package dto

import (
	"time"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/repository"
)

// BookAppointmentRequest payload.
type BookAppointmentRequest struct {
	TutorID  string    `json:"tutor_id" validate:"required,uuid"`
	CourseID *string   `json:"course_id" validate:"omitempty,uuid"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Notes    string    `json:"notes" validate:"max=1000"`
}

// AppointmentListQuery captures query filters for listings.
type AppointmentListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=scheduled cancelled"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Offset int    `query:"offset" validate:"gte=0"`
}

// AppointmentResponse response.
type AppointmentResponse struct {
	ID        string                   `json:"id"`
	StudentID string                   `json:"student_id"`
	TutorID   string                   `json:"tutor_id"`
	CourseID  *string                  `json:"course_id"`
	StartsAt  time.Time                `json:"starts_at"`
	EndsAt    time.Time                `json:"ends_at"`
	Status    domain.AppointmentStatus `json:"status"`
	Notes     string                   `json:"notes,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// NewAppointmentResponse maps an appointment.
func NewAppointmentResponse(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		StudentID: a.StudentID,
		TutorID:   a.TutorID,
		CourseID:  a.CourseID,
		StartsAt:  a.StartsAt,
		EndsAt:    a.EndsAt,
		Status:    a.Status,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
	}
}

// NewAppointmentResponses maps appointments.
func NewAppointmentResponses(appts []domain.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, NewAppointmentResponse(&appts[i]))
	}
	return out
}

// PageQuery is the limit/offset pair shared by list endpoints.
type PageQuery struct {
	Limit  int `query:"limit" validate:"gte=0,lte=100"`
	Offset int `query:"offset" validate:"gte=0"`
}

// UserListQuery filters the admin user listing.
type UserListQuery struct {
	Role   string `query:"role" validate:"omitempty,oneof=student tutor admin"`
	Active *bool  `query:"active"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Offset int    `query:"offset" validate:"gte=0"`
}

// Filter converts the query into a repository filter. Dates were checked by Validate.
func (q AppointmentListQuery) Filter() repository.AppointmentFilter {
	filter := repository.AppointmentFilter{Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		status := domain.AppointmentStatus(q.Status)
		filter.Status = &status
	}
	if t, err := time.Parse(time.RFC3339, q.From); err == nil {
		filter.From = &t
	}
	if t, err := time.Parse(time.RFC3339, q.To); err == nil {
		filter.To = &t
	}
	return filter
}

// Filter converts the query into a repository filter.
func (q UserListQuery) Filter() repository.UserFilter {
	filter := repository.UserFilter{Active: q.Active, Limit: q.Limit, Offset: q.Offset}
	if role, err := domain.ParseRole(q.Role); err == nil {
		filter.Role = &role
	}
	return filter
}
