package domain

import "time"

// AppointmentStatus enumerates appointment lifecycle states.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a tutoring session booked by a student with a tutor.
type Appointment struct {
	ID        string
	StudentID string
	TutorID   string
	CourseID  *string
	StartsAt  time.Time
	EndsAt    time.Time
	Status    AppointmentStatus
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Involves reports whether userID is the student or the tutor of the appointment.
func (a *Appointment) Involves(userID string) bool {
	return userID != "" && (a.StudentID == userID || a.TutorID == userID)
}
