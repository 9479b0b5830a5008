package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/etutor-gateway/internal/api/dto"
	"github.com/spec-kit/etutor-gateway/internal/service"
)

// AppointmentsHandler manages booking endpoints.
type AppointmentsHandler struct {
	service *service.AppointmentService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(appointmentService *service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{service: appointmentService}
}

// Book POST /appointments.
func (h *AppointmentsHandler) Book(c *fiber.Ctx) error {
	student, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.BookAppointmentRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	appt, err := h.service.Book(c.UserContext(), student, service.BookInput{
		TutorID:  req.TutorID,
		CourseID: req.CourseID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAppointmentResponse(appt)})
}

// Cancel PATCH /appointments/:appointmentId/cancel.
func (h *AppointmentsHandler) Cancel(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	appt, err := h.service.Cancel(c.UserContext(), actor, param(c, "appointmentId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAppointmentResponse(appt)})
}

// ListForStudent GET /students/:studentId/appointments.
func (h *AppointmentsHandler) ListForStudent(c *fiber.Ctx) error {
	var query dto.AppointmentListQuery
	if err := bindQuery(c, &query); err != nil {
		return err
	}
	appts, err := h.service.ListForStudent(c.UserContext(), param(c, "studentId"), query.Filter())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAppointmentResponses(appts)})
}

// ListForTutor GET /tutors/:tutorId/appointments.
func (h *AppointmentsHandler) ListForTutor(c *fiber.Ctx) error {
	var query dto.AppointmentListQuery
	if err := bindQuery(c, &query); err != nil {
		return err
	}
	appts, err := h.service.ListForTutor(c.UserContext(), param(c, "tutorId"), query.Filter())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAppointmentResponses(appts)})
}
