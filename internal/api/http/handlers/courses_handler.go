package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/etutor-gateway/internal/api/dto"
	"github.com/spec-kit/etutor-gateway/internal/service"
)

// CoursesHandler manages course endpoints.
type CoursesHandler struct {
	service *service.CourseService
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courseService *service.CourseService) *CoursesHandler {
	return &CoursesHandler{service: courseService}
}

// Create POST /courses.
func (h *CoursesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateCourseRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	course, err := h.service.Create(c.UserContext(), actor, service.CourseCreateInput{
		TutorID:     req.TutorID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCourseResponse(course)})
}

// List GET /courses.
func (h *CoursesHandler) List(c *fiber.Ctx) error {
	var page dto.PageQuery
	if err := bindQuery(c, &page); err != nil {
		return err
	}
	courses, err := h.service.ListActive(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCourseResponses(courses)})
}

// ListMine GET /tutor/courses.
func (h *CoursesHandler) ListMine(c *fiber.Ctx) error {
	tutor, err := currentUser(c)
	if err != nil {
		return err
	}
	var page dto.PageQuery
	if err := bindQuery(c, &page); err != nil {
		return err
	}
	courses, err := h.service.ListForTutor(c.UserContext(), tutor.ID, page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCourseResponses(courses)})
}
