package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/etutor-gateway/internal/api/dto"
	"github.com/spec-kit/etutor-gateway/internal/observability"
	"github.com/spec-kit/etutor-gateway/internal/service"
)

// AdminHandler exposes account management and metrics to admins.
type AdminHandler struct {
	users   *service.UserService
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(userService *service.UserService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{users: userService, metrics: metrics}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var query dto.UserListQuery
	if err := bindQuery(c, &query); err != nil {
		return err
	}

	filter := query.Filter().Normalize()
	users, err := h.users.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewUserResponses(users),
		"meta": fiber.Map{"limit": filter.Limit, "offset": filter.Offset},
	})
}

// SetUserStatus handles PATCH /admin/users/:userId/status.
func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.SetActive(c.UserContext(), actor, param(c, "userId"), *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Metrics handles GET /admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
