package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/etutor-gateway/internal/api/dto"
	"github.com/spec-kit/etutor-gateway/internal/service"
)

// IntegrationsHandler serves machine clients authenticated by the static API key.
type IntegrationsHandler struct {
	users *service.UserService
}

// NewIntegrationsHandler constructs handler.
func NewIntegrationsHandler(userService *service.UserService) *IntegrationsHandler {
	return &IntegrationsHandler{users: userService}
}

// GetUser GET /integrations/users/:userId.
func (h *IntegrationsHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), param(c, "userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.IntegrationUserResponse{
		ID:     user.ID,
		Role:   user.Role,
		Active: user.Active,
	}})
}
