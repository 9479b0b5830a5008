package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/etutor-gateway/internal/api/dto"
	"github.com/spec-kit/etutor-gateway/internal/auth"
	"github.com/spec-kit/etutor-gateway/internal/domain"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

func bindBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(out)
}

func bindQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	return dto.Validate(out)
}

// currentUser returns the user resolved by the gate.
func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthenticated("No token provided.")
	}
	return user, nil
}

// param returns a copy of a route parameter that is safe to keep past the request.
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}
