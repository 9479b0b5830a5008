package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

const (
	msgAccessDenied = "Access denied."
	msgNotOwner     = "Access denied: not the resource owner."
)

// HasRole reports whether the user holds exactly the required role.
func HasRole(user *domain.User, required domain.Role) bool {
	return user != nil && user.Role == required
}

// HasAnyRole reports whether the user's role is in allowed.
func HasAnyRole(user *domain.User, allowed ...domain.Role) bool {
	if user == nil {
		return false
	}
	for _, role := range allowed {
		if user.Role == role {
			return true
		}
	}
	return false
}

// IsOwnerOrAdmin reports whether the user is an admin or is the resource owner.
func IsOwnerOrAdmin(user *domain.User, ownerID string) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || (ownerID != "" && user.ID == ownerID)
}

// RequireRole admits only users holding the given role.
func (g *Gate) RequireRole(required domain.Role) fiber.Handler {
	return g.RequireAnyRole(required)
}

// RequireAnyRole admits users whose role is in allowed. With no roles any
// resolved user is admitted.
func (g *Gate) RequireAnyRole(allowed ...domain.Role) fiber.Handler {
	roles := append([]domain.Role(nil), allowed...)

	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return g.deny(c, StageRole, nil, apperrors.NewUnauthenticated(msgNoToken))
		}
		if len(roles) > 0 && !HasAnyRole(user, roles...) {
			return g.deny(c, StageRole, user, apperrors.NewForbidden(msgAccessDenied))
		}
		g.metrics.RecordDecision(StageRole, "ALLOW")
		return c.Next()
	}
}

// RequireOwnerOrAdmin admits admins and the user whose id is in the named route parameter.
func (g *Gate) RequireOwnerOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return g.deny(c, StageRole, nil, apperrors.NewUnauthenticated(msgNoToken))
		}
		if !IsOwnerOrAdmin(user, c.Params(param)) {
			return g.deny(c, StageRole, user, apperrors.NewForbidden(msgNotOwner))
		}
		g.metrics.RecordDecision(StageRole, "ALLOW")
		return c.Next()
	}
}
