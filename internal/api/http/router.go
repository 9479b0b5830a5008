package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/etutor-gateway/internal/api/http/handlers"
	"github.com/spec-kit/etutor-gateway/internal/auth"
	"github.com/spec-kit/etutor-gateway/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Users        *handlers.UsersHandler
	Admin        *handlers.AdminHandler
	Courses      *handlers.CoursesHandler
	Appointments *handlers.AppointmentsHandler
	Integrations *handlers.IntegrationsHandler
	Gate         *auth.Gate
	RateLimiter  *RateLimiter
}

// RegisterRoutes wires HTTP routes. Every protected route declares its gate explicitly.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	gate := cfg.Gate

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.RateLimiter.Handler(), cfg.Users.Register)
	authGroup.Post("/login", cfg.RateLimiter.Handler(), cfg.Users.Login)
	authGroup.Post("/password/change", gate.Authenticate, cfg.Users.ChangePassword)

	users := app.Group("/users", gate.Authenticate)
	users.Get("/me", cfg.Users.Me)
	users.Get("/:userId", gate.RequireOwnerOrAdmin("userId"), cfg.Users.Get)

	admin := app.Group("/admin", gate.Authenticate, gate.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:userId/status", cfg.Admin.SetUserStatus)
	admin.Get("/metrics", cfg.Admin.Metrics)

	app.Get("/courses", gate.Authenticate, cfg.Courses.List)
	app.Post("/courses", gate.Authenticate, gate.RequireAnyRole(domain.RoleTutor, domain.RoleAdmin), cfg.Courses.Create)
	app.Get("/tutor/courses", gate.Authenticate, gate.RequireRole(domain.RoleTutor), cfg.Courses.ListMine)

	app.Post("/appointments", gate.Authenticate, gate.RequireRole(domain.RoleStudent), cfg.Appointments.Book)
	app.Patch("/appointments/:appointmentId/cancel", gate.Authenticate,
		gate.RequireAnyRole(domain.RoleStudent, domain.RoleTutor, domain.RoleAdmin), cfg.Appointments.Cancel)
	app.Get("/students/:studentId/appointments", gate.Authenticate, gate.RequireOwnerOrAdmin("studentId"), cfg.Appointments.ListForStudent)
	app.Get("/tutors/:tutorId/appointments", gate.Authenticate, gate.RequireOwnerOrAdmin("tutorId"), cfg.Appointments.ListForTutor)

	app.Get("/integrations/users/:userId", gate.RequireAPIKey, cfg.Integrations.GetUser)
}
