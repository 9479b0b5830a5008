package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/events"
	"github.com/spec-kit/etutor-gateway/internal/observability"
	"github.com/spec-kit/etutor-gateway/internal/repository"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

const testAPIKey = "integration-key"

var (
	activeStudent = &domain.User{ID: "11111111-1111-1111-1111-111111111111", Role: domain.RoleStudent, Active: true}
	activeTutor   = &domain.User{ID: "22222222-2222-2222-2222-222222222222", Role: domain.RoleTutor, Active: true}
	activeAdmin   = &domain.User{ID: "33333333-3333-3333-3333-333333333333", Role: domain.RoleAdmin, Active: true}
	inactiveTutor = &domain.User{ID: "44444444-4444-4444-4444-444444444444", Role: domain.RoleTutor, Active: false}
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type gateFixture struct {
	app      *fiber.App
	tokens   *TokenManager
	metrics  *observability.Metrics
	denied   []events.Event
	handlers map[string]int
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	users := new(mockUserReader)
	for _, u := range []*domain.User{activeStudent, activeTutor, activeAdmin, inactiveTutor} {
		users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	}
	users.On("GetByID", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	f := &gateFixture{
		tokens:   NewTokenManager("test-secret", time.Hour),
		metrics:  observability.NewMetrics(),
		handlers: map[string]int{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventAccessDenied, func(_ context.Context, e events.Event) error {
		f.denied = append(f.denied, e)
		return nil
	})

	gate := NewGate(GateConfig{
		Tokens:     f.tokens,
		APIKeys:    NewAPIKeyVerifier(testAPIKey),
		Users:      users,
		Dispatcher: dispatcher,
		Metrics:    f.metrics,
		Logger:     zap.NewNop(),
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{
				"error": fiber.Map{"code": de.Code, "message": de.Message},
			})
		},
	})
	app.Use(observability.RequestLogger(zap.NewNop(), nil))
	reached := func(name string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			f.handlers[name]++
			return c.SendStatus(http.StatusOK)
		}
	}

	app.Get("/me", gate.Authenticate, reached("me"))
	app.Get("/tutor", gate.Authenticate, gate.RequireRole(domain.RoleTutor), reached("tutor"))
	app.Post("/courses", gate.Authenticate, gate.RequireAnyRole(domain.RoleTutor, domain.RoleAdmin), reached("courses"))
	app.Get("/any", gate.Authenticate, gate.RequireAnyRole(), reached("any"))
	app.Get("/students/:studentId/appointments", gate.Authenticate, gate.RequireOwnerOrAdmin("studentId"), reached("owner"))
	app.Get("/integrations", gate.RequireAPIKey, reached("integrations"))
	app.Get("/misordered", gate.RequireRole(domain.RoleAdmin), reached("misordered"))
	app.Get("/docs/:slug", gate.Authenticate, reached("docs"))

	f.app = app
	return f
}

func (f *gateFixture) bearer(t *testing.T, user *domain.User) string {
	t.Helper()
	token, err := f.tokens.GenerateToken(user)
	require.NoError(t, err)
	return "Bearer " + token.Value
}

func (f *gateFixture) do(t *testing.T, method, path string, headers map[string]string) (int, errorBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body errorBody
	if resp.StatusCode != http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestAuthenticate(t *testing.T) {
	f := newGateFixture(t)

	t.Run("no credential header", func(t *testing.T) {
		status, body := f.do(t, http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHENTICATED", body.Error.Code)
		assert.Equal(t, "No token provided.", body.Error.Message)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		forged, err := NewTokenManager("other", time.Hour).GenerateToken(activeStudent)
		require.NoError(t, err)

		status, body := f.do(t, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + forged.Value})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token.", body.Error.Message)
	})

	t.Run("unknown subject", func(t *testing.T) {
		ghost := &domain.User{ID: "55555555-5555-5555-5555-555555555555", Role: domain.RoleStudent}
		status, body := f.do(t, http.MethodGet, "/me", map[string]string{"Authorization": f.bearer(t, ghost)})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "User not found.", body.Error.Message)
	})

	t.Run("deactivated user", func(t *testing.T) {
		status, body := f.do(t, http.MethodGet, "/me", map[string]string{"Authorization": f.bearer(t, inactiveTutor)})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Account is deactivated.", body.Error.Message)
	})

	t.Run("active user", func(t *testing.T) {
		status, _ := f.do(t, http.MethodGet, "/me", map[string]string{"Authorization": f.bearer(t, activeStudent)})
		assert.Equal(t, http.StatusOK, status)
	})

	assert.Equal(t, 1, f.handlers["me"])
	require.Len(t, f.denied, 4)
	assert.Equal(t, StageToken, f.denied[0].Payload.(events.AccessDeniedPayload).Stage)
	assert.Equal(t, StageLookup, f.denied[3].Payload.(events.AccessDeniedPayload).Stage)
}

func TestStoredRoleWinsOverTokenClaim(t *testing.T) {
	f := newGateFixture(t)

	// The token claims tutor, the store says student.
	spoofed := &domain.User{ID: activeStudent.ID, Role: domain.RoleTutor}
	status, body := f.do(t, http.MethodGet, "/tutor", map[string]string{"Authorization": f.bearer(t, spoofed)})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied.", body.Error.Message)
}

func TestRequireRole(t *testing.T) {
	f := newGateFixture(t)

	status, body := f.do(t, http.MethodGet, "/tutor", map[string]string{"Authorization": f.bearer(t, activeStudent)})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
	assert.Equal(t, "Access denied.", body.Error.Message)
	assert.Zero(t, f.handlers["tutor"])

	status, _ = f.do(t, http.MethodGet, "/tutor", map[string]string{"Authorization": f.bearer(t, activeTutor)})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, f.handlers["tutor"])

	require.Len(t, f.denied, 1)
	assert.Equal(t, activeStudent.ID, f.denied[0].Actor.UserID)
	assert.Equal(t, int64(1), f.metrics.Snapshot().Decisions[StageRole+"|FORBIDDEN"])
}

func TestRequireAnyRole(t *testing.T) {
	f := newGateFixture(t)

	for _, user := range []*domain.User{activeTutor, activeAdmin} {
		status, _ := f.do(t, http.MethodPost, "/courses", map[string]string{"Authorization": f.bearer(t, user)})
		assert.Equal(t, http.StatusOK, status, user.Role)
	}
	status, body := f.do(t, http.MethodPost, "/courses", map[string]string{"Authorization": f.bearer(t, activeStudent)})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied.", body.Error.Message)

	status, _ = f.do(t, http.MethodGet, "/any", map[string]string{"Authorization": f.bearer(t, activeStudent)})
	assert.Equal(t, http.StatusOK, status)
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	f := newGateFixture(t)
	ownPath := "/students/" + activeStudent.ID + "/appointments"
	otherPath := "/students/99999999-9999-9999-9999-999999999999/appointments"

	status, _ := f.do(t, http.MethodGet, ownPath, map[string]string{"Authorization": f.bearer(t, activeStudent)})
	assert.Equal(t, http.StatusOK, status)

	status, body := f.do(t, http.MethodGet, otherPath, map[string]string{"Authorization": f.bearer(t, activeStudent)})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied: not the resource owner.", body.Error.Message)

	status, _ = f.do(t, http.MethodGet, otherPath, map[string]string{"Authorization": f.bearer(t, activeAdmin)})
	assert.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodGet, ownPath, map[string]string{"Authorization": f.bearer(t, activeTutor)})
	assert.Equal(t, http.StatusForbidden, status)

	assert.Equal(t, 2, f.handlers["owner"])
}

func TestRequireAPIKey(t *testing.T) {
	f := newGateFixture(t)

	status, body := f.do(t, http.MethodGet, "/integrations", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "API Key is missing.", body.Error.Message)

	status, body = f.do(t, http.MethodGet, "/integrations", map[string]string{APIKeyHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid API Key.", body.Error.Message)

	// A valid bearer token is not an API key.
	status, _ = f.do(t, http.MethodGet, "/integrations", map[string]string{"Authorization": f.bearer(t, activeAdmin)})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, http.MethodGet, "/integrations", map[string]string{APIKeyHeader: testAPIKey})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, f.handlers["integrations"])
}

func TestRoleGateWithoutPrincipal(t *testing.T) {
	f := newGateFixture(t)

	status, body := f.do(t, http.MethodGet, "/misordered", map[string]string{"Authorization": f.bearer(t, activeAdmin)})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", body.Error.Code)
	assert.Zero(t, f.handlers["misordered"])
}

func TestAuthenticateStoreFailureIsInternal(t *testing.T) {
	users := new(mockUserReader)
	users.On("GetByID", mock.Anything, activeStudent.ID).Return(nil, errors.New("db down"))
	tokens := NewTokenManager("s", time.Hour)
	gate := NewGate(GateConfig{Tokens: tokens, APIKeys: NewAPIKeyVerifier(""), Users: users})

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/me", gate.Authenticate, func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	token, err := tokens.GenerateToken(activeStudent)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestDeniedEventSurvivesLaterRequests(t *testing.T) {
	f := newGateFixture(t)

	firstPath := "/docs/" + strings.Repeat("a", 26)
	firstID := "11111111-1111-4111-8111-111111111111"
	status, _ := f.do(t, http.MethodGet, firstPath, map[string]string{observability.RequestIDHeader: firstID})
	require.Equal(t, http.StatusUnauthorized, status)

	for i := 0; i < 50; i++ {
		f.do(t, http.MethodGet, "/docs/"+strings.Repeat("z", 26), map[string]string{
			observability.RequestIDHeader: "99999999-9999-4999-8999-999999999999",
		})
	}

	require.Len(t, f.denied, 51)
	payload := f.denied[0].Payload.(events.AccessDeniedPayload)
	assert.Equal(t, firstPath, payload.Path)
	assert.Equal(t, firstID, payload.RequestID)
	assert.Equal(t, http.MethodGet, payload.Method)
}
