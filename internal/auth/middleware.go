package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/spec-kit/etutor-gateway/internal/domain"
	"github.com/spec-kit/etutor-gateway/internal/events"
	"github.com/spec-kit/etutor-gateway/internal/observability"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Gate stages, used in logs, metrics and audit events.
const (
	StageToken  = "token"
	StageAPIKey = "api_key"
	StageLookup = "lookup"
	StageRole   = "role"
)

// Principal represents the authenticated caller. User is nil for API key callers.
type Principal struct {
	Scheme domain.AuthScheme
	User   *domain.User
}

// GateConfig wires the collaborators of a Gate. Dispatcher and Metrics are optional.
type GateConfig struct {
	Tokens     *TokenManager
	APIKeys    *APIKeyVerifier
	Users      UserReader
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// Gate validates credentials, loads the caller and enforces route roles.
type Gate struct {
	tokens     *TokenManager
	apiKeys    *APIKeyVerifier
	lookup     *UserLookup
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewGate constructs the gate.
func NewGate(cfg GateConfig) *Gate {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		tokens:     cfg.Tokens,
		apiKeys:    cfg.APIKeys,
		lookup:     NewUserLookup(cfg.Users),
		dispatcher: cfg.Dispatcher,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// Authenticate verifies the bearer token and resolves the active user behind it.
func (g *Gate) Authenticate(c *fiber.Ctx) error {
	subjectID, err := g.tokens.VerifyBearer(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return g.deny(c, StageToken, nil, err)
	}

	user, err := g.lookup.Resolve(c.UserContext(), subjectID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUnauthenticated) {
			g.logger.Error("user lookup failed",
				zap.String("request_id", observability.RequestID(c)),
				zap.String("subject_id", subjectID),
				zap.Error(err))
			return err
		}
		return g.deny(c, StageLookup, nil, err)
	}

	g.metrics.RecordDecision(StageLookup, "ALLOW")
	c.Locals(principalKey, &Principal{Scheme: domain.AuthSchemeBearer, User: user})
	return c.Next()
}

// RequireAPIKey admits requests carrying the configured static key.
func (g *Gate) RequireAPIKey(c *fiber.Ctx) error {
	if err := g.apiKeys.Verify(c.Get(APIKeyHeader)); err != nil {
		return g.deny(c, StageAPIKey, nil, err)
	}
	g.metrics.RecordDecision(StageAPIKey, "ALLOW")
	c.Locals(principalKey, &Principal{Scheme: domain.AuthSchemeAPIKey})
	return c.Next()
}

// deny logs, counts and audits a rejection, then returns err unchanged for rendering.
// Request values are copied because the event outlives the fasthttp buffers.
func (g *Gate) deny(c *fiber.Ctx, stage string, user *domain.User, err error) error {
	de := apperrors.ToDomainError(err)
	requestID := utils.CopyString(observability.RequestID(c))
	method := utils.CopyString(c.Method())
	path := utils.CopyString(c.Path())

	g.logger.Warn("access denied",
		zap.String("stage", stage),
		zap.String("code", de.Code),
		zap.String("reason", de.Message),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID))
	g.metrics.RecordDecision(stage, de.Code)

	if g.dispatcher != nil {
		event := events.NewEvent(events.EventAccessDenied, "", events.ActorFrom(user), events.AccessDeniedPayload{
			Stage:     stage,
			Code:      de.Code,
			Reason:    de.Message,
			Method:    method,
			Path:      path,
			IP:        utils.CopyString(c.IP()),
			RequestID: requestID,
		})
		if pubErr := g.dispatcher.Publish(c.UserContext(), event); pubErr != nil {
			g.logger.Warn("audit dispatch failed", zap.String("request_id", requestID), zap.Error(pubErr))
		}
	}
	return err
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// UserFromContext returns the resolved user of a bearer-authenticated request.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, false
	}
	return principal.User, true
}
