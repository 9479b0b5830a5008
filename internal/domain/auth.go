package domain

import "time"

// AuthScheme identifies how a request proved its identity.
type AuthScheme string

const (
	AuthSchemeBearer AuthScheme = "BEARER"
	AuthSchemeAPIKey AuthScheme = "API_KEY"
)

// Token describes an issued access token.
type Token struct {
	Value     string
	SubjectID string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
