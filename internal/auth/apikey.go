package auth

import (
	"crypto/subtle"

	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

// APIKeyHeader carries the static integration key.
const APIKeyHeader = "ApiKey"

const (
	msgMissingAPIKey = "API Key is missing."
	msgInvalidAPIKey = "Invalid API Key."
)

// APIKeyVerifier compares presented keys against the configured one.
type APIKeyVerifier struct {
	key []byte
}

// NewAPIKeyVerifier builds a verifier. With an empty key every presented key is rejected.
func NewAPIKeyVerifier(key string) *APIKeyVerifier {
	return &APIKeyVerifier{key: []byte(key)}
}

// Verify checks the value of the ApiKey header.
func (v *APIKeyVerifier) Verify(presented string) error {
	if presented == "" {
		return apperrors.NewUnauthenticated(msgMissingAPIKey)
	}
	if len(v.key) == 0 || subtle.ConstantTimeCompare([]byte(presented), v.key) != 1 {
		return apperrors.NewUnauthenticated(msgInvalidAPIKey)
	}
	return nil
}
