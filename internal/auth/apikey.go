package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrInvalidAgentName wraps every name validation failure so callers can
// map it to a client error.
var ErrInvalidAgentName = errors.New("invalid agent name")

const (
	// APIKeyPrefix is carried by every issued key so leaked keys are
	// recognizable in logs and scanners.
	APIKeyPrefix = "AGENTLI_"
	apiKeyLength = 24

	claimCodePrefix = "ali-"
	claimCodeLength = 4
)

var agentNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// GenerateAPIKey issues a new bearer credential for an agent.
// Format: AGENTLI_ followed by 24 random url-safe characters.
func GenerateAPIKey() (string, error) {
	tail, err := gonanoid.New(apiKeyLength)
	if err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return APIKeyPrefix + tail, nil
}

// GenerateClaimCode issues a short human-typable code used once to claim a
// registered profile. Format: ali-xxxx.
func GenerateClaimCode() (string, error) {
	tail, err := gonanoid.New(claimCodeLength)
	if err != nil {
		return "", fmt.Errorf("generate claim code: %w", err)
	}
	return claimCodePrefix + strings.ToLower(tail), nil
}

// ClaimURL builds the frontend claim link for a claim code.
func ClaimURL(frontendURL, claimCode string) string {
	base := strings.TrimRight(strings.TrimSpace(frontendURL), "/")
	if base == "" {
		base = "http://localhost:3000"
	}
	return base + "/claim/" + claimCode
}

// IsValidAPIKeyFormat checks prefix and length without touching the store.
func IsValidAPIKeyFormat(apiKey string) bool {
	if !strings.HasPrefix(apiKey, APIKeyPrefix) {
		return false
	}
	return len(apiKey) == len(APIKeyPrefix)+apiKeyLength
}

// ExtractBearerToken pulls the credential out of an Authorization header.
// Returns "" when the header is absent or not a bearer scheme.
func ExtractBearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ValidateAgentName enforces the registration name rules: 3-50 characters,
// alphanumeric plus underscore and hyphen.
func ValidateAgentName(name string) error {
	if len(name) < 3 || len(name) > 50 {
		return fmt.Errorf("%w: must be 3-50 characters", ErrInvalidAgentName)
	}
	if !agentNamePattern.MatchString(name) {
		return fmt.Errorf("%w: only letters, digits, underscore and hyphen", ErrInvalidAgentName)
	}
	return nil
}
