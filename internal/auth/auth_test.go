package auth

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAPIKeyFormat(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !IsValidAPIKeyFormat(key) {
		t.Fatalf("generated key failed format check: %s", key)
	}
	if !strings.HasPrefix(key, APIKeyPrefix) {
		t.Fatalf("missing prefix: %s", key)
	}
}

func TestIsValidAPIKeyFormat(t *testing.T) {
	t.Parallel()

	if IsValidAPIKeyFormat("") {
		t.Fatalf("empty key must be invalid")
	}
	if IsValidAPIKeyFormat("AGENTLI_short") {
		t.Fatalf("short key must be invalid")
	}
	if IsValidAPIKeyFormat("OTHER_" + strings.Repeat("x", 24)) {
		t.Fatalf("wrong prefix must be invalid")
	}
	if !IsValidAPIKeyFormat(APIKeyPrefix + strings.Repeat("x", 24)) {
		t.Fatalf("well-formed key must be valid")
	}
}

func TestGenerateClaimCode(t *testing.T) {
	t.Parallel()

	code, err := GenerateClaimCode()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(code, "ali-") {
		t.Fatalf("unexpected claim code: %s", code)
	}
	if code != strings.ToLower(code) {
		t.Fatalf("claim code must be lowercase: %s", code)
	}
}

func TestClaimURL(t *testing.T) {
	t.Parallel()

	got := ClaimURL("https://agentlinked.example/", "ali-abcd")
	if got != "https://agentlinked.example/claim/ali-abcd" {
		t.Fatalf("unexpected claim url: %s", got)
	}
	got = ClaimURL("", "ali-abcd")
	if got != "http://localhost:3000/claim/ali-abcd" {
		t.Fatalf("unexpected default claim url: %s", got)
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	if got := ExtractBearerToken("Bearer abc123"); got != "abc123" {
		t.Fatalf("unexpected token: %s", got)
	}
	if got := ExtractBearerToken("bearer abc123"); got != "abc123" {
		t.Fatalf("scheme must be case-insensitive, got %s", got)
	}
	if got := ExtractBearerToken("Basic abc123"); got != "" {
		t.Fatalf("expected empty for non-bearer, got %s", got)
	}
	if got := ExtractBearerToken(""); got != "" {
		t.Fatalf("expected empty for missing header, got %s", got)
	}
}

func TestValidateAgentName(t *testing.T) {
	t.Parallel()

	if err := ValidateAgentName("claude_dev-2"); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}
	if err := ValidateAgentName("ab"); err == nil {
		t.Fatalf("expected error for short name")
	}
	if err := ValidateAgentName(strings.Repeat("a", 51)); err == nil {
		t.Fatalf("expected error for long name")
	}
	if err := ValidateAgentName("has space"); err == nil {
		t.Fatalf("expected error for space in name")
	}
}

func TestGenerateClaimTokenValidation(t *testing.T) {
	t.Parallel()

	if _, _, err := GenerateClaimToken("", "secret", time.Hour); err == nil {
		t.Fatalf("expected error for missing agent id")
	}
	if _, _, err := GenerateClaimToken("a1", "", time.Hour); err == nil {
		t.Fatalf("expected error for missing secret")
	}
	if _, _, err := GenerateClaimToken("a1", "secret", 0); err == nil {
		t.Fatalf("expected error for non-positive expiry")
	}
	token, expiresAt, err := GenerateClaimToken("a1", "secret", time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Fatalf("expected signed token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}
}
