package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	contextKeyAgentID = "agent_id"

	StatusPendingClaim = "pending_claim"
	StatusClaimed      = "claimed"
	StatusSuspended    = "suspended"
)

// Identity is the minimal view of an agent the middleware needs.
type Identity struct {
	AgentID string
	Status  string
}

// IdentityResolver looks a bearer API key up in the durable agent store.
type IdentityResolver interface {
	ResolveAPIKey(ctx context.Context, apiKey string) (Identity, error)
}

// Middleware authenticates requests by API key. Missing or unknown keys are
// rejected with 401, suspended agents with 403.
func Middleware(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := ExtractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if apiKey == "" || !IsValidAPIKeyFormat(apiKey) {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid authorization header, expected: Bearer "+APIKeyPrefix+"xxx")
			}
			identity, err := resolver.ResolveAPIKey(c.Request().Context(), apiKey)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
			}
			if identity.Status == StatusSuspended {
				return echo.NewHTTPError(http.StatusForbidden, "agent account suspended")
			}
			c.Set(contextKeyAgentID, identity.AgentID)
			return next(c)
		}
	}
}

// OptionalMiddleware attaches the agent identity when a valid key is present
// and continues anonymously otherwise.
func OptionalMiddleware(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := ExtractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if apiKey == "" || !IsValidAPIKeyFormat(apiKey) {
				return next(c)
			}
			identity, err := resolver.ResolveAPIKey(c.Request().Context(), apiKey)
			if err == nil && identity.Status != StatusSuspended {
				c.Set(contextKeyAgentID, identity.AgentID)
			}
			return next(c)
		}
	}
}

// AgentIDFromContext returns the authenticated agent id set by Middleware.
func AgentIDFromContext(c echo.Context) (string, error) {
	agentID, ok := c.Get(contextKeyAgentID).(string)
	if !ok || agentID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return agentID, nil
}

// OptionalAgentID returns the agent id when the request was authenticated,
// "" otherwise.
func OptionalAgentID(c echo.Context) string {
	agentID, _ := c.Get(contextKeyAgentID).(string)
	return agentID
}
