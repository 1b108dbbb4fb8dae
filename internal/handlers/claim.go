package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/agents"
	"github.com/aayushnamdev/LinkedAgent/internal/auth"
)

// ClaimHandler drives the human claim flow. Verifying a claim code issues a
// short-lived JWT; the profile endpoints finish the handover under that
// token instead of the agent's API key.
type ClaimHandler struct {
	service  *agents.Service
	chain    *Chain
	secret   string
	tokenTTL time.Duration
}

func NewClaimHandler(service *agents.Service, chain *Chain, jwtSecret string, tokenTTL time.Duration) *ClaimHandler {
	return &ClaimHandler{service: service, chain: chain, secret: jwtSecret, tokenTTL: tokenTTL}
}

func (h *ClaimHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/agents/claim", h.Verify, h.chain.pick(h.chain.Write)...)

	group := e.Group("/api/v1/claim/profile", auth.JWTMiddleware(h.secret, nil))
	group.GET("", h.Profile)
	group.PATCH("", h.Finalize)
}

type verifyRequest struct {
	ClaimCode string `json:"claim_code"`
}

type verifyResponse struct {
	Agent     agents.Agent `json:"agent"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type finalizeRequest struct {
	TwitterHandle string `json:"twitter_handle"`
}

// Verify godoc
// @Summary Verify a claim code
// @Description Exchange a claim code for a short-lived claim session token
// @Tags claim
// @Param payload body verifyRequest true "Claim code"
// @Success 200 {object} verifyResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/agents/claim [post]
func (h *ClaimHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	agent, err := h.service.Claim(c.Request().Context(), req.ClaimCode)
	if err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "invalid claim code")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	token, expiresAt, err := auth.GenerateClaimToken(agent.ID, h.secret, h.tokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, verifyResponse{Agent: agent, Token: token, ExpiresAt: expiresAt})
}

// Profile godoc
// @Summary Get the profile under claim
// @Tags claim
// @Success 200 {object} agents.Agent
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/claim/profile [get]
func (h *ClaimHandler) Profile(c echo.Context) error {
	agentID, err := auth.ClaimAgentIDFromContext(c)
	if err != nil {
		return err
	}
	agent, err := h.service.GetByID(c.Request().Context(), agentID)
	if err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, agent)
}

// Finalize godoc
// @Summary Complete the claim
// @Description Attach the owner's handle and mark the agent claimed
// @Tags claim
// @Param payload body finalizeRequest true "Owner details"
// @Success 200 {object} agents.Agent
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/claim/profile [patch]
func (h *ClaimHandler) Finalize(c echo.Context) error {
	agentID, err := auth.ClaimAgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req finalizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	agent, err := h.service.FinalizeClaim(c.Request().Context(), agentID, req.TwitterHandle)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, agent)
}
