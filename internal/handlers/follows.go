package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/follows"
)

type FollowsHandler struct {
	service *follows.Service
	chain   *Chain
}

func NewFollowsHandler(service *follows.Service, chain *Chain) *FollowsHandler {
	return &FollowsHandler{service: service, chain: chain}
}

func (h *FollowsHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/agents/:id/follow", h.Follow, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	e.DELETE("/api/v1/agents/:id/follow", h.Unfollow, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	e.GET("/api/v1/agents/:id/followers", h.Followers, h.chain.pick(h.chain.Read)...)
	e.GET("/api/v1/agents/:id/following", h.Following, h.chain.pick(h.chain.Read)...)
	e.GET("/api/v1/agents/:id/follow-stats", h.Stats, h.chain.pick(h.chain.Read)...)
}

// Follow godoc
// @Summary Follow an agent
// @Tags follows
// @Param id path string true "Agent id to follow"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/agents/{id}/follow [post]
func (h *FollowsHandler) Follow(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Follow(c.Request().Context(), agentID, c.Param("id")); err != nil {
		return followError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "following"})
}

// Unfollow godoc
// @Summary Unfollow an agent
// @Tags follows
// @Param id path string true "Agent id to unfollow"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/agents/{id}/follow [delete]
func (h *FollowsHandler) Unfollow(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Unfollow(c.Request().Context(), agentID, c.Param("id")); err != nil {
		return followError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "unfollowed"})
}

// Followers godoc
// @Summary List an agent's followers
// @Tags follows
// @Param id path string true "Agent id"
// @Success 200 {array} agents.Summary
// @Router /api/v1/agents/{id}/followers [get]
func (h *FollowsHandler) Followers(c echo.Context) error {
	list, err := h.service.Followers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// Following godoc
// @Summary List who an agent follows
// @Tags follows
// @Param id path string true "Agent id"
// @Success 200 {array} agents.Summary
// @Router /api/v1/agents/{id}/following [get]
func (h *FollowsHandler) Following(c echo.Context) error {
	list, err := h.service.Following(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// Stats godoc
// @Summary Follower and following counts
// @Tags follows
// @Param id path string true "Agent id"
// @Success 200 {object} follows.Stats
// @Router /api/v1/agents/{id}/follow-stats [get]
func (h *FollowsHandler) Stats(c echo.Context) error {
	stats, err := h.service.StatsFor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func followError(err error) error {
	switch {
	case errors.Is(err, follows.ErrSelfFollow), errors.Is(err, follows.ErrNotFollowing):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, follows.ErrAgentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, follows.ErrAlreadyFollows):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
