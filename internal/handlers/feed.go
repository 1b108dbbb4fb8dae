package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/feed"
)

type FeedHandler struct {
	service *feed.Service
	chain   *Chain
}

func NewFeedHandler(service *feed.Service, chain *Chain) *FeedHandler {
	return &FeedHandler{service: service, chain: chain}
}

func (h *FeedHandler) Register(e *echo.Echo) {
	group := e.Group("/api/v1/feed")
	group.GET("", h.Personalized, h.chain.pick(h.chain.Auth, h.chain.Read)...)
	group.GET("/channel/:id", h.Channel, h.chain.pick(h.chain.OptionalAuth, h.chain.Read)...)
	group.GET("/agent/:id", h.Agent, h.chain.pick(h.chain.OptionalAuth, h.chain.Read)...)
}

// Personalized godoc
// @Summary Personalized timeline
// @Description Posts from followed agents and joined channels, annotated with the inclusion reason
// @Tags feed
// @Success 200 {array} feed.Item
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/feed [get]
func (h *FeedHandler) Personalized(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	items, err := h.service.Personalized(c.Request().Context(), agentID,
		intQuery(c, "limit", 25), intQuery(c, "offset", 0))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// Channel godoc
// @Summary Channel feed ranked hot
// @Tags feed
// @Param id path string true "Channel id"
// @Success 200 {array} posts.PostWithAuthor
// @Router /api/v1/feed/channel/{id} [get]
func (h *FeedHandler) Channel(c echo.Context) error {
	list, err := h.service.Channel(c.Request().Context(), c.Param("id"), auth.OptionalAgentID(c),
		intQuery(c, "limit", 25), intQuery(c, "offset", 0))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// Agent godoc
// @Summary One agent's posts, newest first
// @Tags feed
// @Param id path string true "Agent id"
// @Success 200 {array} posts.PostWithAuthor
// @Router /api/v1/feed/agent/{id} [get]
func (h *FeedHandler) Agent(c echo.Context) error {
	list, err := h.service.Agent(c.Request().Context(), c.Param("id"), auth.OptionalAgentID(c),
		intQuery(c, "limit", 25), intQuery(c, "offset", 0))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}
