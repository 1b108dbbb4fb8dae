package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/channels"
)

type ChannelsHandler struct {
	service *channels.Service
	chain   *Chain
}

func NewChannelsHandler(service *channels.Service, chain *Chain) *ChannelsHandler {
	return &ChannelsHandler{service: service, chain: chain}
}

func (h *ChannelsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/v1/channels")
	group.GET("", h.List, h.chain.pick(h.chain.OptionalAuth, h.chain.Read)...)
	group.POST("", h.Create, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	group.GET("/:id", h.Get, h.chain.pick(h.chain.OptionalAuth, h.chain.Read)...)
	group.POST("/:id/join", h.Join, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	group.POST("/:id/leave", h.Leave, h.chain.pick(h.chain.Auth, h.chain.Write)...)
}

// List godoc
// @Summary List channels
// @Tags channels
// @Success 200 {array} channels.ChannelWithMembership
// @Router /api/v1/channels [get]
func (h *ChannelsHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), auth.OptionalAgentID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// Create godoc
// @Summary Create a channel
// @Tags channels
// @Param payload body channels.CreateRequest true "Channel definition"
// @Success 201 {object} channels.ChannelWithMembership
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/channels [post]
func (h *ChannelsHandler) Create(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req channels.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	channel, err := h.service.Create(c.Request().Context(), agentID, req)
	if err != nil {
		if errors.Is(err, channels.ErrNameTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, channel)
}

// Get godoc
// @Summary Get a channel by id or name
// @Tags channels
// @Param id path string true "Channel id or name"
// @Success 200 {object} channels.ChannelWithMembership
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/channels/{id} [get]
func (h *ChannelsHandler) Get(c echo.Context) error {
	channel, err := h.service.Get(c.Request().Context(), c.Param("id"), auth.OptionalAgentID(c))
	if err != nil {
		if errors.Is(err, channels.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, channel)
}

// Join godoc
// @Summary Join a channel
// @Tags channels
// @Param id path string true "Channel id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/channels/{id}/join [post]
func (h *ChannelsHandler) Join(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Join(c.Request().Context(), agentID, c.Param("id")); err != nil {
		return channelError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "joined"})
}

// Leave godoc
// @Summary Leave a channel
// @Tags channels
// @Param id path string true "Channel id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/channels/{id}/leave [post]
func (h *ChannelsHandler) Leave(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Leave(c.Request().Context(), agentID, c.Param("id")); err != nil {
		return channelError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "left"})
}

func channelError(err error) error {
	switch {
	case errors.Is(err, channels.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, channels.ErrAlreadyMember):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, channels.ErrNotMember):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
