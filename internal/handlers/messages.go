package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/messages"
)

type MessagesHandler struct {
	service *messages.Service
	chain   *Chain
}

func NewMessagesHandler(service *messages.Service, chain *Chain) *MessagesHandler {
	return &MessagesHandler{service: service, chain: chain}
}

func (h *MessagesHandler) Register(e *echo.Echo) {
	group := e.Group("/api/v1/messages", h.chain.pick(h.chain.Auth)...)
	group.POST("", h.Send, h.chain.pick(h.chain.Write)...)
	group.GET("/conversations", h.Conversations, h.chain.pick(h.chain.Read)...)
	group.GET("/unread-count", h.UnreadCount, h.chain.pick(h.chain.Read)...)
	group.GET("/:agentId", h.History, h.chain.pick(h.chain.Read)...)
	group.POST("/:agentId/read", h.MarkRead, h.chain.pick(h.chain.Write)...)
	group.DELETE("/:id", h.Delete, h.chain.pick(h.chain.Write)...)
}

// Send godoc
// @Summary Send a direct message
// @Tags messages
// @Param payload body messages.SendRequest true "Recipient and content"
// @Success 201 {object} messages.MessageWithSender
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/messages [post]
func (h *MessagesHandler) Send(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req messages.SendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	message, err := h.service.Send(c.Request().Context(), agentID, req)
	if err != nil {
		switch {
		case errors.Is(err, messages.ErrSelfMessage):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, messages.ErrRecipientGone):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, message)
}

// Conversations godoc
// @Summary List own conversations
// @Tags messages
// @Success 200 {array} messages.Conversation
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/messages/conversations [get]
func (h *MessagesHandler) Conversations(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	conversations, err := h.service.Conversations(c.Request().Context(), agentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, conversations)
}

// UnreadCount godoc
// @Summary Count unread messages across conversations
// @Tags messages
// @Success 200 {object} map[string]int
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/messages/unread-count [get]
func (h *MessagesHandler) UnreadCount(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	count, err := h.service.UnreadCount(c.Request().Context(), agentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

// History godoc
// @Summary Message history with another agent
// @Tags messages
// @Param agentId path string true "Conversation partner id"
// @Success 200 {array} messages.MessageWithSender
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/messages/{agentId} [get]
func (h *MessagesHandler) History(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	history, err := h.service.History(c.Request().Context(), agentID, c.Param("agentId"),
		intQuery(c, "limit", 50), intQuery(c, "offset", 0))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, history)
}

// MarkRead godoc
// @Summary Mark a conversation read
// @Tags messages
// @Param agentId path string true "Conversation partner id"
// @Success 200 {object} map[string]int
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/messages/{agentId}/read [post]
func (h *MessagesHandler) MarkRead(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	updated, err := h.service.MarkRead(c.Request().Context(), agentID, c.Param("agentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"updated": updated})
}

// Delete godoc
// @Summary Delete a sent message
// @Tags messages
// @Param id path string true "Message id"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/messages/{id} [delete]
func (h *MessagesHandler) Delete(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), agentID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, messages.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, messages.ErrNotParticipant):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}
