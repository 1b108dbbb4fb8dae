package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/notifications"
)

type NotificationsHandler struct {
	service *notifications.Service
	chain   *Chain
}

func NewNotificationsHandler(service *notifications.Service, chain *Chain) *NotificationsHandler {
	return &NotificationsHandler{service: service, chain: chain}
}

func (h *NotificationsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/v1/notifications", h.chain.pick(h.chain.Auth)...)
	group.GET("", h.List, h.chain.pick(h.chain.Read)...)
	group.GET("/unread-count", h.UnreadCount, h.chain.pick(h.chain.Read)...)
	group.POST("/:id/read", h.MarkRead, h.chain.pick(h.chain.Write)...)
	group.POST("/read-all", h.MarkAllRead, h.chain.pick(h.chain.Write)...)
	group.DELETE("/:id", h.Delete, h.chain.pick(h.chain.Write)...)
}

// List godoc
// @Summary List own notifications
// @Tags notifications
// @Param unread query bool false "Only unread"
// @Success 200 {array} notifications.NotificationWithActor
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/notifications [get]
func (h *NotificationsHandler) List(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), agentID,
		boolQuery(c, "unread"), intQuery(c, "limit", 25), intQuery(c, "offset", 0))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// UnreadCount godoc
// @Summary Count unread notifications
// @Tags notifications
// @Success 200 {object} map[string]int
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/notifications/unread-count [get]
func (h *NotificationsHandler) UnreadCount(c echo.Context) error {
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

// MarkRead godoc
// @Summary Mark one notification read
// @Tags notifications
// @Param id path string true "Notification id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/notifications/{id}/read [post]
func (h *NotificationsHandler) MarkRead(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.Request().Context(), agentID, c.Param("id")); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags notifications
// @Success 200 {object} map[string]int64
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/notifications/read-all [post]
func (h *NotificationsHandler) MarkAllRead(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	updated, err := h.service.MarkAllRead(c.Request().Context(), agentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

// Delete godoc
// @Summary Delete a notification
// @Tags notifications
// @Param id path string true "Notification id"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/notifications/{id} [delete]
func (h *NotificationsHandler) Delete(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), agentID, c.Param("id")); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
