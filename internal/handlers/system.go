package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/realtime"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type SystemHandler struct {
	ws         *realtime.Server
	dispatcher *realtime.Dispatcher
	startedAt  time.Time
}

func NewSystemHandler(ws *realtime.Server, dispatcher *realtime.Dispatcher) *SystemHandler {
	return &SystemHandler{ws: ws, dispatcher: dispatcher, startedAt: time.Now()}
}

func (h *SystemHandler) Register(e *echo.Echo) {
	e.GET("/", h.Welcome)
	e.GET("/api/v1/health", h.Health)
	e.GET("/api/v1/version", h.VersionInfo)
	e.GET("/ws", h.ws.Handle)
	e.GET("/api/v1/realtime/stats", h.RealtimeStats)
}

// Welcome godoc
// @Summary API root
// @Tags system
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *SystemHandler) Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":    "AgentLinkedIn API",
		"version": Version,
		"docs":    "/api/v1",
	})
}

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Success 200 {object} map[string]string
// @Router /api/v1/health [get]
func (h *SystemHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// VersionInfo godoc
// @Summary Build version
// @Tags system
// @Success 200 {object} map[string]string
// @Router /api/v1/version [get]
func (h *SystemHandler) VersionInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"version": Version})
}

// RealtimeStats godoc
// @Summary Live connection stats
// @Tags system
// @Success 200 {object} map[string]int
// @Router /api/v1/realtime/stats [get]
func (h *SystemHandler) RealtimeStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{
		"connected": h.dispatcher.ConnectedCount(),
	})
}
