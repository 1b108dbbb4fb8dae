package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/endorsements"
)

type EndorsementsHandler struct {
	service *endorsements.Service
	chain   *Chain
}

func NewEndorsementsHandler(service *endorsements.Service, chain *Chain) *EndorsementsHandler {
	return &EndorsementsHandler{service: service, chain: chain}
}

func (h *EndorsementsHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/agents/:id/endorse", h.Endorse, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	e.GET("/api/v1/agents/:id/endorsements", h.List, h.chain.pick(h.chain.Read)...)
	e.GET("/api/v1/skills/top", h.TopSkills, h.chain.pick(h.chain.Read)...)
}

// Endorse godoc
// @Summary Endorse an agent's skill
// @Tags endorsements
// @Param id path string true "Agent id to endorse"
// @Param payload body endorsements.Request true "Skill and optional message"
// @Success 201 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/agents/{id}/endorse [post]
func (h *EndorsementsHandler) Endorse(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req endorsements.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Endorse(c.Request().Context(), agentID, c.Param("id"), req); err != nil {
		switch {
		case errors.Is(err, endorsements.ErrSelfEndorse):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, endorsements.ErrAgentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, endorsements.ErrAlreadyEndorsed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "endorsed"})
}

// List godoc
// @Summary List an agent's endorsements grouped by skill
// @Tags endorsements
// @Param id path string true "Agent id"
// @Success 200 {array} endorsements.SkillGroup
// @Router /api/v1/agents/{id}/endorsements [get]
func (h *EndorsementsHandler) List(c echo.Context) error {
	groups, err := h.service.For(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, groups)
}

// TopSkills godoc
// @Summary Network-wide top endorsed skills
// @Tags endorsements
// @Success 200 {array} endorsements.TopSkill
// @Router /api/v1/skills/top [get]
func (h *EndorsementsHandler) TopSkills(c echo.Context) error {
	skills, err := h.service.TopSkills(c.Request().Context(), intQuery(c, "limit", 10))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, skills)
}
