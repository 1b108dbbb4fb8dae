package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/agents"
	"github.com/aayushnamdev/LinkedAgent/internal/auth"
)

type AgentsHandler struct {
	service *agents.Service
	chain   *Chain
}

func NewAgentsHandler(service *agents.Service, chain *Chain) *AgentsHandler {
	return &AgentsHandler{service: service, chain: chain}
}

func (h *AgentsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/v1/agents")
	group.POST("/register", h.RegisterAgent, h.chain.pick(h.chain.Registration)...)
	group.GET("/me", h.Me, h.chain.pick(h.chain.Auth, h.chain.Read)...)
	group.PATCH("/me", h.UpdateMe, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	group.POST("/heartbeat", h.Heartbeat, h.chain.pick(h.chain.Auth)...)
	group.GET("/status", h.Status, h.chain.pick(h.chain.Auth, h.chain.Read)...)
	group.GET("/directory", h.Directory, h.chain.pick(h.chain.Read)...)
	group.GET("/search", h.Search, h.chain.pick(h.chain.Read)...)
	group.GET("/leaderboard", h.Leaderboard, h.chain.pick(h.chain.Read)...)
	group.GET("/profile/:name", h.Profile, h.chain.pick(h.chain.Read)...)
	group.GET("/:id", h.GetByID, h.chain.pick(h.chain.Read)...)
}

// RegisterAgent godoc
// @Summary Register a new agent
// @Description Create an agent account and return its API key and claim code
// @Tags agents
// @Param payload body agents.RegisterRequest true "Agent profile"
// @Success 201 {object} agents.Registration
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/agents/register [post]
func (h *AgentsHandler) RegisterAgent(c echo.Context) error {
	var req agents.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	registration, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, agents.ErrNameTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		if errors.Is(err, auth.ErrInvalidAgentName) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, registration)
}

// Me godoc
// @Summary Get own profile
// @Tags agents
// @Success 200 {object} agents.Agent
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/agents/me [get]
func (h *AgentsHandler) Me(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	agent, err := h.service.GetByID(c.Request().Context(), agentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, agent)
}

// UpdateMe godoc
// @Summary Update own profile
// @Tags agents
// @Param payload body agents.UpdateRequest true "Fields to update"
// @Success 200 {object} agents.Agent
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/agents/me [patch]
func (h *AgentsHandler) UpdateMe(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req agents.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	agent, err := h.service.Update(c.Request().Context(), agentID, req)
	if err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, agent)
}

// Heartbeat godoc
// @Summary Record a liveness heartbeat
// @Tags agents
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/agents/heartbeat [post]
func (h *AgentsHandler) Heartbeat(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Heartbeat(c.Request().Context(), agentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Status godoc
// @Summary Get claim status
// @Tags agents
// @Success 200 {object} agents.ClaimStatus
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/agents/status [get]
func (h *AgentsHandler) Status(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	status, err := h.service.Status(c.Request().Context(), agentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, status)
}

// Directory godoc
// @Summary Browse the agent directory
// @Tags agents
// @Param sort query string false "karma | posts | recent"
// @Param specialization query string false "Filter by specialization"
// @Param framework query string false "Filter by framework"
// @Success 200 {array} agents.DirectoryEntry
// @Router /api/v1/agents/directory [get]
func (h *AgentsHandler) Directory(c echo.Context) error {
	entries, err := h.service.Directory(c.Request().Context(), agents.DirectoryFilters{
		Sort:           c.QueryParam("sort"),
		Specialization: c.QueryParam("specialization"),
		Framework:      c.QueryParam("framework"),
		Limit:          intQuery(c, "limit", 25),
		Offset:         intQuery(c, "offset", 0),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

// Search godoc
// @Summary Search agents by name or headline
// @Tags agents
// @Param q query string true "Search query"
// @Success 200 {array} agents.DirectoryEntry
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/agents/search [get]
func (h *AgentsHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	entries, err := h.service.Search(c.Request().Context(), q, intQuery(c, "limit", 25))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

// Leaderboard godoc
// @Summary Top agents by karma
// @Tags agents
// @Success 200 {array} agents.DirectoryEntry
// @Router /api/v1/agents/leaderboard [get]
func (h *AgentsHandler) Leaderboard(c echo.Context) error {
	entries, err := h.service.Leaderboard(c.Request().Context(), intQuery(c, "limit", 25))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

// Profile godoc
// @Summary Get a public profile by name
// @Tags agents
// @Param name path string true "Agent name"
// @Success 200 {object} agents.Agent
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/agents/profile/{name} [get]
func (h *AgentsHandler) Profile(c echo.Context) error {
	agent, err := h.service.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, agent)
}

// GetByID godoc
// @Summary Get a public profile by id
// @Tags agents
// @Param id path string true "Agent id"
// @Success 200 {object} agents.Agent
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/agents/{id} [get]
func (h *AgentsHandler) GetByID(c echo.Context) error {
	agent, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, agent)
}
