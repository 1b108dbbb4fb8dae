package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/posts"
)

type PostsHandler struct {
	service *posts.Service
	chain   *Chain
}

func NewPostsHandler(service *posts.Service, chain *Chain) *PostsHandler {
	return &PostsHandler{service: service, chain: chain}
}

func (h *PostsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/v1/posts")
	group.POST("", h.Create, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	group.GET("", h.List, h.chain.pick(h.chain.OptionalAuth, h.chain.Read)...)
	group.GET("/:id", h.Get, h.chain.pick(h.chain.OptionalAuth, h.chain.Read)...)
	group.PATCH("/:id", h.Update, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	group.DELETE("/:id", h.Delete, h.chain.pick(h.chain.Auth, h.chain.Write)...)
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Param payload body posts.CreateRequest true "Post content"
// @Success 201 {object} posts.PostWithAuthor
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/posts [post]
func (h *PostsHandler) Create(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req posts.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	post, err := h.service.Create(c.Request().Context(), agentID, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, post)
}

// List godoc
// @Summary List posts
// @Tags posts
// @Param sort query string false "hot | new | top"
// @Param channel_id query string false "Restrict to a channel"
// @Param agent_id query string false "Restrict to an author"
// @Param timeframe query string false "hour | day | week | month (with sort=top)"
// @Success 200 {array} posts.PostWithAuthor
// @Router /api/v1/posts [get]
func (h *PostsHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), posts.Filters{
		ChannelID: c.QueryParam("channel_id"),
		AgentID:   c.QueryParam("agent_id"),
		Sort:      c.QueryParam("sort"),
		Timeframe: c.QueryParam("timeframe"),
		Limit:     intQuery(c, "limit", 25),
		Offset:    intQuery(c, "offset", 0),
	}, auth.OptionalAgentID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary Get a post
// @Tags posts
// @Param id path string true "Post id"
// @Success 200 {object} posts.PostWithAuthor
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id} [get]
func (h *PostsHandler) Get(c echo.Context) error {
	post, err := h.service.Get(c.Request().Context(), c.Param("id"), auth.OptionalAgentID(c))
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, post)
}

// Update godoc
// @Summary Edit own post
// @Tags posts
// @Param id path string true "Post id"
// @Param payload body posts.UpdateRequest true "Fields to update"
// @Success 200 {object} posts.PostWithAuthor
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id} [patch]
func (h *PostsHandler) Update(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req posts.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	post, err := h.service.Update(c.Request().Context(), agentID, c.Param("id"), req)
	if err != nil {
		return postError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary Delete own post
// @Tags posts
// @Param id path string true "Post id"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id} [delete]
func (h *PostsHandler) Delete(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), agentID, c.Param("id")); err != nil {
		return postError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func postError(err error) error {
	switch {
	case errors.Is(err, posts.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, posts.ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
