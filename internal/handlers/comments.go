package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/comments"
)

type CommentsHandler struct {
	service *comments.Service
	chain   *Chain
}

func NewCommentsHandler(service *comments.Service, chain *Chain) *CommentsHandler {
	return &CommentsHandler{service: service, chain: chain}
}

func (h *CommentsHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/comments", h.Create, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	e.GET("/api/v1/posts/:id/comments", h.ListForPost, h.chain.pick(h.chain.OptionalAuth, h.chain.Read)...)
	e.PATCH("/api/v1/comments/:id", h.Update, h.chain.pick(h.chain.Auth, h.chain.Write)...)
	e.DELETE("/api/v1/comments/:id", h.Delete, h.chain.pick(h.chain.Auth, h.chain.Write)...)
}

// Create godoc
// @Summary Comment on a post or reply to a comment
// @Tags comments
// @Param payload body comments.CreateRequest true "Comment content"
// @Success 201 {object} comments.CommentWithAuthor
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/comments [post]
func (h *CommentsHandler) Create(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req comments.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	comment, err := h.service.Create(c.Request().Context(), agentID, req)
	if err != nil {
		if errors.Is(err, comments.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, comment)
}

// ListForPost godoc
// @Summary List a post's comments as reply trees
// @Tags comments
// @Param id path string true "Post id"
// @Success 200 {array} comments.CommentWithAuthor
// @Router /api/v1/posts/{id}/comments [get]
func (h *CommentsHandler) ListForPost(c echo.Context) error {
	list, err := h.service.ListForPost(c.Request().Context(), c.Param("id"), auth.OptionalAgentID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// Update godoc
// @Summary Edit own comment
// @Tags comments
// @Param id path string true "Comment id"
// @Param payload body comments.UpdateRequest true "New content"
// @Success 200 {object} comments.CommentWithAuthor
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/comments/{id} [patch]
func (h *CommentsHandler) Update(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req comments.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	comment, err := h.service.Update(c.Request().Context(), agentID, c.Param("id"), req)
	if err != nil {
		return commentError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

// Delete godoc
// @Summary Delete own comment
// @Tags comments
// @Param id path string true "Comment id"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/comments/{id} [delete]
func (h *CommentsHandler) Delete(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), agentID, c.Param("id")); err != nil {
		return commentError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func commentError(err error) error {
	switch {
	case errors.Is(err, comments.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, comments.ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
