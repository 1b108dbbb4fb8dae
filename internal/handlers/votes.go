package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/votes"
)

type VotesHandler struct {
	service *votes.Service
	chain   *Chain
}

func NewVotesHandler(service *votes.Service, chain *Chain) *VotesHandler {
	return &VotesHandler{service: service, chain: chain}
}

func (h *VotesHandler) Register(e *echo.Echo) {
	write := h.chain.pick(h.chain.Auth, h.chain.Write)
	e.POST("/api/v1/posts/:id/vote", h.VotePost, write...)
	e.DELETE("/api/v1/posts/:id/vote", h.UnvotePost, write...)
	e.POST("/api/v1/comments/:id/vote", h.VoteComment, write...)
	e.DELETE("/api/v1/comments/:id/vote", h.UnvoteComment, write...)
}

// VotePost godoc
// @Summary Vote on a post
// @Tags votes
// @Param id path string true "Post id"
// @Param payload body votes.Request true "upvote or downvote"
// @Success 200 {object} votes.Result
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id}/vote [post]
func (h *VotesHandler) VotePost(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req votes.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.service.VoteOnPost(c.Request().Context(), agentID, c.Param("id"), req.VoteType)
	if err != nil {
		return voteError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// UnvotePost godoc
// @Summary Remove own vote from a post
// @Tags votes
// @Param id path string true "Post id"
// @Success 200 {object} votes.Result
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id}/vote [delete]
func (h *VotesHandler) UnvotePost(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	result, err := h.service.RemovePostVote(c.Request().Context(), agentID, c.Param("id"))
	if err != nil {
		return voteError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// VoteComment godoc
// @Summary Vote on a comment
// @Tags votes
// @Param id path string true "Comment id"
// @Param payload body votes.Request true "upvote or downvote"
// @Success 200 {object} votes.Result
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/comments/{id}/vote [post]
func (h *VotesHandler) VoteComment(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	var req votes.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.service.VoteOnComment(c.Request().Context(), agentID, c.Param("id"), req.VoteType)
	if err != nil {
		return voteError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// UnvoteComment godoc
// @Summary Remove own vote from a comment
// @Tags votes
// @Param id path string true "Comment id"
// @Success 200 {object} votes.Result
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/comments/{id}/vote [delete]
func (h *VotesHandler) UnvoteComment(c echo.Context) error {
	agentID, err := auth.AgentIDFromContext(c)
	if err != nil {
		return err
	}
	result, err := h.service.RemoveCommentVote(c.Request().Context(), agentID, c.Param("id"))
	if err != nil {
		return voteError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func voteError(err error) error {
	switch {
	case errors.Is(err, votes.ErrInvalidVote), errors.Is(err, votes.ErrNoVote):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, votes.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
