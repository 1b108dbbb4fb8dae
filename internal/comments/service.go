package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aayushnamdev/LinkedAgent/internal/notifications"
)

var (
	ErrNotFound     = errors.New("comment not found")
	ErrPostNotFound = errors.New("post not found")
	ErrNotOwner     = errors.New("not the comment owner")
)

const commentSelect = `
	SELECT
		c.id::text, c.post_id::text, c.agent_id::text, COALESCE(c.parent_id::text, ''),
		c.content, c.upvotes, c.downvotes, c.score, c.is_deleted,
		c.created_at, c.updated_at,
		a.id::text, a.name, a.avatar_url, a.headline,
		COALESCE(v.vote_type, '')
	FROM comments c
	JOIN agents a ON a.id = c.agent_id
	LEFT JOIN votes v ON v.comment_id = c.id AND v.agent_id = NULLIF($1, '')::uuid`

type Notifier interface {
	Create(ctx context.Context, params notifications.CreateParams) error
}

type Service struct {
	pool     *pgxpool.Pool
	notifier Notifier
	logger   *slog.Logger
}

func NewService(log *slog.Logger, pool *pgxpool.Pool, notifier Notifier) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:     pool,
		notifier: notifier,
		logger:   log.With(slog.String("component", "comments")),
	}
}

// Create persists a comment or reply, bumps the post's comment counter and
// notifies the post owner (or, for a reply, the parent comment's owner).
func (s *Service) Create(ctx context.Context, agentID string, req CreateRequest) (CommentWithAuthor, error) {
	if s.pool == nil {
		return CommentWithAuthor{}, fmt.Errorf("comments store not configured")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return CommentWithAuthor{}, fmt.Errorf("content is required")
	}

	var postOwnerID string
	err := s.pool.QueryRow(ctx,
		`SELECT agent_id::text FROM posts WHERE id = $1::uuid AND is_deleted = false`, req.PostID).
		Scan(&postOwnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return CommentWithAuthor{}, ErrPostNotFound
	}
	if err != nil {
		return CommentWithAuthor{}, err
	}

	parentID := strings.TrimSpace(req.ParentID)
	var parentOwnerID string
	if parentID != "" {
		err := s.pool.QueryRow(ctx, `
			SELECT agent_id::text FROM comments
			WHERE id = $1::uuid AND post_id = $2::uuid AND is_deleted = false`,
			parentID, req.PostID).Scan(&parentOwnerID)
		if errors.Is(err, pgx.ErrNoRows) {
			return CommentWithAuthor{}, fmt.Errorf("parent comment not found on this post")
		}
		if err != nil {
			return CommentWithAuthor{}, err
		}
	}

	var commentID string
	err = s.pool.QueryRow(ctx, `
		INSERT INTO comments (post_id, agent_id, parent_id, content)
		VALUES ($1::uuid, $2::uuid, NULLIF($3, '')::uuid, $4)
		RETURNING id::text`,
		req.PostID, agentID, parentID, content).Scan(&commentID)
	if err != nil {
		return CommentWithAuthor{}, err
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE posts SET comment_count = comment_count + 1, updated_at = now() WHERE id = $1::uuid`,
		req.PostID); err != nil {
		s.logger.Warn("comment counter update failed", slog.Any("error", err))
	}

	comment, err := s.Get(ctx, commentID, agentID)
	if err != nil {
		return CommentWithAuthor{}, err
	}
	s.notifyCreated(ctx, comment, postOwnerID, parentOwnerID)
	return comment, nil
}

func (s *Service) notifyCreated(ctx context.Context, comment CommentWithAuthor, postOwnerID, parentOwnerID string) {
	if s.notifier == nil {
		return
	}
	params := notifications.CreateParams{
		ActorID:    comment.AgentID,
		EntityType: notifications.EntityComment,
		EntityID:   comment.ID,
	}
	if parentOwnerID != "" {
		params.RecipientID = parentOwnerID
		params.Type = notifications.TypeReply
		params.Message = notifications.ReplyMessage(comment.Author.Name)
	} else {
		params.RecipientID = postOwnerID
		params.Type = notifications.TypeComment
		params.Message = notifications.CommentMessage(comment.Author.Name)
	}
	if err := s.notifier.Create(ctx, params); err != nil {
		s.logger.Warn("comment notification failed", slog.Any("error", err))
	}
}

// Get returns one comment with author and viewer vote status.
func (s *Service) Get(ctx context.Context, commentID, viewerID string) (CommentWithAuthor, error) {
	if s.pool == nil {
		return CommentWithAuthor{}, fmt.Errorf("comments store not configured")
	}
	row := s.pool.QueryRow(ctx,
		commentSelect+` WHERE c.id = $2::uuid AND c.is_deleted = false`,
		viewerID, commentID)
	comment, err := scanComment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CommentWithAuthor{}, ErrNotFound
	}
	return comment, err
}

// ListForPost returns the post's comments threaded by parent, oldest first.
func (s *Service) ListForPost(ctx context.Context, postID, viewerID string) ([]*CommentWithAuthor, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("comments store not configured")
	}
	rows, err := s.pool.Query(ctx,
		commentSelect+` WHERE c.post_id = $2::uuid AND c.is_deleted = false ORDER BY c.created_at ASC`,
		viewerID, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flat := make([]*CommentWithAuthor, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		flat = append(flat, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return thread(flat), nil
}

// Update replaces the comment body. Owner only.
func (s *Service) Update(ctx context.Context, agentID, commentID string, req UpdateRequest) (CommentWithAuthor, error) {
	if s.pool == nil {
		return CommentWithAuthor{}, fmt.Errorf("comments store not configured")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return CommentWithAuthor{}, fmt.Errorf("content is required")
	}
	if err := s.requireOwner(ctx, agentID, commentID); err != nil {
		return CommentWithAuthor{}, err
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE comments SET content = $2, updated_at = now() WHERE id = $1::uuid`,
		commentID, content); err != nil {
		return CommentWithAuthor{}, err
	}
	return s.Get(ctx, commentID, agentID)
}

// Delete soft-deletes a comment and releases the post's comment counter.
func (s *Service) Delete(ctx context.Context, agentID, commentID string) error {
	if s.pool == nil {
		return fmt.Errorf("comments store not configured")
	}
	if err := s.requireOwner(ctx, agentID, commentID); err != nil {
		return err
	}
	var postID string
	if err := s.pool.QueryRow(ctx, `
		UPDATE comments SET is_deleted = true, updated_at = now()
		WHERE id = $1::uuid
		RETURNING post_id::text`, commentID).Scan(&postID); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE posts SET comment_count = GREATEST(comment_count - 1, 0), updated_at = now() WHERE id = $1::uuid`,
		postID); err != nil {
		s.logger.Warn("comment counter update failed", slog.Any("error", err))
	}
	return nil
}

func (s *Service) requireOwner(ctx context.Context, agentID, commentID string) error {
	var ownerID string
	err := s.pool.QueryRow(ctx,
		`SELECT agent_id::text FROM comments WHERE id = $1::uuid AND is_deleted = false`, commentID).
		Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != agentID {
		return ErrNotOwner
	}
	return nil
}

// thread arranges a flat, chronologically ordered slice into reply trees.
// Replies whose parent is gone (deleted) surface at the top level rather
// than disappearing with it.
func thread(flat []*CommentWithAuthor) []*CommentWithAuthor {
	byID := make(map[string]*CommentWithAuthor, len(flat))
	for _, comment := range flat {
		comment.Replies = []*CommentWithAuthor{}
		byID[comment.ID] = comment
	}
	roots := make([]*CommentWithAuthor, 0, len(flat))
	for _, comment := range flat {
		if comment.ParentID != "" {
			if parent, ok := byID[comment.ParentID]; ok {
				parent.Replies = append(parent.Replies, comment)
				continue
			}
		}
		roots = append(roots, comment)
	}
	return roots
}

func scanComment(row pgx.Row) (CommentWithAuthor, error) {
	var (
		comment             CommentWithAuthor
		avatarURL, headline pgtype.Text
	)
	err := row.Scan(
		&comment.ID, &comment.PostID, &comment.AgentID, &comment.ParentID,
		&comment.Content, &comment.Upvotes, &comment.Downvotes, &comment.Score, &comment.IsDeleted,
		&comment.CreatedAt, &comment.UpdatedAt,
		&comment.Author.ID, &comment.Author.Name, &avatarURL, &headline,
		&comment.HasVoted,
	)
	if err != nil {
		return CommentWithAuthor{}, err
	}
	comment.Author.AvatarURL = avatarURL.String
	comment.Author.Headline = headline.String
	comment.Replies = []*CommentWithAuthor{}
	return comment, nil
}
