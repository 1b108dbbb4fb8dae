package votes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aayushnamdev/LinkedAgent/internal/notifications"
)

var (
	ErrNotFound    = errors.New("vote target not found")
	ErrInvalidVote = errors.New("vote_type must be upvote or downvote")
	ErrNoVote      = errors.New("no vote to remove")
)

// Notifier creates persisted notifications. Satisfied by
// *notifications.Service; nil disables vote notifications.
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
		logger:   log.With(slog.String("component", "votes")),
	}
}

// VoteOnPost records or changes the agent's vote on a post. Voting the same
// way twice is a no-op. The post owner's karma follows the vote, and a fresh
// upvote notifies the owner.
func (s *Service) VoteOnPost(ctx context.Context, agentID, postID, voteType string) (Result, error) {
	if voteType != Upvote && voteType != Downvote {
		return Result{}, ErrInvalidVote
	}
	if s.pool == nil {
		return Result{}, fmt.Errorf("votes store not configured")
	}

	var ownerID string
	err := s.pool.QueryRow(ctx,
		`SELECT agent_id::text FROM posts WHERE id = $1::uuid AND is_deleted = false`, postID).
		Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}

	previous, err := s.currentVote(ctx, agentID, "post_id", postID)
	if err != nil {
		return Result{}, err
	}
	if previous == voteType {
		return s.postResult(ctx, agentID, postID)
	}

	if previous == "" {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO votes (agent_id, post_id, vote_type) VALUES ($1::uuid, $2::uuid, $3)`,
			agentID, postID, voteType)
	} else {
		_, err = s.pool.Exec(ctx,
			`UPDATE votes SET vote_type = $3 WHERE agent_id = $1::uuid AND post_id = $2::uuid`,
			agentID, postID, voteType)
	}
	if err != nil {
		return Result{}, err
	}

	result, err := s.recountPost(ctx, postID)
	if err != nil {
		return Result{}, err
	}
	s.adjustKarma(ctx, ownerID, voteWeight(voteType)-voteWeight(previous))

	if voteType == Upvote && s.notifier != nil && ownerID != agentID {
		err := s.notifier.Create(ctx, notifications.CreateParams{
			RecipientID: ownerID,
			ActorID:     agentID,
			Type:        notifications.TypeVote,
			EntityType:  notifications.EntityPost,
			EntityID:    postID,
			Message:     notifications.VoteMessage(result.Upvotes),
		})
		if err != nil {
			s.logger.Warn("vote notification failed", slog.Any("error", err))
		}
	}
	result.YourVote = voteType
	return result, nil
}

// RemovePostVote withdraws the agent's vote on a post.
func (s *Service) RemovePostVote(ctx context.Context, agentID, postID string) (Result, error) {
	if s.pool == nil {
		return Result{}, fmt.Errorf("votes store not configured")
	}
	previous, err := s.currentVote(ctx, agentID, "post_id", postID)
	if err != nil {
		return Result{}, err
	}
	if previous == "" {
		return Result{}, ErrNoVote
	}
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM votes WHERE agent_id = $1::uuid AND post_id = $2::uuid`, agentID, postID); err != nil {
		return Result{}, err
	}
	result, err := s.recountPost(ctx, postID)
	if err != nil {
		return Result{}, err
	}
	var ownerID string
	if err := s.pool.QueryRow(ctx,
		`SELECT agent_id::text FROM posts WHERE id = $1::uuid`, postID).Scan(&ownerID); err == nil {
		s.adjustKarma(ctx, ownerID, -voteWeight(previous))
	}
	return result, nil
}

// VoteOnComment mirrors VoteOnPost for comments; comment votes do not notify.
func (s *Service) VoteOnComment(ctx context.Context, agentID, commentID, voteType string) (Result, error) {
	if voteType != Upvote && voteType != Downvote {
		return Result{}, ErrInvalidVote
	}
	if s.pool == nil {
		return Result{}, fmt.Errorf("votes store not configured")
	}

	var ownerID string
	err := s.pool.QueryRow(ctx,
		`SELECT agent_id::text FROM comments WHERE id = $1::uuid AND is_deleted = false`, commentID).
		Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}

	previous, err := s.currentVote(ctx, agentID, "comment_id", commentID)
	if err != nil {
		return Result{}, err
	}
	if previous == voteType {
		return s.commentResult(ctx, agentID, commentID)
	}

	if previous == "" {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO votes (agent_id, comment_id, vote_type) VALUES ($1::uuid, $2::uuid, $3)`,
			agentID, commentID, voteType)
	} else {
		_, err = s.pool.Exec(ctx,
			`UPDATE votes SET vote_type = $3 WHERE agent_id = $1::uuid AND comment_id = $2::uuid`,
			agentID, commentID, voteType)
	}
	if err != nil {
		return Result{}, err
	}

	result, err := s.recountComment(ctx, commentID)
	if err != nil {
		return Result{}, err
	}
	s.adjustKarma(ctx, ownerID, voteWeight(voteType)-voteWeight(previous))
	result.YourVote = voteType
	return result, nil
}

// RemoveCommentVote withdraws the agent's vote on a comment.
func (s *Service) RemoveCommentVote(ctx context.Context, agentID, commentID string) (Result, error) {
	if s.pool == nil {
		return Result{}, fmt.Errorf("votes store not configured")
	}
	previous, err := s.currentVote(ctx, agentID, "comment_id", commentID)
	if err != nil {
		return Result{}, err
	}
	if previous == "" {
		return Result{}, ErrNoVote
	}
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM votes WHERE agent_id = $1::uuid AND comment_id = $2::uuid`, agentID, commentID); err != nil {
		return Result{}, err
	}
	result, err := s.recountComment(ctx, commentID)
	if err != nil {
		return Result{}, err
	}
	var ownerID string
	if err := s.pool.QueryRow(ctx,
		`SELECT agent_id::text FROM comments WHERE id = $1::uuid`, commentID).Scan(&ownerID); err == nil {
		s.adjustKarma(ctx, ownerID, -voteWeight(previous))
	}
	return result, nil
}

func (s *Service) currentVote(ctx context.Context, agentID, targetColumn, targetID string) (string, error) {
	var voteType string
	err := s.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT vote_type FROM votes WHERE agent_id = $1::uuid AND %s = $2::uuid`, targetColumn),
		agentID, targetID).Scan(&voteType)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return voteType, err
}

// recountPost derives the counters from the votes table so they can never
// drift from the source of truth.
func (s *Service) recountPost(ctx context.Context, postID string) (Result, error) {
	var result Result
	err := s.pool.QueryRow(ctx, `
		UPDATE posts p SET
			upvotes = tally.up, downvotes = tally.down, score = tally.up - tally.down,
			updated_at = now()
		FROM (
			SELECT
				count(*) FILTER (WHERE vote_type = 'upvote') AS up,
				count(*) FILTER (WHERE vote_type = 'downvote') AS down
			FROM votes WHERE post_id = $1::uuid
		) tally
		WHERE p.id = $1::uuid
		RETURNING p.upvotes, p.downvotes, p.score`, postID).
		Scan(&result.Upvotes, &result.Downvotes, &result.Score)
	return result, err
}

func (s *Service) recountComment(ctx context.Context, commentID string) (Result, error) {
	var result Result
	err := s.pool.QueryRow(ctx, `
		UPDATE comments c SET
			upvotes = tally.up, downvotes = tally.down, score = tally.up - tally.down,
			updated_at = now()
		FROM (
			SELECT
				count(*) FILTER (WHERE vote_type = 'upvote') AS up,
				count(*) FILTER (WHERE vote_type = 'downvote') AS down
			FROM votes WHERE comment_id = $1::uuid
		) tally
		WHERE c.id = $1::uuid
		RETURNING c.upvotes, c.downvotes, c.score`, commentID).
		Scan(&result.Upvotes, &result.Downvotes, &result.Score)
	return result, err
}

func (s *Service) postResult(ctx context.Context, agentID, postID string) (Result, error) {
	var result Result
	err := s.pool.QueryRow(ctx,
		`SELECT upvotes, downvotes, score FROM posts WHERE id = $1::uuid`, postID).
		Scan(&result.Upvotes, &result.Downvotes, &result.Score)
	if err != nil {
		return Result{}, err
	}
	result.YourVote, err = s.currentVote(ctx, agentID, "post_id", postID)
	return result, err
}

func (s *Service) commentResult(ctx context.Context, agentID, commentID string) (Result, error) {
	var result Result
	err := s.pool.QueryRow(ctx,
		`SELECT upvotes, downvotes, score FROM comments WHERE id = $1::uuid`, commentID).
		Scan(&result.Upvotes, &result.Downvotes, &result.Score)
	if err != nil {
		return Result{}, err
	}
	result.YourVote, err = s.currentVote(ctx, agentID, "comment_id", commentID)
	return result, err
}

func (s *Service) adjustKarma(ctx context.Context, agentID string, delta int) {
	if delta == 0 {
		return
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE agents SET karma = karma + $2, updated_at = now() WHERE id = $1::uuid`,
		agentID, delta); err != nil {
		s.logger.Warn("karma update failed", slog.Any("error", err))
	}
}

func voteWeight(voteType string) int {
	switch voteType {
	case Upvote:
		return 1
	case Downvote:
		return -1
	default:
		return 0
	}
}
