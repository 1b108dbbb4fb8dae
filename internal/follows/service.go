// Package follows maintains the directed follow graph between agents.
package follows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aayushnamdev/LinkedAgent/internal/agents"
	"github.com/aayushnamdev/LinkedAgent/internal/notifications"
)

var (
	ErrSelfFollow     = errors.New("cannot follow yourself")
	ErrAlreadyFollows = errors.New("already following this agent")
	ErrNotFollowing   = errors.New("not following this agent")
	ErrAgentNotFound  = errors.New("agent not found")
)

type Stats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

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
		logger:   log.With(slog.String("component", "follows")),
	}
}

// Follow records followerID following followedID and notifies the followed
// agent. Following yourself or following twice is rejected.
func (s *Service) Follow(ctx context.Context, followerID, followedID string) error {
	if s.pool == nil {
		return fmt.Errorf("follows store not configured")
	}
	if followerID == followedID {
		return ErrSelfFollow
	}

	var followerName string
	err := s.pool.QueryRow(ctx,
		`SELECT name FROM agents WHERE id = $1::uuid`, followerID).Scan(&followerName)
	if err != nil {
		return err
	}
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM agents WHERE id = $1::uuid)`, followedID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrAgentNotFound
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1::uuid, $2::uuid)
		ON CONFLICT DO NOTHING`, followerID, followedID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyFollows
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE agents SET follower_count = follower_count + 1 WHERE id = $1::uuid`, followedID); err != nil {
		s.logger.Warn("follower counter update failed", slog.Any("error", err))
	}

	if s.notifier != nil {
		err := s.notifier.Create(ctx, notifications.CreateParams{
			RecipientID: followedID,
			ActorID:     followerID,
			Type:        notifications.TypeFollow,
			EntityType:  notifications.EntityAgent,
			EntityID:    followerID,
			Message:     notifications.FollowMessage(followerName),
		})
		if err != nil {
			s.logger.Warn("follow notification failed", slog.Any("error", err))
		}
	}
	return nil
}

// Unfollow removes the follow edge.
func (s *Service) Unfollow(ctx context.Context, followerID, followedID string) error {
	if s.pool == nil {
		return fmt.Errorf("follows store not configured")
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1::uuid AND followed_id = $2::uuid`,
		followerID, followedID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFollowing
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE agents SET follower_count = GREATEST(follower_count - 1, 0) WHERE id = $1::uuid`,
		followedID); err != nil {
		s.logger.Warn("follower counter update failed", slog.Any("error", err))
	}
	return nil
}

// Followers lists agents following the given agent, newest first.
func (s *Service) Followers(ctx context.Context, agentID string) ([]agents.Summary, error) {
	return s.edgeSummaries(ctx, `
		SELECT a.id::text, a.name, a.avatar_url, a.headline
		FROM follows f
		JOIN agents a ON a.id = f.follower_id
		WHERE f.followed_id = $1::uuid
		ORDER BY f.created_at DESC`, agentID)
}

// Following lists agents the given agent follows, newest first.
func (s *Service) Following(ctx context.Context, agentID string) ([]agents.Summary, error) {
	return s.edgeSummaries(ctx, `
		SELECT a.id::text, a.name, a.avatar_url, a.headline
		FROM follows f
		JOIN agents a ON a.id = f.followed_id
		WHERE f.follower_id = $1::uuid
		ORDER BY f.created_at DESC`, agentID)
}

// FollowingIDs returns the raw id set the agent follows. The feed uses it
// to pick whose posts belong in the timeline.
func (s *Service) FollowingIDs(ctx context.Context, agentID string) ([]string, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("follows store not configured")
	}
	rows, err := s.pool.Query(ctx,
		`SELECT followed_id::text FROM follows WHERE follower_id = $1::uuid`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsFollowing reports whether the edge follower -> followed exists.
func (s *Service) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	if s.pool == nil {
		return false, fmt.Errorf("follows store not configured")
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1::uuid AND followed_id = $2::uuid
		)`, followerID, followedID).Scan(&exists)
	return exists, err
}

// StatsFor returns follower and following counts for an agent.
func (s *Service) StatsFor(ctx context.Context, agentID string) (Stats, error) {
	if s.pool == nil {
		return Stats{}, fmt.Errorf("follows store not configured")
	}
	var stats Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM follows WHERE followed_id = $1::uuid),
			(SELECT count(*) FROM follows WHERE follower_id = $1::uuid)`,
		agentID).Scan(&stats.Followers, &stats.Following)
	return stats, err
}

func (s *Service) edgeSummaries(ctx context.Context, query, agentID string) ([]agents.Summary, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("follows store not configured")
	}
	rows, err := s.pool.Query(ctx, query, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]agents.Summary, 0)
	for rows.Next() {
		var (
			summary             agents.Summary
			avatarURL, headline pgtype.Text
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &avatarURL, &headline); err != nil {
			return nil, err
		}
		summary.AvatarURL = avatarURL.String
		summary.Headline = headline.String
		out = append(out, summary)
	}
	return out, rows.Err()
}
