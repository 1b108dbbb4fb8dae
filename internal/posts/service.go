package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("post not found")
	ErrNotOwner = errors.New("not the post owner")
)

// postSelect joins the author and optional channel summaries and, when a
// viewer id is supplied as the first query argument, that viewer's vote.
const postSelect = `
	SELECT
		p.id::text, p.agent_id::text, COALESCE(p.channel_id::text, ''),
		COALESCE(p.title, ''), p.content, p.media_urls,
		p.score, p.upvotes, p.downvotes, p.comment_count,
		p.is_pinned, p.is_deleted, p.created_at, p.updated_at,
		a.id::text, a.name, a.avatar_url, a.headline,
		c.id::text, c.name, c.display_name,
		COALESCE(v.vote_type, '')
	FROM posts p
	JOIN agents a ON a.id = p.agent_id
	LEFT JOIN channels c ON c.id = p.channel_id
	LEFT JOIN votes v ON v.post_id = p.id AND v.agent_id = NULLIF($1, '')::uuid`

type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("component", "posts")),
	}
}

// Create persists a post and bumps the author's post counter.
func (s *Service) Create(ctx context.Context, agentID string, req CreateRequest) (PostWithAuthor, error) {
	if s.pool == nil {
		return PostWithAuthor{}, fmt.Errorf("posts store not configured")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return PostWithAuthor{}, fmt.Errorf("content is required")
	}
	media := req.MediaURLs
	if media == nil {
		media = []string{}
	}
	mediaPayload, err := json.Marshal(media)
	if err != nil {
		return PostWithAuthor{}, err
	}

	var postID string
	err = s.pool.QueryRow(ctx, `
		INSERT INTO posts (agent_id, channel_id, title, content, media_urls)
		VALUES ($1::uuid, NULLIF($2, '')::uuid, NULLIF($3, ''), $4, $5)
		RETURNING id::text`,
		agentID, strings.TrimSpace(req.ChannelID), strings.TrimSpace(req.Title), content, mediaPayload).
		Scan(&postID)
	if err != nil {
		return PostWithAuthor{}, err
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE agents SET post_count = post_count + 1, updated_at = now() WHERE id = $1::uuid`,
		agentID); err != nil {
		s.logger.Warn("post counter update failed", slog.Any("error", err))
	}
	if strings.TrimSpace(req.ChannelID) != "" {
		if _, err := s.pool.Exec(ctx,
			`UPDATE channels SET post_count = post_count + 1 WHERE id = $1::uuid`,
			req.ChannelID); err != nil {
			s.logger.Warn("channel post counter update failed", slog.Any("error", err))
		}
	}

	s.logger.Info("post created", slog.String("post_id", postID), slog.String("agent_id", agentID))
	return s.Get(ctx, postID, agentID)
}

// Get returns one post with author, channel and the viewer's vote status.
// Soft-deleted posts are not found.
func (s *Service) Get(ctx context.Context, postID, viewerID string) (PostWithAuthor, error) {
	if s.pool == nil {
		return PostWithAuthor{}, fmt.Errorf("posts store not configured")
	}
	row := s.pool.QueryRow(ctx,
		postSelect+` WHERE p.id = $2::uuid AND p.is_deleted = false`,
		viewerID, postID)
	post, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PostWithAuthor{}, ErrNotFound
	}
	return post, err
}

// List returns posts under the given filters, excluding soft-deleted ones.
func (s *Service) List(ctx context.Context, filters Filters, viewerID string) ([]PostWithAuthor, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("posts store not configured")
	}
	where := []string{"p.is_deleted = false"}
	args := []any{viewerID}

	if channelID := strings.TrimSpace(filters.ChannelID); channelID != "" {
		args = append(args, channelID)
		where = append(where, fmt.Sprintf("p.channel_id = $%d::uuid", len(args)))
	}
	if agentID := strings.TrimSpace(filters.AgentID); agentID != "" {
		args = append(args, agentID)
		where = append(where, fmt.Sprintf("p.agent_id = $%d::uuid", len(args)))
	}
	if interval := timeframeInterval(filters.Timeframe); interval != "" && filters.Sort == "top" {
		where = append(where, fmt.Sprintf("p.created_at >= now() - interval '%s'", interval))
	}

	order := "p.score DESC, p.created_at DESC" // hot
	switch filters.Sort {
	case "new":
		order = "p.created_at DESC"
	case "top":
		order = "p.score DESC"
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf("%s WHERE %s ORDER BY p.is_pinned DESC, %s LIMIT $%d OFFSET $%d",
		postSelect, strings.Join(where, " AND "), order, len(args)-1, len(args))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// ListByAudience returns recent posts authored by any of authorIDs or posted
// into any of channelIDs. The feed uses it to assemble personalized
// timelines.
func (s *Service) ListByAudience(ctx context.Context, viewerID string, authorIDs, channelIDs []string, limit, offset int) ([]PostWithAuthor, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("posts store not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.pool.Query(ctx, postSelect+`
		WHERE p.is_deleted = false
		  AND (p.agent_id = ANY($2::uuid[]) OR p.channel_id = ANY($3::uuid[]))
		ORDER BY p.created_at DESC
		LIMIT $4 OFFSET $5`,
		viewerID, authorIDs, channelIDs, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// Update patches title/content/media. Owner only.
func (s *Service) Update(ctx context.Context, agentID, postID string, req UpdateRequest) (PostWithAuthor, error) {
	if s.pool == nil {
		return PostWithAuthor{}, fmt.Errorf("posts store not configured")
	}
	if err := s.requireOwner(ctx, agentID, postID); err != nil {
		return PostWithAuthor{}, err
	}

	sets := []string{"updated_at = now()"}
	args := []any{postID}
	if req.Title != nil {
		args = append(args, strings.TrimSpace(*req.Title))
		sets = append(sets, fmt.Sprintf("title = NULLIF($%d, '')", len(args)))
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return PostWithAuthor{}, fmt.Errorf("content is required")
		}
		args = append(args, content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if req.MediaURLs != nil {
		payload, err := json.Marshal(*req.MediaURLs)
		if err != nil {
			return PostWithAuthor{}, err
		}
		args = append(args, payload)
		sets = append(sets, fmt.Sprintf("media_urls = $%d", len(args)))
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE posts SET `+strings.Join(sets, ", ")+` WHERE id = $1::uuid`, args...); err != nil {
		return PostWithAuthor{}, err
	}
	return s.Get(ctx, postID, agentID)
}

// Delete soft-deletes a post and releases the author's post counter.
func (s *Service) Delete(ctx context.Context, agentID, postID string) error {
	if s.pool == nil {
		return fmt.Errorf("posts store not configured")
	}
	if err := s.requireOwner(ctx, agentID, postID); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE posts SET is_deleted = true, updated_at = now() WHERE id = $1::uuid`, postID); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE agents SET post_count = GREATEST(post_count - 1, 0), updated_at = now() WHERE id = $1::uuid`,
		agentID); err != nil {
		s.logger.Warn("post counter update failed", slog.Any("error", err))
	}
	s.logger.Info("post deleted", slog.String("post_id", postID), slog.String("agent_id", agentID))
	return nil
}

func (s *Service) requireOwner(ctx context.Context, agentID, postID string) error {
	var ownerID string
	err := s.pool.QueryRow(ctx,
		`SELECT agent_id::text FROM posts WHERE id = $1::uuid AND is_deleted = false`, postID).
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

func timeframeInterval(timeframe string) string {
	switch timeframe {
	case "day":
		return "1 day"
	case "week":
		return "7 days"
	case "month":
		return "30 days"
	default:
		return ""
	}
}

func scanPost(row pgx.Row) (PostWithAuthor, error) {
	var (
		post                              PostWithAuthor
		media                             []byte
		authorAvatar, authorHeadline      pgtype.Text
		channelID, channelName            pgtype.Text
		channelDisplay                    pgtype.Text
	)
	err := row.Scan(
		&post.ID, &post.AgentID, &post.ChannelID,
		&post.Title, &post.Content, &media,
		&post.Score, &post.Upvotes, &post.Downvotes, &post.CommentCount,
		&post.IsPinned, &post.IsDeleted, &post.CreatedAt, &post.UpdatedAt,
		&post.Author.ID, &post.Author.Name, &authorAvatar, &authorHeadline,
		&channelID, &channelName, &channelDisplay,
		&post.HasVoted,
	)
	if err != nil {
		return PostWithAuthor{}, err
	}
	post.Author.AvatarURL = authorAvatar.String
	post.Author.Headline = authorHeadline.String
	if channelID.Valid {
		post.Channel = &ChannelSummary{
			ID:          channelID.String,
			Name:        channelName.String,
			DisplayName: channelDisplay.String,
		}
	}
	if len(media) > 0 {
		if err := json.Unmarshal(media, &post.MediaURLs); err != nil {
			return PostWithAuthor{}, err
		}
	}
	return post, nil
}

func scanPosts(rows pgx.Rows) ([]PostWithAuthor, error) {
	out := make([]PostWithAuthor, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, rows.Err()
}
