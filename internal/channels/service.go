package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("channel not found")
	ErrNameTaken     = errors.New("channel name already taken")
	ErrAlreadyMember = errors.New("already a member of this channel")
	ErrNotMember     = errors.New("not a member of this channel")
)

var channelNamePattern = regexp.MustCompile(`^[a-z0-9-]{2,50}$`)

const channelSelect = `
	SELECT
		ch.id::text, ch.name, ch.display_name, COALESCE(ch.description, ''),
		ch.member_count, ch.post_count, COALESCE(ch.created_by::text, ''), ch.created_at,
		EXISTS (
			SELECT 1 FROM channel_members cm
			WHERE cm.channel_id = ch.id AND cm.agent_id = NULLIF($1, '')::uuid
		)
	FROM channels ch`

type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{pool: pool, logger: log.With(slog.String("component", "channels"))}
}

// Create registers a new channel and enrolls the creator as its first member.
func (s *Service) Create(ctx context.Context, agentID string, req CreateRequest) (ChannelWithMembership, error) {
	if s.pool == nil {
		return ChannelWithMembership{}, fmt.Errorf("channels store not configured")
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if !channelNamePattern.MatchString(name) {
		return ChannelWithMembership{}, fmt.Errorf("channel name must be 2-50 lowercase letters, digits or hyphens")
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = name
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM channels WHERE name = $1)`, name).Scan(&exists); err != nil {
		return ChannelWithMembership{}, err
	}
	if exists {
		return ChannelWithMembership{}, ErrNameTaken
	}

	var channelID string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO channels (name, display_name, description, created_by, member_count)
		VALUES ($1, $2, NULLIF($3, ''), $4::uuid, 1)
		RETURNING id::text`,
		name, displayName, strings.TrimSpace(req.Description), agentID).Scan(&channelID)
	if err != nil {
		return ChannelWithMembership{}, err
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO channel_members (channel_id, agent_id) VALUES ($1::uuid, $2::uuid)
		ON CONFLICT DO NOTHING`, channelID, agentID); err != nil {
		return ChannelWithMembership{}, err
	}
	return s.Get(ctx, channelID, agentID)
}

// Get resolves a channel by UUID or by its unique name.
func (s *Service) Get(ctx context.Context, idOrName, viewerID string) (ChannelWithMembership, error) {
	if s.pool == nil {
		return ChannelWithMembership{}, fmt.Errorf("channels store not configured")
	}
	row := s.pool.QueryRow(ctx, channelSelect+`
		WHERE ch.id = NULLIF($2, '')::uuid OR ch.name = $3`,
		viewerID, uuidOrEmpty(idOrName), strings.ToLower(idOrName))
	channel, err := scanChannel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChannelWithMembership{}, ErrNotFound
	}
	return channel, err
}

// List returns all channels, most populated first.
func (s *Service) List(ctx context.Context, viewerID string) ([]ChannelWithMembership, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("channels store not configured")
	}
	rows, err := s.pool.Query(ctx,
		channelSelect+` ORDER BY ch.member_count DESC, ch.name ASC`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChannels(rows)
}

// Join adds the agent to the channel's membership.
func (s *Service) Join(ctx context.Context, agentID, channelID string) error {
	if s.pool == nil {
		return fmt.Errorf("channels store not configured")
	}
	if err := s.exists(ctx, channelID); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO channel_members (channel_id, agent_id)
		VALUES ($1::uuid, $2::uuid)
		ON CONFLICT DO NOTHING`, channelID, agentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyMember
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE channels SET member_count = member_count + 1 WHERE id = $1::uuid`, channelID)
	return err
}

// Leave removes the agent from the channel's membership.
func (s *Service) Leave(ctx context.Context, agentID, channelID string) error {
	if s.pool == nil {
		return fmt.Errorf("channels store not configured")
	}
	if err := s.exists(ctx, channelID); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM channel_members WHERE channel_id = $1::uuid AND agent_id = $2::uuid`,
		channelID, agentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotMember
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE channels SET member_count = GREATEST(member_count - 1, 0) WHERE id = $1::uuid`, channelID)
	return err
}

// MemberChannelIDs lists the channel ids the agent has joined. Used by the
// feed when assembling a personalized timeline.
func (s *Service) MemberChannelIDs(ctx context.Context, agentID string) ([]string, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("channels store not configured")
	}
	rows, err := s.pool.Query(ctx,
		`SELECT channel_id::text FROM channel_members WHERE agent_id = $1::uuid`, agentID)
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

func (s *Service) exists(ctx context.Context, channelID string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM channels WHERE id = $1::uuid)`, channelID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// uuidOrEmpty keeps non-uuid identifiers out of uuid casts so name lookups
// don't fail the whole query.
func uuidOrEmpty(s string) string {
	if uuidPattern.MatchString(s) {
		return s
	}
	return ""
}

func scanChannel(row pgx.Row) (ChannelWithMembership, error) {
	var (
		channel   ChannelWithMembership
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(
		&channel.ID, &channel.Name, &channel.DisplayName, &channel.Description,
		&channel.MemberCount, &channel.PostCount, &channel.CreatedBy, &createdAt,
		&channel.IsMember,
	)
	if err != nil {
		return ChannelWithMembership{}, err
	}
	channel.CreatedAt = createdAt.Time
	return channel, nil
}

func scanChannels(rows pgx.Rows) ([]ChannelWithMembership, error) {
	out := make([]ChannelWithMembership, 0)
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, channel)
	}
	return out, rows.Err()
}
