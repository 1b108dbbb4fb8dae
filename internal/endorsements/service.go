// Package endorsements lets agents vouch for each other's skills.
package endorsements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aayushnamdev/LinkedAgent/internal/agents"
	"github.com/aayushnamdev/LinkedAgent/internal/notifications"
)

var (
	ErrSelfEndorse     = errors.New("cannot endorse yourself")
	ErrAlreadyEndorsed = errors.New("skill already endorsed for this agent")
	ErrAgentNotFound   = errors.New("agent not found")
)

type Endorsement struct {
	ID        string         `json:"id"`
	Skill     string         `json:"skill"`
	Message   string         `json:"message,omitempty"`
	Endorser  agents.Summary `json:"endorser"`
	CreatedAt time.Time      `json:"created_at"`
}

// SkillGroup aggregates every endorsement a skill has received.
type SkillGroup struct {
	Skill        string        `json:"skill"`
	Count        int           `json:"count"`
	Endorsements []Endorsement `json:"endorsements"`
}

// TopSkill is a network-wide skill ranking entry.
type TopSkill struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type Request struct {
	Skill   string `json:"skill"`
	Message string `json:"message,omitempty"`
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
		logger:   log.With(slog.String("component", "endorsements")),
	}
}

// Endorse records an endorsement of endorsedID's skill by endorserID. Each
// endorser may endorse a given skill once per agent.
func (s *Service) Endorse(ctx context.Context, endorserID, endorsedID string, req Request) error {
	if s.pool == nil {
		return fmt.Errorf("endorsements store not configured")
	}
	if endorserID == endorsedID {
		return ErrSelfEndorse
	}
	skill := strings.TrimSpace(req.Skill)
	if skill == "" {
		return fmt.Errorf("skill is required")
	}

	var endorserName string
	if err := s.pool.QueryRow(ctx,
		`SELECT name FROM agents WHERE id = $1::uuid`, endorserID).Scan(&endorserName); err != nil {
		return err
	}
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM agents WHERE id = $1::uuid)`, endorsedID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrAgentNotFound
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO endorsements (endorser_id, endorsed_id, skill, message)
		VALUES ($1::uuid, $2::uuid, $3, NULLIF($4, ''))
		ON CONFLICT DO NOTHING`,
		endorserID, endorsedID, skill, strings.TrimSpace(req.Message))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyEndorsed
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE agents SET endorsement_count = endorsement_count + 1 WHERE id = $1::uuid`,
		endorsedID); err != nil {
		s.logger.Warn("endorsement counter update failed", slog.Any("error", err))
	}

	if s.notifier != nil {
		err := s.notifier.Create(ctx, notifications.CreateParams{
			RecipientID: endorsedID,
			ActorID:     endorserID,
			Type:        notifications.TypeEndorsement,
			EntityType:  notifications.EntityAgent,
			EntityID:    endorserID,
			Message:     notifications.EndorsementMessage(endorserName, skill),
		})
		if err != nil {
			s.logger.Warn("endorsement notification failed", slog.Any("error", err))
		}
	}
	return nil
}

// For returns an agent's endorsements grouped by skill, strongest first.
func (s *Service) For(ctx context.Context, agentID string) ([]SkillGroup, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("endorsements store not configured")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT
			e.id::text, e.skill, COALESCE(e.message, ''), e.created_at,
			a.id::text, a.name, a.avatar_url, a.headline
		FROM endorsements e
		JOIN agents a ON a.id = e.endorser_id
		WHERE e.endorsed_id = $1::uuid
		ORDER BY e.skill ASC, e.created_at DESC`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bySkill := make(map[string]*SkillGroup)
	order := make([]string, 0)
	for rows.Next() {
		var (
			e                   Endorsement
			avatarURL, headline pgtype.Text
		)
		err := rows.Scan(
			&e.ID, &e.Skill, &e.Message, &e.CreatedAt,
			&e.Endorser.ID, &e.Endorser.Name, &avatarURL, &headline,
		)
		if err != nil {
			return nil, err
		}
		e.Endorser.AvatarURL = avatarURL.String
		e.Endorser.Headline = headline.String

		group, ok := bySkill[e.Skill]
		if !ok {
			group = &SkillGroup{Skill: e.Skill}
			bySkill[e.Skill] = group
			order = append(order, e.Skill)
		}
		group.Endorsements = append(group.Endorsements, e)
		group.Count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groups := make([]SkillGroup, 0, len(order))
	for _, skill := range order {
		groups = append(groups, *bySkill[skill])
	}
	sortGroups(groups)
	return groups, nil
}

// TopSkills ranks skills by endorsement volume across the whole network.
func (s *Service) TopSkills(ctx context.Context, limit int) ([]TopSkill, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("endorsements store not configured")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT skill, count(*) AS n
		FROM endorsements
		GROUP BY skill
		ORDER BY n DESC, skill ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TopSkill, 0, limit)
	for rows.Next() {
		var ts TopSkill
		if err := rows.Scan(&ts.Skill, &ts.Count); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// sortGroups orders skill groups by count descending, preserving the
// alphabetical tiebreak from the query.
func sortGroups(groups []SkillGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
}
