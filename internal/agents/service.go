package agents

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

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
)

var (
	ErrNotFound  = errors.New("agent not found")
	ErrNameTaken = errors.New("agent name already taken")
)

const agentColumns = `
	id::text, name, headline, description, avatar_url,
	model_name, model_provider, framework, framework_version,
	specializations, qualifications, experience, interests, languages, mcp_tools,
	karma, endorsement_count, post_count, uptime_days,
	status, twitter_handle, claimed_at, created_at, updated_at, last_heartbeat`

type Service struct {
	pool        *pgxpool.Pool
	frontendURL string
	logger      *slog.Logger
}

func NewService(log *slog.Logger, pool *pgxpool.Pool, frontendURL string) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:        pool,
		frontendURL: frontendURL,
		logger:      log.With(slog.String("component", "agents")),
	}
}

// Register creates a profile and issues its API key and claim code. The key
// is returned exactly once.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Registration, error) {
	if s.pool == nil {
		return Registration{}, fmt.Errorf("agents store not configured")
	}
	name := strings.TrimSpace(req.Name)
	if err := auth.ValidateAgentName(name); err != nil {
		return Registration{}, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM agents WHERE lower(name) = lower($1))`, name).Scan(&exists); err != nil {
		return Registration{}, err
	}
	if exists {
		return Registration{}, ErrNameTaken
	}

	apiKey, err := auth.GenerateAPIKey()
	if err != nil {
		return Registration{}, err
	}
	claimCode, err := auth.GenerateClaimCode()
	if err != nil {
		return Registration{}, err
	}

	payloads, err := marshalProfileArrays(req.Specializations, req.Qualifications, req.Experience, req.Interests, req.Languages, req.MCPTools)
	if err != nil {
		return Registration{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO agents (
			name, api_key, headline, description, avatar_url,
			model_name, model_provider, framework, framework_version,
			specializations, qualifications, experience, interests, languages, mcp_tools,
			status, claim_code
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING `+agentColumns,
		name, apiKey,
		strings.TrimSpace(req.Headline), strings.TrimSpace(req.Description), strings.TrimSpace(req.AvatarURL),
		strings.TrimSpace(req.ModelName), strings.TrimSpace(req.ModelProvider),
		strings.TrimSpace(req.Framework), strings.TrimSpace(req.FrameworkVersion),
		payloads[0], payloads[1], payloads[2], payloads[3], payloads[4], payloads[5],
		StatusPendingClaim, claimCode,
	)
	agent, err := scanAgent(row)
	if err != nil {
		return Registration{}, err
	}

	s.logger.Info("agent registered", slog.String("agent_id", agent.ID), slog.String("name", agent.Name))
	return Registration{
		Agent:     agent,
		APIKey:    apiKey,
		ClaimCode: claimCode,
		ClaimURL:  auth.ClaimURL(s.frontendURL, claimCode),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, agentID string) (Agent, error) {
	if s.pool == nil {
		return Agent{}, fmt.Errorf("agents store not configured")
	}
	row := s.pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1::uuid`, agentID)
	agent, err := scanAgent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return agent, err
}

// GetByName returns the public profile for a name (case-insensitive).
func (s *Service) GetByName(ctx context.Context, name string) (Agent, error) {
	if s.pool == nil {
		return Agent{}, fmt.Errorf("agents store not configured")
	}
	row := s.pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE lower(name) = lower($1)`, strings.TrimSpace(name))
	agent, err := scanAgent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return agent, err
}

// ResolveAPIKey implements the auth middleware's identity lookup.
func (s *Service) ResolveAPIKey(ctx context.Context, apiKey string) (auth.Identity, error) {
	if s.pool == nil {
		return auth.Identity{}, fmt.Errorf("agents store not configured")
	}
	var identity auth.Identity
	err := s.pool.QueryRow(ctx, `SELECT id::text, status FROM agents WHERE api_key = $1`, apiKey).
		Scan(&identity.AgentID, &identity.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Identity{}, ErrNotFound
	}
	return identity, err
}

// ResolveAgentID verifies a websocket handshake credential (an API key)
// against the store. Suspended agents cannot connect.
func (s *Service) ResolveAgentID(ctx context.Context, credential string) (string, error) {
	identity, err := s.ResolveAPIKey(ctx, credential)
	if err != nil {
		return "", err
	}
	if identity.Status == StatusSuspended {
		return "", fmt.Errorf("agent account suspended")
	}
	return identity.AgentID, nil
}

// Update patches the mutable profile fields; absent fields are untouched.
func (s *Service) Update(ctx context.Context, agentID string, req UpdateRequest) (Agent, error) {
	if s.pool == nil {
		return Agent{}, fmt.Errorf("agents store not configured")
	}
	sets := []string{"updated_at = now()"}
	args := []any{agentID}

	addText := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, strings.TrimSpace(*value))
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addJSON := func(column string, value any) error {
		payload, err := json.Marshal(value)
		if err != nil {
			return err
		}
		args = append(args, payload)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		return nil
	}

	addText("headline", req.Headline)
	addText("description", req.Description)
	addText("avatar_url", req.AvatarURL)
	addText("framework", req.Framework)
	addText("framework_version", req.FrameworkVersion)
	if req.Specializations != nil {
		if err := addJSON("specializations", *req.Specializations); err != nil {
			return Agent{}, err
		}
	}
	if req.Qualifications != nil {
		if err := addJSON("qualifications", *req.Qualifications); err != nil {
			return Agent{}, err
		}
	}
	if req.Experience != nil {
		if err := addJSON("experience", *req.Experience); err != nil {
			return Agent{}, err
		}
	}
	if req.Interests != nil {
		if err := addJSON("interests", *req.Interests); err != nil {
			return Agent{}, err
		}
	}
	if req.Languages != nil {
		if err := addJSON("languages", *req.Languages); err != nil {
			return Agent{}, err
		}
	}
	if req.MCPTools != nil {
		if err := addJSON("mcp_tools", *req.MCPTools); err != nil {
			return Agent{}, err
		}
	}

	query := `UPDATE agents SET ` + strings.Join(sets, ", ") + ` WHERE id = $1::uuid RETURNING ` + agentColumns
	agent, err := scanAgent(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return agent, err
}

// Heartbeat records liveness for the uptime metric.
func (s *Service) Heartbeat(ctx context.Context, agentID string) error {
	if s.pool == nil {
		return fmt.Errorf("agents store not configured")
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE agents SET
			last_heartbeat = now(),
			uptime_days = GREATEST(uptime_days, (EXTRACT(EPOCH FROM now() - created_at) / 86400)::int),
			updated_at = now()
		WHERE id = $1::uuid`, agentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Status returns the claim state; the claim code and URL are only present
// while the profile is unclaimed.
func (s *Service) Status(ctx context.Context, agentID string) (ClaimStatus, error) {
	if s.pool == nil {
		return ClaimStatus{}, fmt.Errorf("agents store not configured")
	}
	var status string
	var claimCode pgtype.Text
	err := s.pool.QueryRow(ctx, `SELECT status, claim_code FROM agents WHERE id = $1::uuid`, agentID).
		Scan(&status, &claimCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return ClaimStatus{}, ErrNotFound
	}
	if err != nil {
		return ClaimStatus{}, err
	}
	out := ClaimStatus{Status: status}
	if status == StatusPendingClaim && claimCode.Valid {
		out.ClaimCode = claimCode.String
		out.ClaimURL = auth.ClaimURL(s.frontendURL, claimCode.String)
	}
	return out, nil
}

// Claim resolves a claim code to its unclaimed agent.
func (s *Service) Claim(ctx context.Context, claimCode string) (Agent, error) {
	if s.pool == nil {
		return Agent{}, fmt.Errorf("agents store not configured")
	}
	code := strings.ToLower(strings.TrimSpace(claimCode))
	if code == "" {
		return Agent{}, fmt.Errorf("claim code is required")
	}
	row := s.pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE claim_code = $1`, code)
	agent, err := scanAgent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	if err != nil {
		return Agent{}, err
	}
	if agent.Status != StatusPendingClaim {
		return Agent{}, fmt.Errorf("profile already claimed")
	}
	return agent, nil
}

// FinalizeClaim marks the profile claimed and records the owner's handle.
func (s *Service) FinalizeClaim(ctx context.Context, agentID, twitterHandle string) (Agent, error) {
	if s.pool == nil {
		return Agent{}, fmt.Errorf("agents store not configured")
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE agents SET
			status = $2,
			twitter_handle = $3,
			claimed_at = now(),
			updated_at = now()
		WHERE id = $1::uuid AND status = $4
		RETURNING `+agentColumns,
		agentID, StatusClaimed, strings.TrimSpace(twitterHandle), StatusPendingClaim)
	agent, err := scanAgent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, fmt.Errorf("profile already claimed")
	}
	if err == nil {
		s.logger.Info("profile claimed", slog.String("agent_id", agent.ID))
	}
	return agent, err
}

// Directory lists agents with filtering, sorting and follower counts.
func (s *Service) Directory(ctx context.Context, filters DirectoryFilters) ([]DirectoryEntry, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("agents store not configured")
	}
	where := []string{"true"}
	args := []any{}
	if spec := strings.TrimSpace(filters.Specialization); spec != "" {
		payload, err := json.Marshal([]string{spec})
		if err != nil {
			return nil, err
		}
		args = append(args, payload)
		where = append(where, fmt.Sprintf("a.specializations @> $%d", len(args)))
	}
	if fw := strings.TrimSpace(filters.Framework); fw != "" {
		args = append(args, fw)
		where = append(where, fmt.Sprintf("a.framework = $%d", len(args)))
	}

	order := "a.karma DESC"
	switch filters.Sort {
	case "posts":
		order = "a.post_count DESC"
	case "recent":
		order = "a.created_at DESC"
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT
			a.id::text, a.name, a.headline, a.avatar_url,
			a.karma, a.post_count, a.endorsement_count,
			a.specializations, a.framework, a.created_at,
			(SELECT count(*) FROM follows f WHERE f.followed_id = a.id) AS follower_count
		FROM agents a
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		strings.Join(where, " AND "), order, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDirectoryEntries(rows)
}

// Search matches name, headline and description.
func (s *Service) Search(ctx context.Context, q string, limit int) ([]DirectoryEntry, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("agents store not configured")
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	pattern := "%" + q + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT
			a.id::text, a.name, a.headline, a.avatar_url,
			a.karma, a.post_count, a.endorsement_count,
			a.specializations, a.framework, a.created_at,
			(SELECT count(*) FROM follows f WHERE f.followed_id = a.id) AS follower_count
		FROM agents a
		WHERE a.name ILIKE $1 OR a.headline ILIKE $1 OR a.description ILIKE $1
		ORDER BY a.karma DESC
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDirectoryEntries(rows)
}

// Leaderboard is the karma ranking.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]DirectoryEntry, error) {
	return s.Directory(ctx, DirectoryFilters{Sort: "karma", Limit: limit})
}

func marshalProfileArrays(specializations, qualifications []string, experience []Experience, interests, languages, mcpTools []string) ([6][]byte, error) {
	var out [6][]byte
	values := []any{
		emptyIfNil(specializations), emptyIfNil(qualifications),
		experienceOrEmpty(experience),
		emptyIfNil(interests), emptyIfNil(languages), emptyIfNil(mcpTools),
	}
	for i, value := range values {
		payload, err := json.Marshal(value)
		if err != nil {
			return out, err
		}
		out[i] = payload
	}
	return out, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func experienceOrEmpty(values []Experience) []Experience {
	if values == nil {
		return []Experience{}
	}
	return values
}

func scanAgent(row pgx.Row) (Agent, error) {
	var (
		agent                                  Agent
		headline, description, avatarURL      pgtype.Text
		modelName, modelProvider              pgtype.Text
		framework, frameworkVersion           pgtype.Text
		twitterHandle                         pgtype.Text
		claimedAt, lastHeartbeat              pgtype.Timestamptz
		specializations, qualifications       []byte
		experience, interests, languages, mcp []byte
	)
	err := row.Scan(
		&agent.ID, &agent.Name, &headline, &description, &avatarURL,
		&modelName, &modelProvider, &framework, &frameworkVersion,
		&specializations, &qualifications, &experience, &interests, &languages, &mcp,
		&agent.Karma, &agent.EndorsementCount, &agent.PostCount, &agent.UptimeDays,
		&agent.Status, &twitterHandle, &claimedAt, &agent.CreatedAt, &agent.UpdatedAt, &lastHeartbeat,
	)
	if err != nil {
		return Agent{}, err
	}
	agent.Headline = headline.String
	agent.Description = description.String
	agent.AvatarURL = avatarURL.String
	agent.ModelName = modelName.String
	agent.ModelProvider = modelProvider.String
	agent.Framework = framework.String
	agent.FrameworkVersion = frameworkVersion.String
	agent.TwitterHandle = twitterHandle.String
	if claimedAt.Valid {
		t := claimedAt.Time
		agent.ClaimedAt = &t
	}
	if lastHeartbeat.Valid {
		t := lastHeartbeat.Time
		agent.LastHeartbeat = &t
	}
	if err := decodeStrings(specializations, &agent.Specializations); err != nil {
		return Agent{}, err
	}
	if err := decodeStrings(qualifications, &agent.Qualifications); err != nil {
		return Agent{}, err
	}
	if err := decodeJSON(experience, &agent.Experience); err != nil {
		return Agent{}, err
	}
	if agent.Experience == nil {
		agent.Experience = []Experience{}
	}
	if err := decodeStrings(interests, &agent.Interests); err != nil {
		return Agent{}, err
	}
	if err := decodeStrings(languages, &agent.Languages); err != nil {
		return Agent{}, err
	}
	if err := decodeStrings(mcp, &agent.MCPTools); err != nil {
		return Agent{}, err
	}
	return agent, nil
}

func scanDirectoryEntries(rows pgx.Rows) ([]DirectoryEntry, error) {
	entries := make([]DirectoryEntry, 0)
	for rows.Next() {
		var (
			entry               DirectoryEntry
			headline, avatarURL pgtype.Text
			framework           pgtype.Text
			specializations     []byte
			followerCount       int64
		)
		if err := rows.Scan(
			&entry.ID, &entry.Name, &headline, &avatarURL,
			&entry.Karma, &entry.PostCount, &entry.EndorsementCount,
			&specializations, &framework, &entry.CreatedAt, &followerCount,
		); err != nil {
			return nil, err
		}
		entry.Headline = headline.String
		entry.AvatarURL = avatarURL.String
		entry.Framework = framework.String
		entry.FollowerCount = int(followerCount)
		if err := decodeStrings(specializations, &entry.Specializations); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func decodeStrings(raw []byte, target *[]string) error {
	if err := decodeJSON(raw, target); err != nil {
		return err
	}
	if *target == nil {
		*target = []string{}
	}
	return nil
}

func decodeJSON(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}
