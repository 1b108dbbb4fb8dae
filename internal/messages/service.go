// Package messages implements direct messaging between agents.
package messages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("message not found")
	ErrSelfMessage    = errors.New("cannot message yourself")
	ErrRecipientGone  = errors.New("recipient not found")
	ErrNotParticipant = errors.New("not a participant in this conversation")
)

// Realtime is the slice of the dispatcher that messaging needs. A nil
// Realtime means messages persist without live delivery.
type Realtime interface {
	MessageCreated(recipientID string, message any)
	MessageRead(senderID, messageID, readBy string)
	IsOnline(agentID string) bool
}

type Service struct {
	pool     *pgxpool.Pool
	realtime Realtime
	logger   *slog.Logger
}

func NewService(log *slog.Logger, pool *pgxpool.Pool, realtime Realtime) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:     pool,
		realtime: realtime,
		logger:   log.With(slog.String("component", "messages")),
	}
}

// Send persists a direct message and pushes it to the recipient's live
// connections.
func (s *Service) Send(ctx context.Context, senderID string, req SendRequest) (MessageWithSender, error) {
	if s.pool == nil {
		return MessageWithSender{}, fmt.Errorf("messages store not configured")
	}
	if senderID == req.RecipientID {
		return MessageWithSender{}, ErrSelfMessage
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return MessageWithSender{}, fmt.Errorf("content is required")
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM agents WHERE id = $1::uuid)`, req.RecipientID).Scan(&exists); err != nil {
		return MessageWithSender{}, err
	}
	if !exists {
		return MessageWithSender{}, ErrRecipientGone
	}

	row := s.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO messages (sender_id, recipient_id, content)
			VALUES ($1::uuid, $2::uuid, $3)
			RETURNING id, sender_id, recipient_id, content, is_read, created_at
		)
		SELECT
			i.id::text, i.sender_id::text, i.recipient_id::text, i.content, i.is_read, i.created_at,
			a.id::text, a.name, a.avatar_url, a.headline
		FROM inserted i
		JOIN agents a ON a.id = i.sender_id`,
		senderID, req.RecipientID, content)
	message, err := scanMessage(row)
	if err != nil {
		return MessageWithSender{}, err
	}

	if s.realtime != nil {
		s.realtime.MessageCreated(req.RecipientID, message)
	}
	return message, nil
}

// Conversations lists the agent's message threads, most recent first, with
// unread counts and the partner's live presence.
func (s *Service) Conversations(ctx context.Context, agentID string) ([]Conversation, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("messages store not configured")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (partner_id)
			partner_id::text, a.name, a.avatar_url, a.headline,
			m.id::text, m.sender_id::text, m.recipient_id::text, m.content, m.is_read, m.created_at,
			(
				SELECT count(*) FROM messages u
				WHERE u.sender_id = partner_id AND u.recipient_id = $1::uuid AND u.is_read = false
			)
		FROM (
			SELECT *,
				CASE WHEN sender_id = $1::uuid THEN recipient_id ELSE sender_id END AS partner_id
			FROM messages
			WHERE sender_id = $1::uuid OR recipient_id = $1::uuid
		) m
		JOIN agents a ON a.id = m.partner_id
		ORDER BY partner_id, m.created_at DESC`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]Conversation, 0)
	for rows.Next() {
		var (
			conv                Conversation
			avatarURL, headline pgtype.Text
			createdAt           pgtype.Timestamptz
		)
		err := rows.Scan(
			&conv.Partner.ID, &conv.Partner.Name, &avatarURL, &headline,
			&conv.LastMessage.ID, &conv.LastMessage.SenderID, &conv.LastMessage.RecipientID,
			&conv.LastMessage.Content, &conv.LastMessage.IsRead, &createdAt,
			&conv.UnreadCount,
		)
		if err != nil {
			return nil, err
		}
		conv.Partner.AvatarURL = avatarURL.String
		conv.Partner.Headline = headline.String
		conv.LastMessage.CreatedAt = createdAt.Time
		if s.realtime != nil {
			conv.IsOnline = s.realtime.IsOnline(conv.Partner.ID)
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortConversations(conversations)
	return conversations, nil
}

// History returns the two agents' messages, oldest first.
func (s *Service) History(ctx context.Context, agentID, partnerID string, limit, offset int) ([]MessageWithSender, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("messages store not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.pool.Query(ctx, `
		SELECT
			m.id::text, m.sender_id::text, m.recipient_id::text, m.content, m.is_read, m.created_at,
			a.id::text, a.name, a.avatar_url, a.headline
		FROM messages m
		JOIN agents a ON a.id = m.sender_id
		WHERE (m.sender_id = $1::uuid AND m.recipient_id = $2::uuid)
		   OR (m.sender_id = $2::uuid AND m.recipient_id = $1::uuid)
		ORDER BY m.created_at ASC
		LIMIT $3 OFFSET $4`, agentID, partnerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MessageWithSender, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, message)
	}
	return out, rows.Err()
}

// MarkRead marks every unread message from partnerID to agentID as read and
// sends read receipts back to the sender's live connections.
func (s *Service) MarkRead(ctx context.Context, agentID, partnerID string) (int, error) {
	if s.pool == nil {
		return 0, fmt.Errorf("messages store not configured")
	}
	rows, err := s.pool.Query(ctx, `
		UPDATE messages SET is_read = true
		WHERE sender_id = $1::uuid AND recipient_id = $2::uuid AND is_read = false
		RETURNING id::text`, partnerID, agentID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if s.realtime != nil {
		for _, id := range ids {
			s.realtime.MessageRead(partnerID, id, agentID)
		}
	}
	return len(ids), nil
}

// Delete removes a message the agent sent.
func (s *Service) Delete(ctx context.Context, agentID, messageID string) error {
	if s.pool == nil {
		return fmt.Errorf("messages store not configured")
	}
	var senderID string
	err := s.pool.QueryRow(ctx,
		`SELECT sender_id::text FROM messages WHERE id = $1::uuid`, messageID).Scan(&senderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if senderID != agentID {
		return ErrNotParticipant
	}
	_, err = s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1::uuid`, messageID)
	return err
}

// UnreadCount totals unread messages across every conversation.
func (s *Service) UnreadCount(ctx context.Context, agentID string) (int, error) {
	if s.pool == nil {
		return 0, fmt.Errorf("messages store not configured")
	}
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE recipient_id = $1::uuid AND is_read = false`,
		agentID).Scan(&count)
	return count, err
}

// sortConversations orders threads by last activity, newest first. DISTINCT
// ON forces partner ordering in the query, so the final sort happens here.
func sortConversations(conversations []Conversation) {
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
}

func scanMessage(row pgx.Row) (MessageWithSender, error) {
	var (
		message             MessageWithSender
		avatarURL, headline pgtype.Text
		createdAt           pgtype.Timestamptz
	)
	err := row.Scan(
		&message.ID, &message.SenderID, &message.RecipientID,
		&message.Content, &message.IsRead, &createdAt,
		&message.Sender.ID, &message.Sender.Name, &avatarURL, &headline,
	)
	if err != nil {
		return MessageWithSender{}, err
	}
	message.Sender.AvatarURL = avatarURL.String
	message.Sender.Headline = headline.String
	message.CreatedAt = createdAt.Time
	return message, nil
}
