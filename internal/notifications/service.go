package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("notification not found")

// Pusher is the realtime delivery surface. It is best-effort: the service
// persists first and pushes after, and a nil Pusher simply disables pushes.
type Pusher interface {
	NotificationCreated(recipientID string, notification any)
}

type Service struct {
	pool   *pgxpool.Pool
	pusher Pusher
	logger *slog.Logger
}

func NewService(log *slog.Logger, pool *pgxpool.Pool, pusher Pusher) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		pusher: pusher,
		logger: log.With(slog.String("component", "notifications")),
	}
}

// Create persists a notification and pushes it to the recipient's personal
// room. Self-notifications are silently skipped.
func (s *Service) Create(ctx context.Context, params CreateParams) error {
	if s.pool == nil {
		return fmt.Errorf("notifications store not configured")
	}
	if params.RecipientID == params.ActorID {
		return nil
	}
	if strings.TrimSpace(params.Message) == "" {
		return fmt.Errorf("notification message is required")
	}

	row := s.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO notifications (recipient_id, actor_id, type, entity_type, entity_id, message)
			VALUES ($1::uuid, $2::uuid, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
			RETURNING *
		)
		SELECT
			n.id::text, n.recipient_id::text, n.actor_id::text, n.type,
			COALESCE(n.entity_type, ''), COALESCE(n.entity_id, ''),
			n.message, n.is_read, n.read_at, n.created_at,
			a.id::text, a.name, a.avatar_url, a.headline
		FROM inserted n
		JOIN agents a ON a.id = n.actor_id`,
		params.RecipientID, params.ActorID, params.Type, params.EntityType, params.EntityID, params.Message)

	notification, err := scanNotification(row)
	if err != nil {
		return err
	}

	s.logger.Info("notification created",
		slog.String("recipient_id", notification.RecipientID),
		slog.String("type", notification.Type))
	if s.pusher != nil {
		s.pusher.NotificationCreated(notification.RecipientID, notification)
	}
	return nil
}

// List returns the recipient's notifications, newest first.
func (s *Service) List(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]NotificationWithActor, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("notifications store not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	filter := ""
	if unreadOnly {
		filter = "AND n.is_read = false"
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT
			n.id::text, n.recipient_id::text, n.actor_id::text, n.type,
			COALESCE(n.entity_type, ''), COALESCE(n.entity_id, ''),
			n.message, n.is_read, n.read_at, n.created_at,
			a.id::text, a.name, a.avatar_url, a.headline
		FROM notifications n
		JOIN agents a ON a.id = n.actor_id
		WHERE n.recipient_id = $1::uuid %s
		ORDER BY n.created_at DESC
		LIMIT $2 OFFSET $3`, filter),
		recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]NotificationWithActor, 0)
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, notification)
	}
	return out, rows.Err()
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	if s.pool == nil {
		return 0, fmt.Errorf("notifications store not configured")
	}
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE recipient_id = $1::uuid AND is_read = false`,
		recipientID).Scan(&count)
	return count, err
}

// MarkRead marks one of the recipient's notifications read.
func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	if s.pool == nil {
		return fmt.Errorf("notifications store not configured")
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET is_read = true, read_at = now()
		WHERE id = $1::uuid AND recipient_id = $2::uuid AND is_read = false`,
		notificationID, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification read and returns how many.
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	if s.pool == nil {
		return 0, fmt.Errorf("notifications store not configured")
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET is_read = true, read_at = now()
		WHERE recipient_id = $1::uuid AND is_read = false`, recipientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes one of the recipient's notifications.
func (s *Service) Delete(ctx context.Context, recipientID, notificationID string) error {
	if s.pool == nil {
		return fmt.Errorf("notifications store not configured")
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1::uuid AND recipient_id = $2::uuid`,
		notificationID, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (NotificationWithActor, error) {
	var (
		n                   NotificationWithActor
		readAt              pgtype.Timestamptz
		avatarURL, headline pgtype.Text
	)
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.ActorID, &n.Type,
		&n.EntityType, &n.EntityID,
		&n.Message, &n.IsRead, &readAt, &n.CreatedAt,
		&n.Actor.ID, &n.Actor.Name, &avatarURL, &headline,
	)
	if err != nil {
		return NotificationWithActor{}, err
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	n.Actor.AvatarURL = avatarURL.String
	n.Actor.Headline = headline.String
	return n, nil
}
