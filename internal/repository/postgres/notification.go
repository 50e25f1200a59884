package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/skillmatch/internal/models"
)

type NotificationStore struct {
	pool *pgxpool.Pool
}

func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, actor_id, match_id, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx, query, n.RecipientID, n.ActorID, n.MatchID, n.Type, n.CreatedAt).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID, before int64, limit int) ([]models.Notification, error) {
	var query string
	var args []any

	if before > 0 {
		query = `
			SELECT id, recipient_id, actor_id, match_id, type, read_at, created_at
			FROM notifications
			WHERE recipient_id = $1 AND id < $2
			ORDER BY id DESC
			LIMIT $3`
		args = []any{recipientID, before, limit}
	} else {
		query = `
			SELECT id, recipient_id, actor_id, match_id, type, read_at, created_at
			FROM notifications
			WHERE recipient_id = $1
			ORDER BY id DESC
			LIMIT $2`
		args = []any{recipientID, limit}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.ActorID,
			&n.MatchID,
			&n.Type,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, notificationID int64, recipientID uuid.UUID, at time.Time) (bool, error) {
	// Already-read rows still count as success so the call is idempotent.
	query := `
		UPDATE notifications
		SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND recipient_id = $2`

	tag, err := s.pool.Exec(ctx, query, notificationID, recipientID, at)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
