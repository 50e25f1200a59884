package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/skillmatch/internal/models"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

func (s *MessageStore) Create(ctx context.Context, matchID uuid.UUID, senderID uuid.UUID, body string) (*models.Message, error) {
	query := `
		INSERT INTO messages (match_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, match_id, sender_id, body, created_at`

	var msg models.Message
	err := s.pool.QueryRow(ctx, query, matchID, senderID, body).Scan(
		&msg.ID,
		&msg.MatchID,
		&msg.SenderID,
		&msg.Body,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

// ListByMatch pages backwards through a match's chat. before=0 is the first
// page; otherwise only ids strictly below the cursor are returned.
func (s *MessageStore) ListByMatch(ctx context.Context, matchID uuid.UUID, before int64, limit int) ([]models.Message, error) {
	var query string
	var args []any

	if before > 0 {
		query = `
			SELECT id, match_id, sender_id, body, created_at
			FROM messages
			WHERE match_id = $1 AND id < $2
			ORDER BY id DESC
			LIMIT $3`
		args = []any{matchID, before, limit}
	} else {
		query = `
			SELECT id, match_id, sender_id, body, created_at
			FROM messages
			WHERE match_id = $1
			ORDER BY id DESC
			LIMIT $2`
		args = []any{matchID, limit}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.MatchID,
			&msg.SenderID,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

func (s *MessageStore) HasAny(ctx context.Context, matchID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM messages WHERE match_id = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, matchID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check messages: %w", err)
	}
	return exists, nil
}
