package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/skillmatch/internal/models"
)

const matchColumns = `
	m.id, m.application_id, m.status, m.matched_at,
	m.completed_by, m.completed_at, m.confirmed_by, m.confirmed_at,
	m.cancelled_by, m.cancelled_at, m.cancel_reason, m.reminder_sent_at`

type MatchStore struct {
	pool *pgxpool.Pool
}

func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

// matchDest lists scan targets in matchColumns order.
func matchDest(m *models.Match) []any {
	return []any{
		&m.ID, &m.ApplicationID, &m.Status, &m.MatchedAt,
		&m.CompletedBy, &m.CompletedAt, &m.ConfirmedBy, &m.ConfirmedAt,
		&m.CancelledBy, &m.CancelledAt, &m.CancelReason, &m.ReminderSentAt,
	}
}

// scanOptionalMatch turns pgx.ErrNoRows into nil, nil.
func scanOptionalMatch(row pgx.Row, what string) (*models.Match, error) {
	var m models.Match
	if err := row.Scan(matchDest(&m)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return &m, nil
}

func (s *MatchStore) GetByID(ctx context.Context, matchID uuid.UUID) (*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches m
		WHERE m.id = $1`

	return scanOptionalMatch(s.pool.QueryRow(ctx, query, matchID), "get match")
}

func (s *MatchStore) ListByParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.MatchRecord, error) {
	query := `SELECT ` + matchColumns + `,
			p.id, p.type, p.owner_id, a.applicant_id, p.title
		FROM matches m
		JOIN applications a ON a.id = m.application_id
		JOIN posts p ON p.id = a.post_id
		WHERE p.owner_id = $1 OR a.applicant_id = $1
		ORDER BY m.matched_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	records := make([]models.MatchRecord, 0)
	for rows.Next() {
		var rec models.MatchRecord
		dest := append(matchDest(&rec.Match),
			&rec.Context.PostID,
			&rec.Context.PostType,
			&rec.Context.PostOwnerID,
			&rec.Context.ApplicantID,
			&rec.Context.PostTitle,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		rec.Context.MatchID = rec.Match.ID
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	return records, nil
}

// The three Mark* methods below are compare-and-swap writes: the WHERE
// clause is the transition's precondition, so whichever of two concurrent
// callers commits second updates zero rows instead of overwriting the first.

func (s *MatchStore) MarkReported(ctx context.Context, matchID, actorID uuid.UUID, at time.Time) (*models.Match, error) {
	query := `
		UPDATE matches m
		SET completed_by = $2, completed_at = $3
		WHERE m.id = $1
		  AND m.status = 'active'
		  AND m.completed_by IS NULL
		RETURNING ` + matchColumns

	return scanOptionalMatch(s.pool.QueryRow(ctx, query, matchID, actorID, at), "report completion")
}

func (s *MatchStore) MarkConfirmed(ctx context.Context, matchID, actorID uuid.UUID, at time.Time) (*models.Match, error) {
	query := `
		UPDATE matches m
		SET confirmed_by = $2,
		    confirmed_at = $3,
		    completed_at = $3,
		    status = 'completed'
		WHERE m.id = $1
		  AND m.status = 'active'
		  AND m.completed_by IS NOT NULL
		  AND m.completed_by <> $2
		  AND m.confirmed_by IS NULL
		RETURNING ` + matchColumns

	return scanOptionalMatch(s.pool.QueryRow(ctx, query, matchID, actorID, at), "confirm completion")
}

func (s *MatchStore) MarkCancelled(ctx context.Context, matchID, actorID uuid.UUID, reason *string, at time.Time) (*models.Match, error) {
	query := `
		UPDATE matches m
		SET status = 'cancelled',
		    cancelled_by = $2,
		    cancelled_at = $3,
		    cancel_reason = $4
		WHERE m.id = $1
		  AND m.status = 'active'
		RETURNING ` + matchColumns

	return scanOptionalMatch(s.pool.QueryRow(ctx, query, matchID, actorID, at, reason), "cancel match")
}

func (s *MatchStore) ListAwaitingConfirmation(ctx context.Context, reportedBefore time.Time, limit int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches m
		WHERE m.status = 'active'
		  AND m.completed_by IS NOT NULL
		  AND m.completed_at < $1
		  AND m.reminder_sent_at IS NULL
		ORDER BY m.completed_at
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, reportedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("list awaiting matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(matchDest(&m)...); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate awaiting matches: %w", err)
	}

	return matches, nil
}

func (s *MatchStore) MarkReminderSent(ctx context.Context, matchID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE matches
		SET reminder_sent_at = $2
		WHERE id = $1
		  AND status = 'active'
		  AND reminder_sent_at IS NULL`

	tag, err := s.pool.Exec(ctx, query, matchID, at)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *MatchStore) ReleaseReminder(ctx context.Context, matchID uuid.UUID, claimedAt time.Time) error {
	query := `
		UPDATE matches
		SET reminder_sent_at = NULL
		WHERE id = $1
		  AND reminder_sent_at = $2`

	if _, err := s.pool.Exec(ctx, query, matchID, claimedAt); err != nil {
		return fmt.Errorf("release reminder: %w", err)
	}
	return nil
}
