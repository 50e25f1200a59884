package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/skillmatch/internal/models"
)

// ParticipantStore resolves the two people behind a match. Nothing about
// participation is stored on the match row; it is always joined through
// the application and its post.
type ParticipantStore struct {
	pool *pgxpool.Pool
}

func NewParticipantStore(pool *pgxpool.Pool) *ParticipantStore {
	return &ParticipantStore{pool: pool}
}

func (s *ParticipantStore) GetMatchContext(ctx context.Context, matchID uuid.UUID) (*models.MatchContext, error) {
	query := `
		SELECT m.id, p.id, p.type, p.owner_id, a.applicant_id, p.title
		FROM matches m
		JOIN applications a ON a.id = m.application_id
		JOIN posts p ON p.id = a.post_id
		WHERE m.id = $1`

	var mc models.MatchContext
	err := s.pool.QueryRow(ctx, query, matchID).Scan(
		&mc.MatchID,
		&mc.PostID,
		&mc.PostType,
		&mc.PostOwnerID,
		&mc.ApplicantID,
		&mc.PostTitle,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get match context: %w", err)
	}
	return &mc, nil
}

func (s *ParticipantStore) IsParticipant(ctx context.Context, matchID, userID uuid.UUID) (bool, error) {
	// EXISTS stops at the first matching row; this runs before every chat
	// read and write.
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM matches m
			JOIN applications a ON a.id = m.application_id
			JOIN posts p ON p.id = a.post_id
			WHERE m.id = $1 AND (p.owner_id = $2 OR a.applicant_id = $2)
		)`

	var exists bool
	err := s.pool.QueryRow(ctx, query, matchID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return exists, nil
}
