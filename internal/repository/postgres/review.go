package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/repository"
)

type ReviewStore struct {
	pool *pgxpool.Pool
}

func NewReviewStore(pool *pgxpool.Pool) *ReviewStore {
	return &ReviewStore{pool: pool}
}

// Create relies on UNIQUE (match_id, reviewer_id). A double-click that sends
// two inserts at once gets exactly one row and one ErrDuplicate; a
// read-then-insert check could not guarantee that.
func (s *ReviewStore) Create(ctx context.Context, r *models.Review) error {
	query := `
		INSERT INTO reviews (match_id, reviewer_id, reviewee_id, reviewer_role, badges, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		r.MatchID,
		r.ReviewerID,
		r.RevieweeID,
		string(r.ReviewerRole),
		badgeStrings(r.Badges),
		r.Comment,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert review: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (s *ReviewStore) Exists(ctx context.Context, matchID, reviewerID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reviews
			WHERE match_id = $1 AND reviewer_id = $2
		)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, matchID, reviewerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}
	return exists, nil
}

func (s *ReviewStore) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.Review, error) {
	query := `
		SELECT id, match_id, reviewer_id, reviewee_id, reviewer_role, badges, comment, created_at
		FROM reviews
		WHERE match_id = $1
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var (
			r      models.Review
			role   string
			badges []string
		)
		if err := rows.Scan(
			&r.ID,
			&r.MatchID,
			&r.ReviewerID,
			&r.RevieweeID,
			&role,
			&badges,
			&r.Comment,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.ReviewerRole = models.Role(role)
		r.Badges = make([]models.Badge, 0, len(badges))
		for _, b := range badges {
			r.Badges = append(r.Badges, models.Badge(b))
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

func badgeStrings(badges []models.Badge) []string {
	out := make([]string, len(badges))
	for i, b := range badges {
		out[i] = string(b)
	}
	return out
}
