package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/repository"
)

type ApplicationStore struct {
	pool *pgxpool.Pool
}

func NewApplicationStore(pool *pgxpool.Pool) *ApplicationStore {
	return &ApplicationStore{pool: pool}
}

// Accept flips the application to accepted and creates its match in one
// transaction. The application row is locked first so two concurrent accepts
// serialize and the second one sees status='accepted' in check.
func (s *ApplicationStore) Accept(ctx context.Context, applicationID uuid.UUID, check repository.AcceptCheck) (*models.Match, error) {
	var match *models.Match

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		lockQuery := `
			SELECT a.id, a.post_id, a.applicant_id, a.message, a.status, a.created_at,
			       p.id, p.owner_id, p.type, p.title, p.status, p.max_applicants, p.created_at
			FROM applications a
			JOIN posts p ON p.id = a.post_id
			WHERE a.id = $1
			FOR UPDATE OF a`

		var app models.Application
		var post models.Post
		err := tx.QueryRow(ctx, lockQuery, applicationID).Scan(
			&app.ID, &app.PostID, &app.ApplicantID, &app.Message, &app.Status, &app.CreatedAt,
			&post.ID, &post.OwnerID, &post.Type, &post.Title, &post.Status, &post.MaxApplicants, &post.CreatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("lock application: %w", err)
		}

		if err := check(&app, &post); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE applications SET status = 'accepted' WHERE id = $1`, app.ID); err != nil {
			return fmt.Errorf("accept application: %w", err)
		}

		insertQuery := `
			INSERT INTO matches AS m (application_id, status, matched_at)
			VALUES ($1, 'active', now())
			RETURNING ` + matchColumns

		var m models.Match
		if err := tx.QueryRow(ctx, insertQuery, app.ID).Scan(matchDest(&m)...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert match: %w", repository.ErrDuplicate)
			}
			return fmt.Errorf("insert match: %w", err)
		}
		match = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}
