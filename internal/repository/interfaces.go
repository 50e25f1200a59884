package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/models"
)

// Conventions shared by every implementation:
//
//   - context.Context first; everything here does I/O.
//   - Single-row lookups return nil, nil when the row does not exist.
//   - Conditional updates (Mark*) return nil, nil when the row exists but
//     its guard no longer holds. The caller re-reads to find out why.
//   - List methods return an empty slice, never nil, so JSON shows [].

var (
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("duplicate row")
	// ErrNotFound is returned by multi-step writes that find nothing to act on.
	ErrNotFound = errors.New("row not found")
)

// MatchRepository owns the matches table. Every state change is a single
// guarded UPDATE so two participants racing each other cannot both win.
type MatchRepository interface {
	GetByID(ctx context.Context, matchID uuid.UUID) (*models.Match, error)

	// ListByParticipant returns matches where userID is the post owner or
	// the applicant, newest first.
	ListByParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.MatchRecord, error)

	// MarkReported applies only while status='active' AND completed_by IS NULL.
	MarkReported(ctx context.Context, matchID, actorID uuid.UUID, at time.Time) (*models.Match, error)

	// MarkConfirmed applies only while status='active', completed_by is set
	// and differs from actorID, and confirmed_by IS NULL.
	MarkConfirmed(ctx context.Context, matchID, actorID uuid.UUID, at time.Time) (*models.Match, error)

	// MarkCancelled applies only while status='active'.
	MarkCancelled(ctx context.Context, matchID, actorID uuid.UUID, reason *string, at time.Time) (*models.Match, error)

	// ListAwaitingConfirmation returns active matches reported before
	// reportedBefore that have not had a reminder yet.
	ListAwaitingConfirmation(ctx context.Context, reportedBefore time.Time, limit int) ([]models.Match, error)

	// MarkReminderSent claims the reminder for a match. False means another
	// worker got there first or the match moved on.
	MarkReminderSent(ctx context.Context, matchID uuid.UUID, at time.Time) (bool, error)

	// ReleaseReminder undoes a claim taken at claimedAt so the next run
	// retries the match. A claim taken by someone else is left alone.
	ReleaseReminder(ctx context.Context, matchID uuid.UUID, claimedAt time.Time) error
}

// ParticipantRepository answers "who is in this match" from
// matches → applications → posts.
type ParticipantRepository interface {
	GetMatchContext(ctx context.Context, matchID uuid.UUID) (*models.MatchContext, error)

	// IsParticipant is the hot-path check run before every chat read/write.
	IsParticipant(ctx context.Context, matchID, userID uuid.UUID) (bool, error)
}

// AcceptCheck validates an acceptance inside the acceptance transaction,
// after the application row has been locked.
type AcceptCheck func(app *models.Application, post *models.Post) error

type ApplicationRepository interface {
	// Accept locks the application, runs check, marks it accepted and
	// inserts its match in one transaction. Returns ErrNotFound when the
	// application does not exist.
	Accept(ctx context.Context, applicationID uuid.UUID, check AcceptCheck) (*models.Match, error)
}

type ReviewRepository interface {
	// Create inserts a review and fills ID and CreatedAt. Returns
	// ErrDuplicate when (match_id, reviewer_id) already has a review.
	Create(ctx context.Context, review *models.Review) error

	Exists(ctx context.Context, matchID, reviewerID uuid.UUID) (bool, error)

	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.Review, error)
}

// MessageRepository handles chat message persistence.
type MessageRepository interface {
	Create(ctx context.Context, matchID, senderID uuid.UUID, body string) (*models.Message, error)

	// ListByMatch returns messages newest first. before=0 means latest.
	ListByMatch(ctx context.Context, matchID uuid.UUID, before int64, limit int) ([]models.Message, error)

	// HasAny drives the "send your first message" onboarding hint.
	HasAny(ctx context.Context, matchID uuid.UUID) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error

	// ListByRecipient returns notifications newest first. before=0 means latest.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, before int64, limit int) ([]models.Notification, error)

	// MarkRead returns false if the notification does not belong to
	// recipientID or does not exist.
	MarkRead(ctx context.Context, notificationID int64, recipientID uuid.UUID, at time.Time) (bool, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}
