package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/events"
	"github.com/lalith-99/skillmatch/internal/repository"
	"go.uber.org/zap"
)

const reminderBatchSize = 100

// ConfirmationReminder nudges the partner of a completion report that has
// sat unconfirmed for longer than After. Each match is reminded once.
type ConfirmationReminder struct {
	matches      repository.MatchRepository
	participants repository.ParticipantRepository
	publisher    events.Publisher
	logger       *zap.Logger
	after        time.Duration
	now          func() time.Time
}

func NewConfirmationReminder(
	matches repository.MatchRepository,
	participants repository.ParticipantRepository,
	publisher events.Publisher,
	after time.Duration,
	logger *zap.Logger,
) *ConfirmationReminder {
	return &ConfirmationReminder{
		matches:      matches,
		participants: participants,
		publisher:    publisher,
		logger:       logger,
		after:        after,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run processes one batch and returns how many reminders went out.
//
// A claim is given back when the reminder never reached the inbox, so the
// next run retries it. Once the inbox row exists the claim stands even if
// the realtime push failed.
func (r *ConfirmationReminder) Run(ctx context.Context) (int, error) {
	now := r.now().Truncate(time.Microsecond)
	pending, err := r.matches.ListAwaitingConfirmation(ctx, now.Add(-r.after), reminderBatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range pending {
		if m.CompletedBy == nil {
			continue
		}

		// Claim first: with several instances running the same schedule,
		// only the one whose update lands sends the reminder.
		claimed, err := r.matches.MarkReminderSent(ctx, m.ID, now)
		if err != nil {
			r.logger.Warn("failed to claim reminder", zap.Stringer("match_id", m.ID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		mc, err := r.participants.GetMatchContext(ctx, m.ID)
		if err != nil || mc == nil {
			r.logger.Warn("failed to load match participants", zap.Stringer("match_id", m.ID), zap.Error(err))
			r.release(ctx, m.ID, now)
			continue
		}
		partner, ok := mc.Partner(*m.CompletedBy)
		if !ok {
			continue
		}

		ev := events.Event{
			Type:        events.MatchConfirmationReminder,
			MatchID:     m.ID,
			ActorID:     *m.CompletedBy,
			RecipientID: partner,
			OccurredAt:  now,
		}
		if err := r.publisher.Publish(ctx, ev); err != nil {
			if errors.Is(err, events.ErrNotRecorded) {
				r.logger.Warn("failed to record reminder", zap.Stringer("match_id", m.ID), zap.Error(err))
				r.release(ctx, m.ID, now)
				continue
			}
			r.logger.Warn("reminder recorded but not pushed", zap.Stringer("match_id", m.ID), zap.Error(err))
		}
		sent++
	}
	return sent, nil
}

func (r *ConfirmationReminder) release(ctx context.Context, matchID uuid.UUID, claimedAt time.Time) {
	if err := r.matches.ReleaseReminder(ctx, matchID, claimedAt); err != nil {
		r.logger.Error("failed to release reminder claim", zap.Stringer("match_id", matchID), zap.Error(err))
	}
}
