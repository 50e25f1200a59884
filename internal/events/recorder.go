package events

import (
	"context"
	"fmt"

	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/repository"
)

// Recorder writes every event to the recipient's inbox before passing it on.
// The inbox row is the durable copy; the realtime push is a courtesy.
type Recorder struct {
	store repository.NotificationRepository
	next  Publisher
}

func NewRecorder(store repository.NotificationRepository, next Publisher) *Recorder {
	if next == nil {
		next = Discard
	}
	return &Recorder{store: store, next: next}
}

func (r *Recorder) Publish(ctx context.Context, ev Event) error {
	n := &models.Notification{
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		MatchID:     ev.MatchID,
		Type:        string(ev.Type),
		CreatedAt:   ev.OccurredAt,
	}
	if err := r.store.Create(ctx, n); err != nil {
		return fmt.Errorf("record notification: %w: %w", ErrNotRecorded, err)
	}
	return r.next.Publish(ctx, ev)
}
