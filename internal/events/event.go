// Package events carries lifecycle notifications out of the service layer.
// Services publish semantic events; what happens to them (inbox row, Redis
// fan-out, websocket push) is decided by the Publisher chain built in main.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	MatchCompletionReported   Type = "match_completion_reported"
	MatchCompleted            Type = "match_completed"
	MatchCancelled            Type = "match_cancelled"
	ReviewReceived            Type = "review_received"
	ApplicationAccepted       Type = "application_accepted"
	NewMessage                Type = "new_message"
	MatchConfirmationReminder Type = "match_confirmation_reminder"
)

// Event is addressed to exactly one recipient. A transition that concerns
// both participants publishes two events.
type Event struct {
	Type        Type      `json:"type"`
	MatchID     uuid.UUID `json:"match_id"`
	ActorID     uuid.UUID `json:"actor_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ErrNotRecorded marks a Publish failure that happened before the event
// reached the inbox. Retrying such an event cannot produce a duplicate row.
var ErrNotRecorded = errors.New("event not recorded")

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// ChannelFor is the Redis Pub/Sub channel carrying a user's events.
func ChannelFor(recipientID uuid.UUID) string {
	return "notifications:" + recipientID.String()
}

// Discard drops every event. Useful in tests and one-off tools.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) error { return nil }
