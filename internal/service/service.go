// Package service holds the business rules of the match protocol: who may
// move a match from one state to the next, who may review whom, and what
// gets announced when they do. Persistence and delivery are injected.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/events"
	"go.uber.org/zap"
)

// notifier publishes after a write has committed. Delivery failures are
// logged and swallowed: the state change already happened and the client
// re-reads authoritative state anyway.
type notifier struct {
	publisher events.Publisher
	logger    *zap.Logger
}

func (n notifier) notify(ctx context.Context, typ events.Type, matchID, actorID uuid.UUID, at time.Time, recipients ...uuid.UUID) {
	// The request may be cancelled the moment we respond; delivery should
	// not be.
	ctx = context.WithoutCancel(ctx)
	for _, recipient := range recipients {
		ev := events.Event{
			Type:        typ,
			MatchID:     matchID,
			ActorID:     actorID,
			RecipientID: recipient,
			OccurredAt:  at,
		}
		if err := n.publisher.Publish(ctx, ev); err != nil {
			n.logger.Warn("failed to publish event",
				zap.String("type", string(typ)),
				zap.Stringer("match_id", matchID),
				zap.Stringer("recipient_id", recipient),
				zap.Error(err),
			)
		}
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// describeValidation turns validator output into one client-facing line.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s allows at most %s entries", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", fe.Field())
	}
	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}

// trimOptional normalises an optional free-text field: surrounding space is
// dropped and an empty result becomes nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
