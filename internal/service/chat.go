package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/apperr"
	"github.com/lalith-99/skillmatch/internal/events"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/repository"
	"go.uber.org/zap"
)

const (
	maxMessageLen   = 2000
	defaultPageSize = 50
	maxPageSize     = 100
)

// ChatService is the per-match conversation. Chat stays open after the
// match ends so the pair can wrap up and exchange review thanks.
type ChatService struct {
	messages     repository.MessageRepository
	participants repository.ParticipantRepository
	notifier     notifier
	logger       *zap.Logger
}

func NewChatService(
	messages repository.MessageRepository,
	participants repository.ParticipantRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		messages:     messages,
		participants: participants,
		notifier:     notifier{publisher: publisher, logger: logger},
		logger:       logger,
	}
}

func (s *ChatService) Send(ctx context.Context, matchID, senderID uuid.UUID, body string) (*models.Message, error) {
	const op = "chat.send"

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Validation(op, "message body is required")
	}
	if utf8.RuneCountInString(body) > maxMessageLen {
		return nil, apperr.Validation(op, "message body must be at most %d characters", maxMessageLen)
	}

	mc, err := s.participants.GetMatchContext(ctx, matchID)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	if mc == nil {
		return nil, apperr.NotFound(op, "match not found")
	}
	partner, ok := mc.Partner(senderID)
	if !ok {
		return nil, apperr.Forbidden(op, "you are not a participant of this match")
	}

	msg, err := s.messages.Create(ctx, matchID, senderID, body)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}

	s.logger.Debug("message sent",
		zap.Stringer("match_id", matchID),
		zap.Int64("message_id", msg.ID),
	)
	s.notifier.notify(ctx, events.NewMessage, matchID, senderID, msg.CreatedAt, partner)
	return msg, nil
}

// History pages backwards from before (0 = latest). limit is clamped to
// [1, 100]; zero means the default page size.
func (s *ChatService) History(ctx context.Context, matchID, viewerID uuid.UUID, before int64, limit int) ([]models.Message, error) {
	const op = "chat.history"

	ok, err := s.participants.IsParticipant(ctx, matchID, viewerID)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	if !ok {
		return nil, apperr.Forbidden(op, "you are not a participant of this match")
	}

	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}

	msgs, err := s.messages.ListByMatch(ctx, matchID, before, limit)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	return msgs, nil
}
