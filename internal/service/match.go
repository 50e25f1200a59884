package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/apperr"
	"github.com/lalith-99/skillmatch/internal/events"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/repository"
	"go.uber.org/zap"
)

const maxCancelReasonLen = 500

// MatchView is a match as one participant sees it.
type MatchView struct {
	Match       models.Match        `json:"match"`
	Context     models.MatchContext `json:"context"`
	ViewerRole  models.Role         `json:"viewer_role"`
	PartnerID   uuid.UUID           `json:"partner_id"`
	PartnerRole models.Role         `json:"partner_role"`
	Status      models.StatusBadge  `json:"status"`
	// HasMessages is false until someone speaks; clients show onboarding
	// guidance until then.
	HasMessages bool `json:"has_messages"`
	CanReview   bool `json:"can_review"`
}

// MatchService is the match state machine.
type MatchService struct {
	matches      repository.MatchRepository
	participants repository.ParticipantRepository
	reviews      repository.ReviewRepository
	messages     repository.MessageRepository
	notifier     notifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewMatchService(
	matches repository.MatchRepository,
	participants repository.ParticipantRepository,
	reviews repository.ReviewRepository,
	messages repository.MessageRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) *MatchService {
	return &MatchService{
		matches:      matches,
		participants: participants,
		reviews:      reviews,
		messages:     messages,
		notifier:     notifier{publisher: publisher, logger: logger},
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// load fetches the match and its participants and rejects outsiders.
func (s *MatchService) load(ctx context.Context, op string, matchID, actorID uuid.UUID) (*models.Match, *models.MatchContext, error) {
	mc, err := s.participants.GetMatchContext(ctx, matchID)
	if err != nil {
		return nil, nil, apperr.Unavailable(op, err)
	}
	if mc == nil {
		return nil, nil, apperr.NotFound(op, "match not found")
	}
	if !mc.HasParticipant(actorID) {
		return nil, nil, apperr.Forbidden(op, "you are not a participant of this match")
	}

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, apperr.Unavailable(op, err)
	}
	if m == nil {
		return nil, nil, apperr.NotFound(op, "match not found")
	}
	return m, mc, nil
}

// lostRace explains why a conditional update matched no row. The other
// participant's write landed between our read and our update, so re-read
// and judge the transition against what is there now.
func (s *MatchService) lostRace(ctx context.Context, op string, a action, matchID, actorID uuid.UUID) error {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return apperr.Unavailable(op, err)
	}
	if m == nil {
		return apperr.NotFound(op, "match not found")
	}
	if err := checkTransition(op, a, m, actorID); err != nil {
		return err
	}
	return apperr.InvalidState(op, "match changed concurrently; reload and try again")
}

// ReportCompletion records actorID as the first party to declare the work
// done. Only the first report counts; the partner must confirm it.
func (s *MatchService) ReportCompletion(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error) {
	const op = "match.report"

	m, mc, err := s.load(ctx, op, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(op, actionReport, m, actorID); err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := s.matches.MarkReported(ctx, matchID, actorID, now)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	if updated == nil {
		return nil, s.lostRace(ctx, op, actionReport, matchID, actorID)
	}

	s.logger.Info("match completion reported",
		zap.Stringer("match_id", matchID),
		zap.Stringer("actor_id", actorID),
	)
	partner, _ := mc.Partner(actorID)
	s.notifier.notify(ctx, events.MatchCompletionReported, matchID, actorID, now, partner)
	return updated, nil
}

// ConfirmCompletion finalises a pending report. The confirmer must be the
// participant who did not report.
func (s *MatchService) ConfirmCompletion(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error) {
	const op = "match.confirm"

	m, mc, err := s.load(ctx, op, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(op, actionConfirm, m, actorID); err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := s.matches.MarkConfirmed(ctx, matchID, actorID, now)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	if updated == nil {
		return nil, s.lostRace(ctx, op, actionConfirm, matchID, actorID)
	}

	s.logger.Info("match completed",
		zap.Stringer("match_id", matchID),
		zap.Stringer("confirmed_by", actorID),
	)
	s.notifier.notify(ctx, events.MatchCompleted, matchID, actorID, now, mc.PostOwnerID, mc.ApplicantID)
	return updated, nil
}

// CancelMatch ends an active match. Either participant may cancel, with or
// without a pending completion report.
func (s *MatchService) CancelMatch(ctx context.Context, matchID, actorID uuid.UUID, reason *string) (*models.Match, error) {
	const op = "match.cancel"

	reason = trimOptional(reason)
	if reason != nil && utf8.RuneCountInString(*reason) > maxCancelReasonLen {
		return nil, apperr.Validation(op, "reason must be at most %d characters", maxCancelReasonLen)
	}

	m, mc, err := s.load(ctx, op, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(op, actionCancel, m, actorID); err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := s.matches.MarkCancelled(ctx, matchID, actorID, reason, now)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	if updated == nil {
		return nil, s.lostRace(ctx, op, actionCancel, matchID, actorID)
	}

	s.logger.Info("match cancelled",
		zap.Stringer("match_id", matchID),
		zap.Stringer("actor_id", actorID),
	)
	partner, _ := mc.Partner(actorID)
	s.notifier.notify(ctx, events.MatchCancelled, matchID, actorID, now, partner)
	return updated, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID, viewerID uuid.UUID) (*MatchView, error) {
	const op = "match.get"

	m, mc, err := s.load(ctx, op, matchID, viewerID)
	if err != nil {
		return nil, err
	}
	view, err := s.view(ctx, m, mc, viewerID)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	return view, nil
}

// ListMatches returns the viewer's matches, newest first.
func (s *MatchService) ListMatches(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]MatchView, error) {
	const op = "match.list"

	records, err := s.matches.ListByParticipant(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}

	views := make([]MatchView, 0, len(records))
	for i := range records {
		view, err := s.view(ctx, &records[i].Match, &records[i].Context, viewerID)
		if err != nil {
			return nil, apperr.Unavailable(op, err)
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *MatchService) view(ctx context.Context, m *models.Match, mc *models.MatchContext, viewerID uuid.UUID) (*MatchView, error) {
	role, _ := mc.RoleOf(viewerID)
	partner, _ := mc.Partner(viewerID)

	hasMessages, err := s.messages.HasAny(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	canReview := false
	if m.Status == models.MatchCompleted {
		reviewed, err := s.reviews.Exists(ctx, m.ID, viewerID)
		if err != nil {
			return nil, err
		}
		canReview = !reviewed
	}

	return &MatchView{
		Match:       *m,
		Context:     *mc,
		ViewerRole:  role,
		PartnerID:   partner,
		PartnerRole: role.Opposite(),
		Status:      models.DisplayStatus(m, viewerID),
		HasMessages: hasMessages,
		CanReview:   canReview,
	}, nil
}
