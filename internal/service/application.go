package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/apperr"
	"github.com/lalith-99/skillmatch/internal/events"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/repository"
	"go.uber.org/zap"
)

// ApplicationService turns an accepted application into a match.
type ApplicationService struct {
	applications repository.ApplicationRepository
	notifier     notifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewApplicationService(applications repository.ApplicationRepository, publisher events.Publisher, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		notifier:     notifier{publisher: publisher, logger: logger},
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Accept is called by the post owner. Acceptance and match creation commit
// together, so an application is never left accepted without its match.
func (s *ApplicationService) Accept(ctx context.Context, applicationID, ownerID uuid.UUID) (*models.Match, error) {
	const op = "application.accept"

	var applicantID uuid.UUID
	check := func(app *models.Application, post *models.Post) error {
		if post.OwnerID != ownerID {
			return apperr.Forbidden(op, "only the post owner can accept applications")
		}
		if app.Status != models.ApplicationPending {
			return apperr.InvalidState(op, "application is %s, not pending", app.Status)
		}
		if post.Status != models.PostStatusOpen {
			return apperr.InvalidState(op, "post is closed")
		}
		applicantID = app.ApplicantID
		return nil
	}

	m, err := s.applications.Accept(ctx, applicationID, check)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.NotFound(op, "application not found")
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.AlreadyExists(op, "a match already exists for this application")
	case err != nil:
		return nil, apperr.Unavailable(op, err)
	}

	s.logger.Info("application accepted",
		zap.Stringer("application_id", applicationID),
		zap.Stringer("match_id", m.ID),
	)
	s.notifier.notify(ctx, events.ApplicationAccepted, m.ID, ownerID, s.now(), applicantID)
	return m, nil
}
