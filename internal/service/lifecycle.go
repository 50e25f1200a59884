package service

import (
	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/apperr"
	"github.com/lalith-99/skillmatch/internal/models"
)

type action string

const (
	actionReport  action = "report completion of"
	actionConfirm action = "confirm completion of"
	actionCancel  action = "cancel"
)

// transitions lists every legal edge. Anything missing is InvalidState.
var transitions = map[models.Phase]map[action]models.Phase{
	models.PhaseOpen: {
		actionReport: models.PhaseAwaitingConfirmation,
		actionCancel: models.PhaseCancelled,
	},
	models.PhaseAwaitingConfirmation: {
		actionConfirm: models.PhaseCompleted,
		actionCancel:  models.PhaseCancelled,
	},
	models.PhaseCompleted: {},
	models.PhaseCancelled: {},
}

func nextPhase(from models.Phase, a action) (models.Phase, bool) {
	to, ok := transitions[from][a]
	return to, ok
}

// checkTransition decides whether actorID may apply a to m. The caller has
// already established that actorID is a participant.
func checkTransition(op string, a action, m *models.Match, actorID uuid.UUID) error {
	phase := m.Phase()
	if _, ok := nextPhase(phase, a); !ok {
		switch {
		case a == actionReport && phase == models.PhaseAwaitingConfirmation:
			if m.ReportedBy(actorID) {
				return apperr.InvalidState(op, "completion already reported; waiting for your partner to confirm")
			}
			return apperr.InvalidState(op, "your partner already reported completion; confirm it instead")
		case a == actionConfirm && phase == models.PhaseOpen:
			return apperr.InvalidState(op, "no completion report to confirm")
		default:
			return apperr.InvalidState(op, "cannot %s a match that is %s", a, phase)
		}
	}

	if a == actionConfirm && m.ReportedBy(actorID) {
		return apperr.Forbidden(op, "you cannot confirm your own completion report")
	}
	return nil
}
