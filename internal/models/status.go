package models

import "github.com/google/uuid"

// Phase is the lifecycle position of a match. It refines MatchActive into
// two sub-states using completed_by; it is never stored.
type Phase string

const (
	PhaseOpen                 Phase = "open"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
	PhaseCompleted            Phase = "completed"
	PhaseCancelled            Phase = "cancelled"
)

func (m *Match) Phase() Phase {
	switch m.Status {
	case MatchCompleted:
		return PhaseCompleted
	case MatchCancelled:
		return PhaseCancelled
	}
	if m.CompletedBy != nil {
		return PhaseAwaitingConfirmation
	}
	return PhaseOpen
}

type StatusCode string

const (
	StatusActive           StatusCode = "active"
	StatusWaitingOnPartner StatusCode = "waiting_on_partner"
	StatusPartnerReported  StatusCode = "partner_reported"
	StatusCompleted        StatusCode = "completed"
	StatusCancelled        StatusCode = "cancelled"
)

// StatusBadge is what a client renders next to a match.
type StatusBadge struct {
	Code    StatusCode `json:"code"`
	Phase   Phase      `json:"phase"`
	LabelJA string     `json:"label_ja"`
	LabelEN string     `json:"label_en"`
	// ActionRequired is set when viewerID is expected to confirm.
	ActionRequired bool `json:"action_required"`
}

// DisplayStatus is the only place the badge for a match is computed. The
// awaiting phase reads differently to the reporter and to the partner.
func DisplayStatus(m *Match, viewerID uuid.UUID) StatusBadge {
	switch m.Phase() {
	case PhaseCompleted:
		return StatusBadge{Code: StatusCompleted, Phase: PhaseCompleted, LabelJA: "完了", LabelEN: "Completed"}
	case PhaseCancelled:
		return StatusBadge{Code: StatusCancelled, Phase: PhaseCancelled, LabelJA: "キャンセル", LabelEN: "Cancelled"}
	case PhaseAwaitingConfirmation:
		if m.ReportedBy(viewerID) {
			return StatusBadge{
				Code:    StatusWaitingOnPartner,
				Phase:   PhaseAwaitingConfirmation,
				LabelJA: "相手の承認待ち",
				LabelEN: "Waiting on partner",
			}
		}
		return StatusBadge{
			Code:           StatusPartnerReported,
			Phase:          PhaseAwaitingConfirmation,
			LabelJA:        "相手が完了報告",
			LabelEN:        "Partner reported completion",
			ActionRequired: true,
		}
	default:
		return StatusBadge{Code: StatusActive, Phase: PhaseOpen, LabelJA: "進行中", LabelEN: "Active"}
	}
}
