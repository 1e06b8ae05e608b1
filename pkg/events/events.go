package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicWizardEvents = "rental.wizard.events"
	TopicAuthEvents   = "auth.events"
)

// Event types.
const (
	WizardStarted              = "wizard.started"
	WizardReservationConfirmed = "wizard.reservation.confirmed"
	WizardDraftDiscarded       = "wizard.draft.discarded"
	AuthSessionRevoked         = "auth.session.revoked"
)

// WizardStartedEvent is published when a booking draft is created.
type WizardStartedEvent struct {
	DraftID    uuid.UUID  `json:"draft_id"`
	UserID     uuid.UUID  `json:"user_id"`
	VehicleID  *uuid.UUID `json:"vehicle_id,omitempty"`
	StartStep  int        `json:"start_step"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// ReservationConfirmedEvent is published when a draft is committed into a reservation.
type ReservationConfirmedEvent struct {
	DraftID            uuid.UUID `json:"draft_id"`
	UserID             uuid.UUID `json:"user_id"`
	ReservationID      uuid.UUID `json:"reservation_id"`
	VehicleID          uuid.UUID `json:"vehicle_id"`
	ChargedAmountCents int64     `json:"charged_amount_cents"`
	Currency           string    `json:"currency"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// DraftDiscardedEvent is published when an unfinished draft is abandoned.
type DraftDiscardedEvent struct {
	DraftID    uuid.UUID `json:"draft_id"`
	UserID     uuid.UUID `json:"user_id"`
	Step       int       `json:"step"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SessionRevokedEvent is consumed from the auth service when a user session ends.
type SessionRevokedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	SessionID  uuid.UUID `json:"session_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
