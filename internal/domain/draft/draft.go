package draft

import (
	"time"

	"github.com/google/uuid"

	"github.com/RG-1903/Urban-Drive-sub000/pkg/domain"
)

// Draft is the aggregate root for a booking in progress. Sections are merged
// whole, never partially mutated, and once a reservation ID has been written
// the draft is immutable.
type Draft struct {
	id     uuid.UUID
	userID uuid.UUID
	step   Step

	vehicle               *VehicleSelection
	dateRange             *DateRange
	location              *Location
	protection            *Protection
	extras                []Extra
	payment               *PaymentDetails
	availabilityConfirmed bool

	reservationID      *uuid.UUID
	chargedAmountCents *int64
	currency           string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewDraft creates an empty draft at the vehicle-selection step.
func NewDraft(userID uuid.UUID) (*Draft, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}

	now := time.Now().UTC()
	return &Draft{
		id:        uuid.New(),
		userID:    userID,
		step:      StepVehicle,
		currency:  domain.CurrencyUSD,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructDraft rebuilds a Draft from persistence data (no validation).
func ReconstructDraft(
	id uuid.UUID,
	userID uuid.UUID,
	step Step,
	vehicle *VehicleSelection,
	dateRange *DateRange,
	location *Location,
	protection *Protection,
	extras []Extra,
	payment *PaymentDetails,
	availabilityConfirmed bool,
	reservationID *uuid.UUID,
	chargedAmountCents *int64,
	currency string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Draft {
	return &Draft{
		id:                    id,
		userID:                userID,
		step:                  step,
		vehicle:               vehicle,
		dateRange:             dateRange,
		location:              location,
		protection:            protection,
		extras:                extras,
		payment:               payment,
		availabilityConfirmed: availabilityConfirmed,
		reservationID:         reservationID,
		chargedAmountCents:    chargedAmountCents,
		currency:              currency,
		version:               version,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// --- Getters ---

// ID returns the draft's unique identifier. It doubles as the idempotency key
// for reservation submission.
func (d *Draft) ID() uuid.UUID { return d.id }

// UserID returns the owning customer's user ID.
func (d *Draft) UserID() uuid.UUID { return d.userID }

// Step returns the current wizard step.
func (d *Draft) Step() Step { return d.step }

// Vehicle returns the selected vehicle, or nil if none has been chosen.
func (d *Draft) Vehicle() *VehicleSelection { return d.vehicle }

// DateRange returns the journey window, or nil if not yet set.
func (d *Draft) DateRange() *DateRange { return d.dateRange }

// Location returns the pickup/return sites, or nil if not yet set.
func (d *Draft) Location() *Location { return d.location }

// Protection returns the chosen coverage tier, or nil for the implicit Basic default.
func (d *Draft) Protection() *Protection { return d.protection }

// Extras returns the chosen add-ons in selection order.
func (d *Draft) Extras() []Extra { return d.extras }

// Payment returns the captured payment instrument, or nil.
func (d *Draft) Payment() *PaymentDetails { return d.payment }

// AvailabilityConfirmed reports whether the journey step accepted the
// date/location combination.
func (d *Draft) AvailabilityConfirmed() bool { return d.availabilityConfirmed }

// ReservationID returns the server-issued reservation ID once finalized.
func (d *Draft) ReservationID() *uuid.UUID { return d.reservationID }

// ChargedAmountCents returns the authoritative charged amount once finalized.
func (d *Draft) ChargedAmountCents() *int64 { return d.chargedAmountCents }

// Currency returns the billing currency code.
func (d *Draft) Currency() string { return d.currency }

// Version returns the entity version for optimistic locking.
func (d *Draft) Version() int64 { return d.version }

// CreatedAt returns the creation timestamp.
func (d *Draft) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (d *Draft) UpdatedAt() time.Time { return d.updatedAt }

// IsFinalized reports whether the draft has been committed into a reservation.
func (d *Draft) IsFinalized() bool { return d.reservationID != nil }

// IsSubmittable reports whether the draft carries everything the reservation
// service requires. Protection and extras are excluded: their zero-cost
// defaults are always acceptable.
func (d *Draft) IsSubmittable() bool {
	return d.vehicle != nil &&
		d.dateRange != nil &&
		d.location != nil &&
		d.availabilityConfirmed
}

// --- Behavior ---

func (d *Draft) guardMutable() error {
	if d.IsFinalized() {
		return domain.NewInvalidStateError(d.step.String(), "modified")
	}
	return nil
}

// SelectVehicle replaces the vehicle section. Re-selection is allowed until
// the draft is finalized.
func (d *Draft) SelectVehicle(v VehicleSelection) error {
	if err := d.guardMutable(); err != nil {
		return err
	}
	if v.ID == uuid.Nil {
		return domain.NewValidationError("vehicle ID is required")
	}
	if v.PerDayRateCents < 0 {
		return domain.NewValidationError("vehicle rate cannot be negative")
	}
	d.vehicle = &v
	d.touch()
	return nil
}

// SetDateRange replaces the journey window. The range must carry its derived
// day count, so it always comes from NewDateRange.
func (d *Draft) SetDateRange(r DateRange) error {
	if err := d.guardMutable(); err != nil {
		return err
	}
	if r.DerivedDayCount < 1 {
		return domain.NewValidationError("day count must be at least 1")
	}
	d.dateRange = &r
	d.touch()
	return nil
}

// SetLocation replaces the pickup/return sites.
func (d *Draft) SetLocation(l Location) error {
	if err := d.guardMutable(); err != nil {
		return err
	}
	if l.PickupSite == "" {
		return domain.NewValidationError("pickup site is required")
	}
	d.location = &l
	d.touch()
	return nil
}

// ChooseProtection replaces the coverage tier.
func (d *Draft) ChooseProtection(p Protection) error {
	if err := d.guardMutable(); err != nil {
		return err
	}
	if p.PerDayPriceCents < 0 {
		return domain.NewValidationError("protection price cannot be negative")
	}
	d.protection = &p
	d.touch()
	return nil
}

// SetExtras replaces the add-on list, dropping duplicate IDs while keeping
// first-occurrence order.
func (d *Draft) SetExtras(extras []Extra) error {
	if err := d.guardMutable(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(extras))
	deduped := make([]Extra, 0, len(extras))
	for _, e := range extras {
		if e.PerDayPriceCents < 0 {
			return domain.NewValidationError("extra price cannot be negative")
		}
		if e.ID == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		deduped = append(deduped, e)
	}

	d.extras = deduped
	d.touch()
	return nil
}

// SetPayment replaces the payment instrument.
func (d *Draft) SetPayment(p PaymentDetails) error {
	if err := d.guardMutable(); err != nil {
		return err
	}
	if !p.IsComplete() {
		return domain.NewValidationError("payment method is required")
	}
	d.payment = &p
	d.touch()
	return nil
}

// ConfirmAvailability marks the current date/location combination as accepted.
func (d *Draft) ConfirmAvailability() error {
	if err := d.guardMutable(); err != nil {
		return err
	}
	d.availabilityConfirmed = true
	d.touch()
	return nil
}

// AdvanceStep moves forward one step. The payment step cannot be advanced
// this way: it is left only through Finalize.
func (d *Draft) AdvanceStep() error {
	next, ok := d.step.Next()
	if !ok {
		return domain.NewInvalidStateError(d.step.String(), "next step")
	}
	d.step = next
	d.touch()
	return nil
}

// RetreatStep moves back one step.
func (d *Draft) RetreatStep() error {
	prev, ok := d.step.Prev()
	if !ok {
		return domain.NewInvalidStateError(d.step.String(), "previous step")
	}
	d.step = prev
	d.touch()
	return nil
}

// Finalize records the server-issued reservation and freezes the draft at the
// confirmation step. Requires a submittable draft on the payment step.
func (d *Draft) Finalize(reservationID uuid.UUID, chargedAmountCents int64) error {
	if d.IsFinalized() {
		return domain.NewInvalidStateError(StepConfirmed.String(), StepConfirmed.String())
	}
	if d.step != StepPayment {
		return domain.NewInvalidStateError(d.step.String(), StepConfirmed.String())
	}
	if !d.IsSubmittable() {
		return domain.NewValidationError("draft is missing required sections")
	}
	if reservationID == uuid.Nil {
		return domain.NewValidationError("reservation ID is required")
	}

	d.reservationID = &reservationID
	d.chargedAmountCents = &chargedAmountCents
	d.step = StepConfirmed
	d.touch()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (d *Draft) IncrementVersion() {
	d.version++
	d.touch()
}

func (d *Draft) touch() {
	d.updatedAt = time.Now().UTC()
}
