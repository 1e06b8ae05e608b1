package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	draftDomain "github.com/RG-1903/Urban-Drive-sub000/internal/domain/draft"
	"github.com/RG-1903/Urban-Drive-sub000/internal/gateway"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/domain"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/events"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/kafka"
)

// VehicleCatalog is the catalog collaborator boundary.
type VehicleCatalog interface {
	FetchVehicle(ctx context.Context, token string, id uuid.UUID) (*draftDomain.VehicleSelection, error)
}

// ReservationService is the reservation-creation collaborator boundary.
type ReservationService interface {
	CreateReservation(ctx context.Context, token, idempotencyKey string, req gateway.CreateReservationRequest) (*gateway.ReservationConfirmation, error)
}

// EventPublisher publishes CloudEvents. Satisfied by *kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// StartWizardRequest carries the two optional entry signals: a referenced
// vehicle and a pre-selected date range handed over by the quick-search screen.
type StartWizardRequest struct {
	VehicleID        *uuid.UUID        `json:"vehicle_id"`
	PreselectedDates *PreselectedDates `json:"preselected_dates"`
}

// PreselectedDates is a date range seeded by an upstream screen.
type PreselectedDates struct {
	PickupDate time.Time `json:"pickup_date" binding:"required"`
	PickupTime string    `json:"pickup_time"`
	ReturnDate time.Time `json:"return_date" binding:"required"`
	ReturnTime string    `json:"return_time"`
}

// DraftUpdate is a partial, whole-section merge applied on advance. Absent
// sections are left untouched.
type DraftUpdate struct {
	VehicleID  *uuid.UUID                  `json:"vehicle_id"`
	DateRange  *PreselectedDates           `json:"date_range"`
	Location   *draftDomain.Location       `json:"location"`
	Protection *draftDomain.Protection     `json:"protection"`
	Extras     *[]draftDomain.Extra        `json:"extras"`
	Payment    *draftDomain.PaymentDetails `json:"payment"`
}

// DraftDTO is the response representation of a booking draft.
type DraftDTO struct {
	ID                    uuid.UUID                     `json:"id"`
	UserID                uuid.UUID                     `json:"user_id"`
	Step                  int                           `json:"step"`
	StepName              string                        `json:"step_name"`
	Vehicle               *draftDomain.VehicleSelection `json:"vehicle,omitempty"`
	DateRange             *draftDomain.DateRange        `json:"date_range,omitempty"`
	Location              *draftDomain.Location         `json:"location,omitempty"`
	Protection            *draftDomain.Protection       `json:"protection,omitempty"`
	Extras                []draftDomain.Extra           `json:"extras,omitempty"`
	Payment               *draftDomain.PaymentDetails   `json:"payment,omitempty"`
	AvailabilityConfirmed bool                          `json:"availability_confirmed"`
	ReservationID         *uuid.UUID                    `json:"reservation_id,omitempty"`
	ChargedAmountCents    *int64                        `json:"charged_amount_cents,omitempty"`
	Currency              string                        `json:"currency"`
	Version               int64                         `json:"version"`
	CreatedAt             time.Time                     `json:"created_at"`
	UpdatedAt             time.Time                     `json:"updated_at"`
}

// StartWizardResponse carries the initial draft plus a non-fatal load error
// note when the deep-linked vehicle could not be fetched.
type StartWizardResponse struct {
	Draft     DraftDTO `json:"draft"`
	LoadError string   `json:"load_error,omitempty"`
}

// WizardService drives the booking wizard: entry resolution, step
// transitions, live pricing and the final hand-off to the reservation service.
type WizardService struct {
	repo         draftDomain.DraftRepository
	pricing      draftDomain.PricingStrategy
	availability draftDomain.AvailabilityChecker
	catalog      VehicleCatalog
	reservations ReservationService
	producer     EventPublisher
	logger       *zap.Logger
}

// NewWizardService creates a new WizardService.
func NewWizardService(
	repo draftDomain.DraftRepository,
	pricing draftDomain.PricingStrategy,
	availability draftDomain.AvailabilityChecker,
	catalog VehicleCatalog,
	reservations ReservationService,
	producer EventPublisher,
	logger *zap.Logger,
) *WizardService {
	return &WizardService{
		repo:         repo,
		pricing:      pricing,
		availability: availability,
		catalog:      catalog,
		reservations: reservations,
		producer:     producer,
		logger:       logger,
	}
}

// StartWizard resolves the entry signals into one of three starting shapes:
// cold start at the vehicle step, vehicle-only at the journey step, or the
// deep-link fast path straight to payment when dates were pre-selected too.
func (s *WizardService) StartWizard(ctx context.Context, userID uuid.UUID, token string, req StartWizardRequest) (*StartWizardResponse, error) {
	d, err := draftDomain.NewDraft(userID)
	if err != nil {
		return nil, err
	}

	loadError := ""
	if req.VehicleID != nil {
		vehicle, fetchErr := s.catalog.FetchVehicle(ctx, token, *req.VehicleID)
		if fetchErr != nil {
			// Fail open to manual selection: the customer can still pick a
			// vehicle on the first step.
			s.logger.Warn("deep-linked vehicle could not be loaded",
				zap.String("vehicle_id", req.VehicleID.String()),
				zap.Error(fetchErr),
			)
			loadError = "The selected vehicle could not be loaded. Please choose a vehicle to continue."
		} else {
			if err := s.seedFromEntry(ctx, d, *vehicle, req.PreselectedDates); err != nil {
				return nil, err
			}
		}
	}

	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.publishWizardStarted(ctx, d, req.VehicleID)

	return &StartWizardResponse{Draft: toDraftDTO(d), LoadError: loadError}, nil
}

// seedFromEntry applies the deep-link signals through the same merge and
// validation machinery regular step transitions use, so both entry protocols
// converge on one internal representation.
func (s *WizardService) seedFromEntry(ctx context.Context, d *draftDomain.Draft, vehicle draftDomain.VehicleSelection, dates *PreselectedDates) error {
	if err := d.SelectVehicle(vehicle); err != nil {
		return err
	}
	if err := d.AdvanceStep(); err != nil { // vehicle -> journey
		return err
	}

	if dates == nil {
		return nil
	}

	r, err := draftDomain.NewDateRange(dates.PickupDate, dates.PickupTime, dates.ReturnDate, dates.ReturnTime)
	if err != nil {
		return err
	}
	if err := d.SetDateRange(r); err != nil {
		return err
	}

	location := draftDomain.Location{PickupSite: draftDomain.DefaultSite, ReturnSite: draftDomain.DefaultSite}
	if err := d.SetLocation(location); err != nil {
		return err
	}

	available, err := s.availability.Check(ctx, vehicle.ID, r, location)
	if err != nil {
		return fmt.Errorf("availability check failed: %w", err)
	}
	if !available {
		return domain.NewValidationError("vehicle is not available for the selected dates")
	}
	if err := d.ConfirmAvailability(); err != nil {
		return err
	}

	if err := d.ChooseProtection(draftDomain.BasicProtection()); err != nil {
		return err
	}

	// journey -> protection -> payment, re-validating each boundary.
	for i := 0; i < 2; i++ {
		if !draftDomain.CanLeave(d.Step(), d) {
			return domain.NewValidationError(fmt.Sprintf("step %s is incomplete", d.Step()))
		}
		if err := d.AdvanceStep(); err != nil {
			return err
		}
	}
	return nil
}

// Advance merges the partial update and moves the wizard forward. On the
// payment step submission replaces the plain increment. Any failure leaves
// the stored draft and step index exactly as they were.
func (s *WizardService) Advance(ctx context.Context, userID uuid.UUID, token string, draftID uuid.UUID, update DraftUpdate) (*DraftDTO, error) {
	d, err := s.loadOwned(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}

	// Terminal drafts accept no further navigation.
	if d.Step().IsTerminal() {
		result := toDraftDTO(d)
		return &result, nil
	}

	// The merge and validation below run on the loaded copy only; nothing is
	// persisted until the transition has fully succeeded.
	if err := s.applyUpdate(ctx, token, d, update); err != nil {
		return nil, err
	}

	if !draftDomain.CanLeave(d.Step(), d) {
		return nil, domain.NewValidationError(fmt.Sprintf("step %s is incomplete", d.Step()))
	}

	if d.Step() == draftDomain.StepPayment {
		return s.submit(ctx, token, d)
	}

	if err := d.AdvanceStep(); err != nil {
		return nil, err
	}
	d.IncrementVersion()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	result := toDraftDTO(d)
	return &result, nil
}

// submit recomputes the authoritative total and performs the one network
// write that commits the draft into a reservation.
func (s *WizardService) submit(ctx context.Context, token string, d *draftDomain.Draft) (*DraftDTO, error) {
	if !d.IsSubmittable() {
		return nil, domain.NewValidationError("draft is missing required sections")
	}

	quote := s.pricing.Quote(d)
	location := d.Location().Normalized()

	protection := draftDomain.BasicProtection()
	if d.Protection() != nil {
		protection = *d.Protection()
	}

	req := gateway.CreateReservationRequest{
		VehicleID:       d.Vehicle().ID,
		StartDate:       d.DateRange().PickupDate,
		EndDate:         d.DateRange().ReturnDate,
		PickupLocation:  location.PickupSite,
		ReturnLocation:  location.ReturnSite,
		Protection:      protection,
		Extras:          d.Extras(),
		PaymentMethod:   d.Payment().Method,
		TotalPriceCents: quote.GrandTotalCents,
		Currency:        d.Currency(),
	}

	confirmation, err := s.reservations.CreateReservation(ctx, token, d.ID().String(), req)
	if err != nil {
		// The stored draft was never touched: the customer stays on the
		// payment step and may retry.
		s.logger.Warn("reservation submission failed",
			zap.String("draft_id", d.ID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := d.Finalize(confirmation.ReservationID, confirmation.ChargedAmountCents); err != nil {
		return nil, err
	}
	d.IncrementVersion()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	s.publishReservationConfirmed(ctx, d, confirmation)

	result := toDraftDTO(d)
	return &result, nil
}

// Retreat moves the wizard back one step. Retreating at the first step and on
// a terminal draft are both no-ops; the enclosing navigation owns anything
// before step one.
func (s *WizardService) Retreat(ctx context.Context, userID, draftID uuid.UUID) (*DraftDTO, error) {
	d, err := s.loadOwned(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}

	if d.Step().IsTerminal() || d.Step() == draftDomain.StepVehicle {
		result := toDraftDTO(d)
		return &result, nil
	}

	if err := d.RetreatStep(); err != nil {
		return nil, err
	}
	d.IncrementVersion()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	result := toDraftDTO(d)
	return &result, nil
}

// GetWizard retrieves the caller's draft.
func (s *WizardService) GetWizard(ctx context.Context, userID, draftID uuid.UUID) (*DraftDTO, error) {
	d, err := s.loadOwned(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	result := toDraftDTO(d)
	return &result, nil
}

// GetQuote returns the live itemized estimate for the caller's draft.
func (s *WizardService) GetQuote(ctx context.Context, userID, draftID uuid.UUID) (*draftDomain.Quote, error) {
	d, err := s.loadOwned(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	quote := s.pricing.Quote(d)
	return &quote, nil
}

// Discard removes an unfinished draft. Finalized drafts are receipts and
// cannot be discarded.
func (s *WizardService) Discard(ctx context.Context, userID, draftID uuid.UUID) error {
	d, err := s.loadOwned(ctx, userID, draftID)
	if err != nil {
		return err
	}
	if d.IsFinalized() {
		return domain.NewInvalidStateError(d.Step().String(), "discarded")
	}

	if err := s.repo.Delete(ctx, d.ID()); err != nil {
		return err
	}

	evt := events.DraftDiscardedEvent{
		DraftID:    d.ID(),
		UserID:     d.UserID(),
		Step:       int(d.Step()),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicWizardEvents, events.WizardDraftDiscarded, evt)
	return nil
}

// DiscardUserDrafts removes all unfinished drafts for a user. Called when the
// auth service revokes their session.
func (s *WizardService) DiscardUserDrafts(ctx context.Context, userID uuid.UUID) (int64, error) {
	removed, err := s.repo.DeleteActiveByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("discarded drafts for revoked session",
			zap.String("user_id", userID.String()),
			zap.Int64("count", removed),
		)
	}
	return removed, nil
}

// ListUserDrafts retrieves the caller's unfinished drafts.
func (s *WizardService) ListUserDrafts(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[DraftDTO], error) {
	drafts, total, err := s.repo.FindActiveByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]DraftDTO, len(drafts))
	for i, d := range drafts {
		dtos[i] = toDraftDTO(d)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// DraftStatsDTO holds wizard funnel statistics for the admin console.
type DraftStatsDTO struct {
	TotalDrafts int64            `json:"total_drafts"`
	ByStep      map[string]int64 `json:"by_step"`
}

// ListAllDrafts returns a paginated list of all drafts (admin).
func (s *WizardService) ListAllDrafts(ctx context.Context, page, limit int) ([]DraftDTO, int64, error) {
	drafts, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drafts: %w", err)
	}

	dtos := make([]DraftDTO, len(drafts))
	for i, d := range drafts {
		dtos[i] = toDraftDTO(d)
	}
	return dtos, total, nil
}

// GetDraftStats returns per-step draft counts (admin funnel view).
func (s *WizardService) GetDraftStats(ctx context.Context) (*DraftStatsDTO, error) {
	counts, err := s.repo.CountByStep(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &DraftStatsDTO{TotalDrafts: total, ByStep: counts}, nil
}

// --- Helpers ---

func (s *WizardService) loadOwned(ctx context.Context, userID, draftID uuid.UUID) (*draftDomain.Draft, error) {
	d, err := s.repo.FindByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.UserID() != userID {
		return nil, domain.NewForbiddenError("draft does not belong to this user")
	}
	return d, nil
}

// applyUpdate merges the update's sections into the draft. A vehicle section
// is re-fetched from the catalog so the draft always holds an authoritative
// snapshot; availability is re-confirmed when the journey step changes its
// date or location data.
func (s *WizardService) applyUpdate(ctx context.Context, token string, d *draftDomain.Draft, update DraftUpdate) error {
	if update.VehicleID != nil {
		vehicle, err := s.catalog.FetchVehicle(ctx, token, *update.VehicleID)
		if err != nil {
			return err
		}
		if err := d.SelectVehicle(*vehicle); err != nil {
			return err
		}
	}

	if update.DateRange != nil {
		r, err := draftDomain.NewDateRange(
			update.DateRange.PickupDate, update.DateRange.PickupTime,
			update.DateRange.ReturnDate, update.DateRange.ReturnTime,
		)
		if err != nil {
			return err
		}
		if err := d.SetDateRange(r); err != nil {
			return err
		}
	}

	if update.Location != nil {
		if err := d.SetLocation(*update.Location); err != nil {
			return err
		}
	}

	// Only the journey step confirms availability, and only once both the
	// range and the location are known.
	if d.Step() == draftDomain.StepJourney &&
		(update.DateRange != nil || update.Location != nil) &&
		d.DateRange() != nil && d.Location() != nil && d.Vehicle() != nil {
		available, err := s.availability.Check(ctx, d.Vehicle().ID, *d.DateRange(), *d.Location())
		if err != nil {
			return fmt.Errorf("availability check failed: %w", err)
		}
		if !available {
			return domain.NewValidationError("vehicle is not available for the selected dates")
		}
		if err := d.ConfirmAvailability(); err != nil {
			return err
		}
	}

	if update.Protection != nil {
		if err := d.ChooseProtection(*update.Protection); err != nil {
			return err
		}
	}

	if update.Extras != nil {
		if err := d.SetExtras(*update.Extras); err != nil {
			return err
		}
	}

	if update.Payment != nil {
		if err := d.SetPayment(*update.Payment); err != nil {
			return err
		}
	}

	return nil
}

func toDraftDTO(d *draftDomain.Draft) DraftDTO {
	return DraftDTO{
		ID:                    d.ID(),
		UserID:                d.UserID(),
		Step:                  int(d.Step()),
		StepName:              d.Step().String(),
		Vehicle:               d.Vehicle(),
		DateRange:             d.DateRange(),
		Location:              d.Location(),
		Protection:            d.Protection(),
		Extras:                d.Extras(),
		Payment:               d.Payment(),
		AvailabilityConfirmed: d.AvailabilityConfirmed(),
		ReservationID:         d.ReservationID(),
		ChargedAmountCents:    d.ChargedAmountCents(),
		Currency:              d.Currency(),
		Version:               d.Version(),
		CreatedAt:             d.CreatedAt(),
		UpdatedAt:             d.UpdatedAt(),
	}
}

func (s *WizardService) publishWizardStarted(ctx context.Context, d *draftDomain.Draft, vehicleID *uuid.UUID) {
	evt := events.WizardStartedEvent{
		DraftID:    d.ID(),
		UserID:     d.UserID(),
		VehicleID:  vehicleID,
		StartStep:  int(d.Step()),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicWizardEvents, events.WizardStarted, evt)
}

func (s *WizardService) publishReservationConfirmed(ctx context.Context, d *draftDomain.Draft, confirmation *gateway.ReservationConfirmation) {
	evt := events.ReservationConfirmedEvent{
		DraftID:            d.ID(),
		UserID:             d.UserID(),
		ReservationID:      confirmation.ReservationID,
		VehicleID:          d.Vehicle().ID,
		ChargedAmountCents: confirmation.ChargedAmountCents,
		Currency:           d.Currency(),
		OccurredAt:         time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicWizardEvents, events.WizardReservationConfirmed, evt)
}

func (s *WizardService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-rental-wizard", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
