package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	draftDomain "github.com/RG-1903/Urban-Drive-sub000/internal/domain/draft"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/domain"
)

// DraftModel is the GORM model for the booking_drafts table.
type DraftModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID                uuid.UUID       `gorm:"type:uuid;index;not null"`
	Step                  int             `gorm:"not null;index"`
	Vehicle               json.RawMessage `gorm:"type:jsonb"`
	DateRange             json.RawMessage `gorm:"type:jsonb"`
	Location              json.RawMessage `gorm:"type:jsonb"`
	Protection            json.RawMessage `gorm:"type:jsonb"`
	Extras                json.RawMessage `gorm:"type:jsonb"`
	Payment               json.RawMessage `gorm:"type:jsonb"`
	AvailabilityConfirmed bool            `gorm:"not null;default:false"`
	ReservationID         *uuid.UUID      `gorm:"type:uuid;index"`
	ChargedAmountCents    *int64          `gorm:""`
	Currency              string          `gorm:"not null;size:3;default:'USD'"`
	Version               int64           `gorm:"not null;default:1"`
	CreatedAt             time.Time       `gorm:"not null"`
	UpdatedAt             time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DraftModel) TableName() string {
	return "booking_drafts"
}

// GormDraftRepository is the GORM-based implementation of DraftRepository.
type GormDraftRepository struct {
	db *gorm.DB
}

// NewGormDraftRepository creates a new GormDraftRepository.
func NewGormDraftRepository(db *gorm.DB) *GormDraftRepository {
	return &GormDraftRepository{db: db}
}

// FindByID retrieves a draft by its unique identifier.
func (r *GormDraftRepository) FindByID(ctx context.Context, id uuid.UUID) (*draftDomain.Draft, error) {
	var model DraftModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Draft", id.String())
		}
		return nil, fmt.Errorf("failed to find draft by ID: %w", err)
	}
	return toDomainDraft(&model)
}

// FindActiveByUserID retrieves a user's unfinished drafts with pagination.
func (r *GormDraftRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*draftDomain.Draft, int64, error) {
	query := r.db.WithContext(ctx).Model(&DraftModel{}).
		Where("user_id = ? AND reservation_id IS NULL", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user drafts: %w", err)
	}

	var models []DraftModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user drafts: %w", err)
	}

	return toDomainDrafts(models, total)
}

// ListAll retrieves all drafts with pagination (admin).
func (r *GormDraftRepository) ListAll(ctx context.Context, page, limit int) ([]*draftDomain.Draft, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&DraftModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count drafts: %w", err)
	}

	var models []DraftModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list drafts: %w", err)
	}

	return toDomainDrafts(models, total)
}

// CountByStep returns draft counts grouped by step name (admin funnel view).
func (r *GormDraftRepository) CountByStep(ctx context.Context) (map[string]int64, error) {
	type stepCount struct {
		Step  int
		Count int64
	}
	var results []stepCount
	if err := r.db.WithContext(ctx).Model(&DraftModel{}).
		Select("step, count(*) as count").
		Group("step").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by step: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[draftDomain.Step(sc.Step).String()] = sc.Count
	}
	return counts, nil
}

// Save persists a new draft.
func (r *GormDraftRepository) Save(ctx context.Context, d *draftDomain.Draft) error {
	model, err := toDraftModel(d)
	if err != nil {
		return fmt.Errorf("failed to convert draft to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Update persists changes to an existing draft with optimistic locking. A
// re-entrant submission loses the version race here and surfaces as a conflict.
func (r *GormDraftRepository) Update(ctx context.Context, d *draftDomain.Draft) error {
	model, err := toDraftModel(d)
	if err != nil {
		return fmt.Errorf("failed to convert draft to model: %w", err)
	}

	// Only update if the version matches (current version - 1 since
	// IncrementVersion was called before Update).
	expectedVersion := d.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&DraftModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"step":                   model.Step,
			"vehicle":                model.Vehicle,
			"date_range":             model.DateRange,
			"location":               model.Location,
			"protection":             model.Protection,
			"extras":                 model.Extras,
			"payment":                model.Payment,
			"availability_confirmed": model.AvailabilityConfirmed,
			"reservation_id":         model.ReservationID,
			"charged_amount_cents":   model.ChargedAmountCents,
			"currency":               model.Currency,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update draft: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("draft was modified by another request")
	}
	return nil
}

// Delete removes a draft.
func (r *GormDraftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DraftModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete draft: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Draft", id.String())
	}
	return nil
}

// DeleteActiveByUserID removes all of a user's unfinished drafts.
func (r *GormDraftRepository) DeleteActiveByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND reservation_id IS NULL", userID).
		Delete(&DraftModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete user drafts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Conversion Helpers ---

func marshalSection(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func toDraftModel(d *draftDomain.Draft) (*DraftModel, error) {
	model := &DraftModel{
		ID:                    d.ID(),
		UserID:                d.UserID(),
		Step:                  int(d.Step()),
		AvailabilityConfirmed: d.AvailabilityConfirmed(),
		ReservationID:         d.ReservationID(),
		ChargedAmountCents:    d.ChargedAmountCents(),
		Currency:              d.Currency(),
		Version:               d.Version(),
		CreatedAt:             d.CreatedAt(),
		UpdatedAt:             d.UpdatedAt(),
	}

	var err error
	if d.Vehicle() != nil {
		if model.Vehicle, err = marshalSection(d.Vehicle()); err != nil {
			return nil, fmt.Errorf("failed to marshal vehicle: %w", err)
		}
	}
	if d.DateRange() != nil {
		if model.DateRange, err = marshalSection(d.DateRange()); err != nil {
			return nil, fmt.Errorf("failed to marshal date range: %w", err)
		}
	}
	if d.Location() != nil {
		if model.Location, err = marshalSection(d.Location()); err != nil {
			return nil, fmt.Errorf("failed to marshal location: %w", err)
		}
	}
	if d.Protection() != nil {
		if model.Protection, err = marshalSection(d.Protection()); err != nil {
			return nil, fmt.Errorf("failed to marshal protection: %w", err)
		}
	}
	if len(d.Extras()) > 0 {
		if model.Extras, err = marshalSection(d.Extras()); err != nil {
			return nil, fmt.Errorf("failed to marshal extras: %w", err)
		}
	}
	if d.Payment() != nil {
		if model.Payment, err = marshalSection(d.Payment()); err != nil {
			return nil, fmt.Errorf("failed to marshal payment: %w", err)
		}
	}

	return model, nil
}

func toDomainDraft(m *DraftModel) (*draftDomain.Draft, error) {
	step, err := draftDomain.ParseStep(m.Step)
	if err != nil {
		return nil, err
	}

	var vehicle *draftDomain.VehicleSelection
	if len(m.Vehicle) > 0 {
		var v draftDomain.VehicleSelection
		if err := json.Unmarshal(m.Vehicle, &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vehicle: %w", err)
		}
		vehicle = &v
	}

	var dateRange *draftDomain.DateRange
	if len(m.DateRange) > 0 {
		var r draftDomain.DateRange
		if err := json.Unmarshal(m.DateRange, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal date range: %w", err)
		}
		dateRange = &r
	}

	var location *draftDomain.Location
	if len(m.Location) > 0 {
		var l draftDomain.Location
		if err := json.Unmarshal(m.Location, &l); err != nil {
			return nil, fmt.Errorf("failed to unmarshal location: %w", err)
		}
		location = &l
	}

	var protection *draftDomain.Protection
	if len(m.Protection) > 0 {
		var p draftDomain.Protection
		if err := json.Unmarshal(m.Protection, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal protection: %w", err)
		}
		protection = &p
	}

	var extras []draftDomain.Extra
	if len(m.Extras) > 0 {
		if err := json.Unmarshal(m.Extras, &extras); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extras: %w", err)
		}
	}

	var payment *draftDomain.PaymentDetails
	if len(m.Payment) > 0 {
		var p draftDomain.PaymentDetails
		if err := json.Unmarshal(m.Payment, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
		}
		payment = &p
	}

	return draftDomain.ReconstructDraft(
		m.ID,
		m.UserID,
		step,
		vehicle,
		dateRange,
		location,
		protection,
		extras,
		payment,
		m.AvailabilityConfirmed,
		m.ReservationID,
		m.ChargedAmountCents,
		m.Currency,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainDrafts(models []DraftModel, total int64) ([]*draftDomain.Draft, int64, error) {
	drafts := make([]*draftDomain.Draft, len(models))
	for i, m := range models {
		d, err := toDomainDraft(&m)
		if err != nil {
			return nil, 0, err
		}
		drafts[i] = d
	}
	return drafts, total, nil
}
