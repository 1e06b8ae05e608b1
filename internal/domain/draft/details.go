package draft

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/RG-1903/Urban-Drive-sub000/pkg/domain"
)

// DefaultSite is the canonical branch used for both legs when a deep-link
// supplies dates without a location choice.
const DefaultSite = "Downtown Branch"

// VehicleSelection is a snapshot of the chosen catalog item. It is copied into
// the draft so catalog edits cannot shift a quote mid-wizard.
type VehicleSelection struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PerDayRateCents int64     `json:"per_day_rate_cents"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"image_url"`
	Description     string    `json:"description"`
}

// DateRange holds the journey window. DerivedDayCount is fixed at the moment
// the range is set and never recomputed elsewhere, so the displayed and the
// charged duration cannot drift apart.
type DateRange struct {
	PickupDate      time.Time `json:"pickup_date"`
	PickupTime      string    `json:"pickup_time"`
	ReturnDate      time.Time `json:"return_date"`
	ReturnTime      string    `json:"return_time"`
	DerivedDayCount int       `json:"derived_day_count"`
}

// NewDateRange builds a DateRange and derives its day count:
// ceil(|return - pickup| in days) + 1, inclusive of both endpoints.
func NewDateRange(pickupDate time.Time, pickupTime string, returnDate time.Time, returnTime string) (DateRange, error) {
	if pickupDate.IsZero() || returnDate.IsZero() {
		return DateRange{}, domain.NewValidationError("pickup and return dates are required")
	}

	days := math.Abs(returnDate.Sub(pickupDate).Hours()) / 24
	dayCount := int(math.Ceil(days)) + 1

	return DateRange{
		PickupDate:      pickupDate,
		PickupTime:      pickupTime,
		ReturnDate:      returnDate,
		ReturnTime:      returnTime,
		DerivedDayCount: dayCount,
	}, nil
}

// Location holds the pickup and return sites.
type Location struct {
	PickupSite string `json:"pickup_site"`
	ReturnSite string `json:"return_site"`
}

// Normalized returns the location with the return site defaulted to the
// pickup site when unset.
func (l Location) Normalized() Location {
	if l.ReturnSite == "" {
		l.ReturnSite = l.PickupSite
	}
	return l
}

// Protection is the chosen coverage tier.
type Protection struct {
	TierLabel        string `json:"tier_label"`
	PerDayPriceCents int64  `json:"per_day_price_cents"`
}

// BasicProtection is the zero-cost tier a draft falls back to when the
// customer never makes an explicit choice.
func BasicProtection() Protection {
	return Protection{TierLabel: "Basic", PerDayPriceCents: 0}
}

// Extra is an optional per-day add-on (GPS, child seat, ...).
type Extra struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	PerDayPriceCents int64  `json:"per_day_price_cents"`
}

// PaymentDetails holds the payment instrument captured on the payment step.
type PaymentDetails struct {
	Method         string `json:"method"`
	CardholderName string `json:"cardholder_name,omitempty"`
	CardLast4      string `json:"card_last4,omitempty"`
}

// IsComplete reports whether the structurally required instrument fields are present.
func (p PaymentDetails) IsComplete() bool {
	return p.Method != ""
}
