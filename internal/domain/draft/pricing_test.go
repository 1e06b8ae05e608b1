package draft

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVehicle(rateCents int64) VehicleSelection {
	return VehicleSelection{
		ID:              uuid.New(),
		Name:            "Compact Sedan",
		PerDayRateCents: rateCents,
		Category:        "economy",
	}
}

func mustDateRange(t *testing.T, pickup, ret string) DateRange {
	t.Helper()
	p, err := time.Parse("2006-01-02", pickup)
	require.NoError(t, err)
	r, err := time.Parse("2006-01-02", ret)
	require.NoError(t, err)
	dr, err := NewDateRange(p, "10:00", r, "10:00")
	require.NoError(t, err)
	return dr
}

func TestQuote_ItemizedTotals(t *testing.T) {
	d, err := NewDraft(uuid.New())
	require.NoError(t, err)
	require.NoError(t, d.SelectVehicle(testVehicle(10000)))
	require.NoError(t, d.SetDateRange(mustDateRange(t, "2024-06-01", "2024-06-03")))
	require.NoError(t, d.ChooseProtection(Protection{TierLabel: "Standard", PerDayPriceCents: 2500}))
	require.NoError(t, d.SetExtras([]Extra{{ID: "gps", Label: "GPS", PerDayPriceCents: 1500}}))

	q := NewStandardPricingStrategy().Quote(d)

	assert.Equal(t, int64(14000), q.DailyTotalCents)
	assert.Equal(t, 3, q.Days)
	assert.Equal(t, int64(42000), q.GrandTotalCents)
	assert.Len(t, q.Lines, 3)
}

func TestQuote_NoVehicleIsZero(t *testing.T) {
	d, err := NewDraft(uuid.New())
	require.NoError(t, err)
	require.NoError(t, d.SetDateRange(mustDateRange(t, "2024-06-01", "2024-06-10")))

	q := NewStandardPricingStrategy().Quote(d)

	assert.Zero(t, q.DailyTotalCents)
	assert.Zero(t, q.GrandTotalCents)
	assert.Empty(t, q.Lines)
}

func TestQuote_DayCountFloor(t *testing.T) {
	// Before a date range is chosen the quote shows a single-day estimate.
	d, err := NewDraft(uuid.New())
	require.NoError(t, err)
	require.NoError(t, d.SelectVehicle(testVehicle(9900)))

	q := NewStandardPricingStrategy().Quote(d)

	assert.Equal(t, 1, q.Days)
	assert.Equal(t, q.DailyTotalCents, q.GrandTotalCents)
}

func TestQuote_ImplicitBasicProtection(t *testing.T) {
	d, err := NewDraft(uuid.New())
	require.NoError(t, err)
	require.NoError(t, d.SelectVehicle(testVehicle(5000)))

	q := NewStandardPricingStrategy().Quote(d)

	assert.Equal(t, int64(5000), q.DailyTotalCents)
	require.Len(t, q.Lines, 2)
	assert.Equal(t, "Basic protection", q.Lines[1].Label)
	assert.Zero(t, q.Lines[1].PerDayPriceCents)
}

func TestQuote_Monotonicity(t *testing.T) {
	pricing := NewStandardPricingStrategy()

	d, err := NewDraft(uuid.New())
	require.NoError(t, err)
	require.NoError(t, d.SelectVehicle(testVehicle(8000)))
	require.NoError(t, d.SetDateRange(mustDateRange(t, "2024-07-01", "2024-07-05")))

	base := pricing.Quote(d).GrandTotalCents

	// Adding an extra never decreases the total.
	require.NoError(t, d.SetExtras([]Extra{{ID: "seat", Label: "Child seat", PerDayPriceCents: 900}}))
	withExtra := pricing.Quote(d).GrandTotalCents
	assert.GreaterOrEqual(t, withExtra, base)

	// Upgrading protection never decreases the total.
	require.NoError(t, d.ChooseProtection(Protection{TierLabel: "Premium", PerDayPriceCents: 4000}))
	withProtection := pricing.Quote(d).GrandTotalCents
	assert.GreaterOrEqual(t, withProtection, withExtra)
}
