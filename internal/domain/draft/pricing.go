package draft

// QuoteLine is a single per-day charge in an itemized quote.
type QuoteLine struct {
	Label            string `json:"label"`
	PerDayPriceCents int64  `json:"per_day_price_cents"`
}

// Quote is an itemized price estimate for a draft.
type Quote struct {
	Lines           []QuoteLine `json:"lines"`
	DailyTotalCents int64       `json:"daily_total_cents"`
	Days            int         `json:"days"`
	GrandTotalCents int64       `json:"grand_total_cents"`
	Currency        string      `json:"currency"`
}

// PricingStrategy defines the interface for quoting a draft.
type PricingStrategy interface {
	// Quote returns the itemized estimate for the draft's current sections.
	// It is pure and total: no error, no negative amounts, zero when no
	// vehicle is selected.
	Quote(d *Draft) Quote
}

// StandardPricingStrategy implements the storefront pricing rules:
//
//	daily = vehicle rate + protection rate + sum(extra rates)
//	grand = daily * max(dayCount, 1)
//
// The day floor keeps a single-day estimate displayable before a date range
// has been chosen.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Quote computes the itemized estimate for the draft.
func (s *StandardPricingStrategy) Quote(d *Draft) Quote {
	q := Quote{Currency: d.Currency(), Days: 1}
	if d.DateRange() != nil && d.DateRange().DerivedDayCount > 1 {
		q.Days = d.DateRange().DerivedDayCount
	}

	if d.Vehicle() == nil {
		return q
	}

	q.Lines = append(q.Lines, QuoteLine{
		Label:            d.Vehicle().Name,
		PerDayPriceCents: d.Vehicle().PerDayRateCents,
	})

	protection := BasicProtection()
	if d.Protection() != nil {
		protection = *d.Protection()
	}
	q.Lines = append(q.Lines, QuoteLine{
		Label:            protection.TierLabel + " protection",
		PerDayPriceCents: protection.PerDayPriceCents,
	})

	for _, e := range d.Extras() {
		q.Lines = append(q.Lines, QuoteLine{
			Label:            e.Label,
			PerDayPriceCents: e.PerDayPriceCents,
		})
	}

	for _, line := range q.Lines {
		q.DailyTotalCents += line.PerDayPriceCents
	}
	q.GrandTotalCents = q.DailyTotalCents * int64(q.Days)
	return q
}
