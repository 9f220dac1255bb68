// Package pricing computes guild-negotiated prices from live exchange quotes,
// per-listing discounts and opt-in min/max bounds.
package pricing

import "github.com/shopspring/decimal"

// roundingTier maps a discounted-price magnitude to a rounding granularity.
// Rounding is always upward (ceiling) within the tier, so quantization never
// undercuts what the discount formula implies.
type roundingTier struct {
	upper       decimal.Decimal // Exclusive upper bound of the tier
	granularity decimal.Decimal
}

var tiers = []roundingTier{
	{decimal.NewFromInt(50), decimal.NewFromFloat(0.5)},
	{decimal.NewFromInt(100), decimal.NewFromInt(1)},
	{decimal.NewFromInt(1000), decimal.NewFromInt(10)},
	{decimal.NewFromInt(5000), decimal.NewFromInt(50)},
	{decimal.NewFromInt(10000), decimal.NewFromInt(100)},
	{decimal.NewFromInt(50000), decimal.NewFromInt(500)},
}

// Granularity above the last tier bound.
var topGranularity = decimal.NewFromInt(1000)

// granularityFor selects the rounding granularity for a discounted price.
// The tier is keyed on the discounted value, not on the final price.
func granularityFor(discounted decimal.Decimal) decimal.Decimal {
	for _, t := range tiers {
		if discounted.LessThan(t.upper) {
			return t.granularity
		}
	}
	return topGranularity
}

// ceilToGranularity rounds a value up to the next multiple of the granularity.
func ceilToGranularity(value, granularity decimal.Decimal) decimal.Decimal {
	return value.Div(granularity).Ceil().Mul(granularity)
}

// ComputePrice derives the guildees-pay price for one listing.
//
// Steps: apply the percent discount to the live exchange price, ceiling-round
// the discounted value using the tier table above, then clamp against the
// guild min/max bounds. A bound of 0 means "no constraint", never "clamp to
// zero". Discount percentages outside [0,100] are clamped into range rather
// than rejected, so one hand-edited sheet cell cannot poison a whole import.
//
// The fixed discount is intentionally not part of this formula; it is stored
// and exported for display only.
func ComputePrice(liveExchangePrice, discountPercent, guildMin, guildMax int64) float64 {
	if discountPercent < 0 {
		discountPercent = 0
	} else if discountPercent > 100 {
		discountPercent = 100
	}

	live := decimal.NewFromInt(liveExchangePrice)
	factor := decimal.NewFromInt(100 - discountPercent).Div(decimal.NewFromInt(100))
	discounted := live.Mul(factor)

	price := ceilToGranularity(discounted, granularityFor(discounted))

	if guildMin > 0 && price.LessThan(decimal.NewFromInt(guildMin)) {
		price = decimal.NewFromInt(guildMin)
	} else if guildMax > 0 && price.GreaterThan(decimal.NewFromInt(guildMax)) {
		price = decimal.NewFromInt(guildMax)
	}

	f, _ := price.Float64()
	return f
}
