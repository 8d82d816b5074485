package negotiation

import (
	"math"

	"dealdesk/internal/types"
)

// openingDiscount maps the holdout band to the discount applied below target
// when anchoring the opening offer. A risky owner gets a tighter anchor; the
// room left between opening and target funds the concession schedule.
var openingDiscount = map[Band]float64{
	BandLow:      0,
	BandMedium:   0.02,
	BandHigh:     0.035,
	BandCritical: 0.05,
}

// RecommendRange frames the negotiation inside an existing ZOPA.
//
// The target slides from the midpoint toward the favorable end as confidence
// rises above 0.5 and toward the unfavorable end below it. The walkaway is the
// lesser of the net hearing valuation and the buyer's authority limit; the
// ceiling never exceeds it. A scenario with no ZOPA returns types.ErrNoZOPA
// so the caller can branch to the hearing recommendation.
func RecommendRange(z *ZOPA, netBATNA, confidence float64, band Band) (*SettlementRange, error) {
	if z == nil || !z.Exists {
		return nil, types.ErrNoZOPA
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, types.Validationf("confidence", "must be strictly between 0 and 1, got %v", confidence)
	}
	discount, ok := openingDiscount[band]
	if !ok {
		return nil, &types.InvalidEnumError{
			Field:   "holdout_band",
			Value:   string(band),
			Allowed: []string{string(BandLow), string(BandMedium), string(BandHigh), string(BandCritical)},
		}
	}
	if netBATNA <= 0 {
		return nil, types.Validationf("net_batna", "must be positive, got %v", netBATNA)
	}

	width := z.Upper - z.Lower
	target := z.Midpoint - (confidence-0.5)*width
	// Confidence is exclusive of the endpoints, so target stays inside the
	// zone; clamping guards float drift at extreme confidence values.
	target = math.Min(math.Max(target, z.Lower), z.Upper)

	walkaway := math.Min(netBATNA, z.Upper)
	ceiling := math.Min(z.Upper, walkaway)

	return &SettlementRange{
		Opening:  target * (1 - discount),
		Target:   target,
		Floor:    z.Lower,
		Ceiling:  ceiling,
		Walkaway: walkaway,
		Discount: discount,
	}, nil
}
