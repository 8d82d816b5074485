package negotiation

import "dealdesk/internal/types"

// ComputeZOPA locates the settlement zone between the buyer's maximum and the
// seller's minimum. The zone exists when buyerMax >= sellerMin; otherwise the
// result carries only the gap the parties would have to close.
func ComputeZOPA(buyerMax, sellerMin float64) (*ZOPA, error) {
	if buyerMax <= 0 {
		return nil, types.Validationf("buyer_max", "must be positive, got %v", buyerMax)
	}
	if sellerMin <= 0 {
		return nil, types.Validationf("seller_min", "must be positive, got %v", sellerMin)
	}

	if buyerMax < sellerMin {
		return &ZOPA{Exists: false, Gap: sellerMin - buyerMax}, nil
	}
	return &ZOPA{
		Exists:   true,
		Lower:    sellerMin,
		Upper:    buyerMax,
		Midpoint: (sellerMin + buyerMax) / 2,
	}, nil
}
