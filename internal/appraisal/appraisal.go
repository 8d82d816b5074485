// Package appraisal implements cost-approach valuation: replacement cost new
// built up from direct costs, depreciation from age/life or explicit rates,
// and reconciliation of the cost indication against a market indication under
// a configurable weighting policy.
package appraisal

import (
	"math"
	"sort"

	"dealdesk/internal/money"
	"dealdesk/internal/types"
)

// CostInputs are the direct and indirect components of replacement cost new.
// Rates apply in sequence: overhead on the direct cost, profit on the
// overhead-loaded subtotal.
type CostInputs struct {
	Materials    float64 `json:"materials"`
	Labor        float64 `json:"labor"`
	OverheadRate float64 `json:"overhead_rate"`
	ProfitRate   float64 `json:"profit_rate"`
}

// Depreciation describes accrued losses against replacement cost new. When
// CombinedRate is non-zero it overrides the computed physical rate; otherwise
// physical deterioration is EffectiveAge/EconomicLife. Functional and
// External are additive rates on top of physical.
type Depreciation struct {
	EffectiveAge float64 `json:"effective_age,omitempty"`
	EconomicLife float64 `json:"economic_life,omitempty"`
	Functional   float64 `json:"functional,omitempty"`
	External     float64 `json:"external,omitempty"`
	CombinedRate float64 `json:"combined_rate,omitempty"`
}

// Request is one property's cost-approach input record.
type Request struct {
	Property     string       `json:"property,omitempty"`
	Cost         CostInputs   `json:"cost"`
	Depreciation Depreciation `json:"depreciation"`
	LandValue    float64      `json:"land_value,omitempty"`

	// MarketValue is an independent market indication. Zero means derive one
	// from MarketComps, or skip reconciliation when those are absent too.
	MarketValue float64 `json:"market_value,omitempty"`

	// MarketComps are adjusted sale prices of comparable properties. Their
	// median supplies the market indication when MarketValue is zero.
	MarketComps []float64 `json:"market_comps,omitempty"`
}

// CostBreakdown shows how replacement cost new was built up.
type CostBreakdown struct {
	DirectCost float64 `json:"direct_cost"`
	Overhead   float64 `json:"overhead"`
	Profit     float64 `json:"profit"`
	RCN        float64 `json:"replacement_cost_new"`
}

// Reconciliation records how the cost and market indications were blended.
type Reconciliation struct {
	Spread          float64 `json:"spread"`
	WithinThreshold bool    `json:"within_threshold"`
	CostWeight      float64 `json:"cost_weight"`
	MarketWeight    float64 `json:"market_weight"`
	Value           float64 `json:"value"`
}

// Valuation is the full cost-approach result. Monetary fields are rounded to
// cents; rates are left untouched.
type Valuation struct {
	Property string        `json:"property,omitempty"`
	Cost     CostBreakdown `json:"cost"`

	DepreciationRate   float64 `json:"depreciation_rate"`
	DepreciationAmount float64 `json:"depreciation_amount"`
	DepreciatedCost    float64 `json:"depreciated_cost"`

	LandValue float64 `json:"land_value,omitempty"`
	CostValue float64 `json:"cost_value"`

	MarketValue float64         `json:"market_value,omitempty"`
	Reconciled  *Reconciliation `json:"reconciliation,omitempty"`
	FinalValue  float64         `json:"final_value"`
}

// ReplacementCostNew builds up RCN from direct costs. Materials and labor
// must be non-negative and sum positive; rates must lie in [0,1).
func ReplacementCostNew(c CostInputs) (*CostBreakdown, error) {
	if c.Materials < 0 {
		return nil, types.Validationf("cost.materials", "must be non-negative, got %v", c.Materials)
	}
	if c.Labor < 0 {
		return nil, types.Validationf("cost.labor", "must be non-negative, got %v", c.Labor)
	}
	direct := c.Materials + c.Labor
	if direct == 0 {
		return nil, types.Validationf("cost", "materials and labor are both zero")
	}
	if c.OverheadRate < 0 || c.OverheadRate >= 1 {
		return nil, types.Validationf("cost.overhead_rate", "must be in [0,1), got %v", c.OverheadRate)
	}
	if c.ProfitRate < 0 || c.ProfitRate >= 1 {
		return nil, types.Validationf("cost.profit_rate", "must be in [0,1), got %v", c.ProfitRate)
	}

	overhead := direct * c.OverheadRate
	profit := (direct + overhead) * c.ProfitRate
	return &CostBreakdown{
		DirectCost: money.Round2(direct),
		Overhead:   money.Round2(overhead),
		Profit:     money.Round2(profit),
		RCN:        money.Round2(direct + overhead + profit),
	}, nil
}

// CombinedDepreciationRate resolves the total depreciation rate. An explicit
// CombinedRate wins; otherwise the physical rate is EffectiveAge/EconomicLife
// capped at 1.0, with functional and external obsolescence added on. The
// combined result never exceeds 1.0.
func CombinedDepreciationRate(d Depreciation) (float64, error) {
	if d.CombinedRate != 0 {
		if d.CombinedRate < 0 || d.CombinedRate > 1 {
			return 0, types.Validationf("depreciation.combined_rate", "must be in [0,1], got %v", d.CombinedRate)
		}
		return d.CombinedRate, nil
	}

	if d.EffectiveAge < 0 {
		return 0, types.Validationf("depreciation.effective_age", "must be non-negative, got %v", d.EffectiveAge)
	}
	physical := 0.0
	if d.EffectiveAge > 0 {
		if d.EconomicLife <= 0 {
			return 0, types.Validationf("depreciation.economic_life", "must be positive when effective_age is set, got %v", d.EconomicLife)
		}
		physical = math.Min(d.EffectiveAge/d.EconomicLife, 1.0)
	}
	if d.Functional < 0 || d.Functional > 1 {
		return 0, types.Validationf("depreciation.functional", "must be in [0,1], got %v", d.Functional)
	}
	if d.External < 0 || d.External > 1 {
		return 0, types.Validationf("depreciation.external", "must be in [0,1], got %v", d.External)
	}
	return math.Min(physical+d.Functional+d.External, 1.0), nil
}

// MarketMedian returns the median of adjusted comparable sale prices. Every
// value must be positive.
func MarketMedian(comps []float64) (float64, error) {
	if len(comps) == 0 {
		return 0, types.Validationf("market_comps", "needs at least one value")
	}
	sorted := make([]float64, len(comps))
	copy(sorted, comps)
	sort.Float64s(sorted)
	if sorted[0] <= 0 {
		return 0, types.Validationf("market_comps", "values must be positive, got %v", sorted[0])
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}

// Appraise runs the full cost approach for one property. Reconciliation
// happens when a market indication is available, either an explicit
// MarketValue or the median of MarketComps; otherwise the cost indication
// stands alone as the final value.
func Appraise(req Request, policy ReconcilePolicy) (*Valuation, error) {
	breakdown, err := ReplacementCostNew(req.Cost)
	if err != nil {
		return nil, err
	}
	rate, err := CombinedDepreciationRate(req.Depreciation)
	if err != nil {
		return nil, err
	}
	if req.LandValue < 0 {
		return nil, types.Validationf("land_value", "must be non-negative, got %v", req.LandValue)
	}
	if req.MarketValue < 0 {
		return nil, types.Validationf("market_value", "must be non-negative, got %v", req.MarketValue)
	}
	market := req.MarketValue
	if market == 0 && len(req.MarketComps) > 0 {
		market, err = MarketMedian(req.MarketComps)
		if err != nil {
			return nil, err
		}
	}

	depreciated := money.Round2(breakdown.RCN * (1 - rate))
	costValue := money.Round2(depreciated + req.LandValue)

	v := &Valuation{
		Property:           req.Property,
		Cost:               *breakdown,
		DepreciationRate:   rate,
		DepreciationAmount: money.Round2(breakdown.RCN - depreciated),
		DepreciatedCost:    depreciated,
		LandValue:          money.Round2(req.LandValue),
		CostValue:          costValue,
		MarketValue:        money.Round2(market),
		FinalValue:         costValue,
	}

	if market > 0 {
		rec, err := Reconcile(costValue, market, policy)
		if err != nil {
			return nil, err
		}
		v.Reconciled = rec
		v.FinalValue = rec.Value
	}
	return v, nil
}

// Headline is the one-line summary used by run history and batch tables.
func (v *Valuation) Headline() string {
	line := "indicated value " + money.USD(v.FinalValue)
	if v.Property != "" {
		line = v.Property + ": " + line
	}
	return line
}
