package appraisal

import (
	"math"

	"dealdesk/internal/money"
	"dealdesk/internal/types"
)

// ReconcilePolicy controls how the cost and market indications blend. When
// the relative spread between them stays within SpreadThreshold the cost
// approach is treated as reliable and carries CostWeightNear; a wider spread
// signals cost-side uncertainty and the weighting flips to CostWeightFar.
type ReconcilePolicy struct {
	SpreadThreshold float64 `yaml:"spread_threshold" json:"spread_threshold"`
	CostWeightNear  float64 `yaml:"cost_weight_near" json:"cost_weight_near"`
	CostWeightFar   float64 `yaml:"cost_weight_far" json:"cost_weight_far"`
}

// DefaultReconcilePolicy weights the cost approach 65/35 when the two
// indications land within 20% of each other, and 35/65 beyond that.
func DefaultReconcilePolicy() ReconcilePolicy {
	return ReconcilePolicy{
		SpreadThreshold: 0.20,
		CostWeightNear:  0.65,
		CostWeightFar:   0.35,
	}
}

func (p ReconcilePolicy) validate() error {
	if p.SpreadThreshold <= 0 || p.SpreadThreshold >= 1 {
		return types.Validationf("reconcile.spread_threshold", "must be in (0,1), got %v", p.SpreadThreshold)
	}
	if p.CostWeightNear <= 0 || p.CostWeightNear >= 1 {
		return types.Validationf("reconcile.cost_weight_near", "must be in (0,1), got %v", p.CostWeightNear)
	}
	if p.CostWeightFar <= 0 || p.CostWeightFar >= 1 {
		return types.Validationf("reconcile.cost_weight_far", "must be in (0,1), got %v", p.CostWeightFar)
	}
	return nil
}

// Reconcile blends a cost indication with a market indication under the
// policy. The spread is measured relative to the market indication.
func Reconcile(costValue, marketValue float64, policy ReconcilePolicy) (*Reconciliation, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	if costValue <= 0 {
		return nil, types.Validationf("cost_value", "must be positive, got %v", costValue)
	}
	if marketValue <= 0 {
		return nil, types.Validationf("market_value", "must be positive, got %v", marketValue)
	}

	spread := math.Abs(costValue-marketValue) / marketValue
	within := spread <= policy.SpreadThreshold

	costWeight := policy.CostWeightFar
	if within {
		costWeight = policy.CostWeightNear
	}
	marketWeight := 1 - costWeight

	return &Reconciliation{
		Spread:          spread,
		WithinThreshold: within,
		CostWeight:      costWeight,
		MarketWeight:    marketWeight,
		Value:           money.Round2(costWeight*costValue + marketWeight*marketValue),
	}, nil
}
