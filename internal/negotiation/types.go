// Package negotiation implements the settlement engine: probability-weighted
// hearing outcomes (BATNA), the zone of possible agreement (ZOPA), the holdout
// risk rubric, settlement range recommendation, and concession scheduling.
// Every function here is a pure transform over an immutable input record; the
// engine composes them into a single analysis per scenario.
package negotiation

import "time"

// Scenario is the input record for a settlement analysis. It mirrors the JSON
// shape produced by intake: reservation prices, the hearing outcome
// distribution, itemized hearing costs, and the owner psychology profile.
type Scenario struct {
	// Matter is a free-text label for the file or negotiation, e.g.
	// "Hydro corridor easement - 41 Industrial Rd".
	Matter string `json:"matter,omitempty"`

	BuyerMax  float64 `json:"buyer_max"`
	SellerMin float64 `json:"seller_min"`

	// Probabilities and Awards are keyed by outcome tier name. Tier names in
	// the low/mid/high family carry an ordering constraint; see ComputeBATNA.
	Probabilities map[string]float64 `json:"probabilities"`
	Awards        map[string]float64 `json:"awards"`

	Costs HearingCosts `json:"costs"`
	Owner OwnerProfile `json:"owner_profile"`

	// Confidence in the negotiating position, exclusive (0,1). Optional;
	// zero means "use the configured default".
	Confidence float64 `json:"confidence,omitempty"`

	// Rounds is the total number of offers in the concession schedule,
	// including the opening and the final. Zero means the configured default.
	Rounds int `json:"rounds,omitempty"`
}

// HearingCosts itemizes the cost of abandoning negotiation for a hearing.
type HearingCosts struct {
	Legal  float64            `json:"legal"`
	Expert float64            `json:"expert"`
	Time   float64            `json:"time"`
	Other  map[string]float64 `json:"other,omitempty"`
}

// Total sums every cost component.
func (c HearingCosts) Total() float64 {
	total := c.Legal + c.Expert + c.Time
	for _, v := range c.Other {
		total += v
	}
	return total
}

// OwnerProfile groups the nine holdout factors, one enumerated level each.
// Level strings are validated against the rubric; see holdout.go for the
// recognized levels and their point values.
type OwnerProfile struct {
	Motivation     MotivationFactors     `json:"motivation"`
	Sophistication SophisticationFactors `json:"sophistication"`
	Alternatives   AlternativesFactors   `json:"alternatives"`
}

// MotivationFactors capture how much the owner needs this deal to close.
type MotivationFactors struct {
	FinancialNeed       string `json:"financial_need"`
	EmotionalAttachment string `json:"emotional_attachment"`
	BusinessImpact      string `json:"business_impact"`
}

// SophisticationFactors capture how hard the owner can negotiate.
type SophisticationFactors struct {
	RealEstateExperience string `json:"real_estate_experience"`
	LegalRepresentation  string `json:"legal_representation"`
	PreviousNegotiations string `json:"previous_negotiations"`
}

// AlternativesFactors capture how long the owner can afford to wait.
type AlternativesFactors struct {
	RelocationOptions    string `json:"relocation_options"`
	FinancialFlexibility string `json:"financial_flexibility"`
	TimelinePressure     string `json:"timeline_pressure"`
}

// OutcomeTier is one resolved hearing outcome: its tier name, the probability
// the hearing lands there, and the award paid if it does.
type OutcomeTier struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Award       float64 `json:"award"`
}

// BATNA is the hearing-path valuation: the probability-weighted award plus the
// full cost of getting there. Net is the walkaway comparison figure.
type BATNA struct {
	ExpectedAward float64       `json:"expected_award"`
	TotalCosts    float64       `json:"total_costs"`
	Net           float64       `json:"net_batna"`
	Tiers         []OutcomeTier `json:"tiers"`
}

// ZOPA is the tagged settlement-zone result. When Exists is false only Gap is
// meaningful; when true, Lower/Upper/Midpoint describe the zone.
type ZOPA struct {
	Exists   bool    `json:"exists"`
	Lower    float64 `json:"lower_bound,omitempty"`
	Upper    float64 `json:"upper_bound,omitempty"`
	Midpoint float64 `json:"midpoint,omitempty"`
	Gap      float64 `json:"gap,omitempty"`
}

// Band is a discrete holdout risk bucket.
type Band string

const (
	BandLow      Band = "LOW"
	BandMedium   Band = "MEDIUM"
	BandHigh     Band = "HIGH"
	BandCritical Band = "CRITICAL"
)

// FactorContribution records one factor's points for rubric auditability.
type FactorContribution struct {
	Group  string `json:"group"`
	Factor string `json:"factor"`
	Level  string `json:"level"`
	Points int    `json:"points"`
}

// HoldoutAssessment is the scored owner profile: the clipped rubric total,
// its band, the band's escalation probability, and the per-factor breakdown.
type HoldoutAssessment struct {
	Score         int                  `json:"score"`
	Band          Band                 `json:"band"`
	Probability   float64              `json:"holdout_probability"`
	Contributions []FactorContribution `json:"contributions"`
}

// SettlementRange is the recommended negotiating frame.
type SettlementRange struct {
	Opening  float64 `json:"opening_offer"`
	Target   float64 `json:"target"`
	Floor    float64 `json:"floor"`
	Ceiling  float64 `json:"ceiling"`
	Walkaway float64 `json:"walkaway"`
	// Discount is the opening-offer discount applied for the holdout band,
	// as a rate (e.g. 0.035 for the HIGH band).
	Discount float64 `json:"opening_discount"`
}

// ConcessionStep is one planned offer in the schedule.
type ConcessionStep struct {
	Round      int     `json:"round"`
	Offer      float64 `json:"offer_amount"`
	Concession float64 `json:"concession_amount"`
	Note       string  `json:"tactical_note"`
}

// Strategy is the engine's top-line recommendation.
type Strategy string

const (
	StrategySettle  Strategy = "negotiate_settlement"
	StrategyHearing Strategy = "proceed_to_hearing"
)

// Analysis is the complete settlement engine output for one scenario.
type Analysis struct {
	ID          string    `json:"id"`
	Matter      string    `json:"matter,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Strategy  Strategy           `json:"strategy"`
	Rationale string             `json:"rationale"`
	BATNA     *BATNA             `json:"batna"`
	ZOPA      *ZOPA              `json:"zopa"`
	Holdout   *HoldoutAssessment `json:"holdout"`

	// Range and Schedule are present only when Strategy is
	// StrategySettle; a no-ZOPA scenario carries neither.
	Range    *SettlementRange `json:"settlement_range,omitempty"`
	Schedule []ConcessionStep `json:"concession_schedule,omitempty"`
}
