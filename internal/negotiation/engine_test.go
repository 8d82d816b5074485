package negotiation

import (
	"math"
	"testing"

	"dealdesk/internal/types"
)

func acquisitionScenario() Scenario {
	return Scenario{
		Matter:    "Corridor parcel 12 acquisition",
		BuyerMax:  200000,
		SellerMin: 150000,
		Probabilities: map[string]float64{
			"low": 0.2, "mid": 0.5, "high": 0.3,
		},
		Awards: map[string]float64{
			"low": 140000, "mid": 175000, "high": 210000,
		},
		Costs: HearingCosts{Legal: 45000, Expert: 25000, Time: 25000},
		Owner: OwnerProfile{
			Motivation: MotivationFactors{
				FinancialNeed:       "moderate",
				EmotionalAttachment: "moderate",
				BusinessImpact:      "moderate",
			},
			Sophistication: SophisticationFactors{
				RealEstateExperience: "some",
				LegalRepresentation:  "general_counsel",
				PreviousNegotiations: "some",
			},
			Alternatives: AlternativesFactors{
				RelocationOptions:    "limited",
				FinancialFlexibility: "moderate",
				TimelinePressure:     "moderate",
			},
		},
	}
}

func TestAnalyzeSettlementPath(t *testing.T) {
	a, err := Analyze(acquisitionScenario(), Options{Confidence: 0.7, Rounds: 5})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if a.ID == "" {
		t.Error("ID is empty")
	}
	if a.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero")
	}
	if a.Strategy != StrategySettle {
		t.Fatalf("Strategy = %s, want %s", a.Strategy, StrategySettle)
	}

	if math.Abs(a.BATNA.ExpectedAward-178500) > eps {
		t.Errorf("ExpectedAward = %v, want 178500", a.BATNA.ExpectedAward)
	}
	if math.Abs(a.BATNA.Net-273500) > eps {
		t.Errorf("Net BATNA = %v, want 273500", a.BATNA.Net)
	}
	if !a.ZOPA.Exists {
		t.Fatal("ZOPA.Exists = false, want true")
	}
	if math.Abs(a.ZOPA.Midpoint-175000) > eps {
		t.Errorf("Midpoint = %v, want 175000", a.ZOPA.Midpoint)
	}

	// All nine factors at their middle level: 2+2+2 + 1+1+1 + 2+2+2 = 15.
	if a.Holdout.Score != 15 {
		t.Errorf("holdout score = %d, want 15", a.Holdout.Score)
	}
	if a.Holdout.Band != BandMedium {
		t.Errorf("holdout band = %s, want MEDIUM", a.Holdout.Band)
	}

	if a.Range == nil {
		t.Fatal("Range = nil, want settlement range")
	}
	if math.Abs(a.Range.Target-165000) > eps {
		t.Errorf("Target = %v, want 165000", a.Range.Target)
	}
	if math.Abs(a.Range.Walkaway-200000) > eps {
		t.Errorf("Walkaway = %v, want 200000", a.Range.Walkaway)
	}

	if len(a.Schedule) != 5 {
		t.Fatalf("len(Schedule) = %d, want 5", len(a.Schedule))
	}
	if a.Schedule[4].Offer != a.Range.Target {
		t.Errorf("final offer = %v, want target %v exactly", a.Schedule[4].Offer, a.Range.Target)
	}
	if a.Rationale == "" {
		t.Error("Rationale is empty")
	}
}

func TestAnalyzeHearingPath(t *testing.T) {
	s := acquisitionScenario()
	s.BuyerMax = 150000
	s.SellerMin = 200000

	a, err := Analyze(s, Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if a.Strategy != StrategyHearing {
		t.Fatalf("Strategy = %s, want %s", a.Strategy, StrategyHearing)
	}
	if a.Range != nil {
		t.Error("Range present on hearing path, want nil")
	}
	if a.Schedule != nil {
		t.Error("Schedule present on hearing path, want nil")
	}
	if a.ZOPA.Exists {
		t.Error("ZOPA.Exists = true, want false")
	}
	if math.Abs(a.ZOPA.Gap-50000) > eps {
		t.Errorf("Gap = %v, want 50000", a.ZOPA.Gap)
	}
	if a.Rationale == "" {
		t.Error("Rationale is empty")
	}
}

func TestAnalyzeDefaultsApplied(t *testing.T) {
	// With no overrides anywhere, confidence 0.7 and five rounds apply.
	a, err := Analyze(acquisitionScenario(), Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Schedule) != DefaultRounds {
		t.Errorf("len(Schedule) = %d, want %d", len(a.Schedule), DefaultRounds)
	}
	if math.Abs(a.Range.Target-165000) > eps {
		t.Errorf("Target = %v, want 165000 at default confidence", a.Range.Target)
	}

	// Scenario-level values win over package defaults.
	s := acquisitionScenario()
	s.Confidence = 0.5
	s.Rounds = 3
	a, err = Analyze(s, Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Schedule) != 3 {
		t.Errorf("len(Schedule) = %d, want 3", len(a.Schedule))
	}
	if math.Abs(a.Range.Target-175000) > eps {
		t.Errorf("Target = %v, want midpoint at scenario confidence 0.5", a.Range.Target)
	}

	// Caller options win over the scenario.
	a, err = Analyze(s, Options{Confidence: 0.7, Rounds: 4})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Schedule) != 4 {
		t.Errorf("len(Schedule) = %d, want 4", len(a.Schedule))
	}
	if math.Abs(a.Range.Target-165000) > eps {
		t.Errorf("Target = %v, want 165000 at option confidence 0.7", a.Range.Target)
	}

	// Fallbacks fill in only when the scenario is silent.
	opts := Options{FallbackConfidence: 0.6, FallbackRounds: 7}
	a, err = Analyze(acquisitionScenario(), opts)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Schedule) != 7 {
		t.Errorf("len(Schedule) = %d, want fallback 7", len(a.Schedule))
	}
	if math.Abs(a.Range.Target-170000) > eps {
		t.Errorf("Target = %v, want 170000 at fallback confidence 0.6", a.Range.Target)
	}
	a, err = Analyze(s, opts)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Schedule) != 3 {
		t.Errorf("len(Schedule) = %d, scenario rounds should beat the fallback", len(a.Schedule))
	}
	if math.Abs(a.Range.Target-175000) > eps {
		t.Errorf("Target = %v, scenario confidence should beat the fallback", a.Range.Target)
	}
}

func TestAnalyzeValidationFailsFast(t *testing.T) {
	s := acquisitionScenario()
	s.Probabilities["high"] = 0.6

	_, err := Analyze(s, Options{})
	if err == nil {
		t.Fatal("Analyze() error = nil, want validation error")
	}
	if !types.IsInputError(err) {
		t.Errorf("IsInputError(%v) = false, want true", err)
	}
}
