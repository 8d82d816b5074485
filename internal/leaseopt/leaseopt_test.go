package leaseopt

import (
	"math"
	"testing"

	"dealdesk/internal/types"
)

func TestPriceReferenceValues(t *testing.T) {
	// Textbook at-the-money case: S=100, K=100, T=1, r=5%, sigma=20%.
	p, err := Price(Inputs{PropertyValue: 100, Strike: 100, Years: 1, RiskFree: 0.05, Volatility: 0.2})
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}

	if math.Abs(p.Call-10.4506) > 1e-3 {
		t.Errorf("Call = %v, want 10.4506", p.Call)
	}
	if math.Abs(p.Put-5.5735) > 1e-3 {
		t.Errorf("Put = %v, want 5.5735", p.Put)
	}
	if math.Abs(p.D1-0.35) > 1e-9 {
		t.Errorf("D1 = %v, want 0.35", p.D1)
	}
	if math.Abs(p.D2-0.15) > 1e-9 {
		t.Errorf("D2 = %v, want 0.15", p.D2)
	}
	if math.Abs(p.CallDelta-0.6368) > 1e-3 {
		t.Errorf("CallDelta = %v, want 0.6368", p.CallDelta)
	}
	if math.Abs(p.PutDelta-(p.CallDelta-1)) > 1e-12 {
		t.Errorf("PutDelta = %v, want CallDelta-1", p.PutDelta)
	}
}

func TestPricePutCallParity(t *testing.T) {
	cases := []Inputs{
		{PropertyValue: 100, Strike: 100, Years: 1, RiskFree: 0.05, Volatility: 0.2},
		{PropertyValue: 850000, Strike: 900000, Years: 3, RiskFree: 0.04, Volatility: 0.15},
		{PropertyValue: 500000, Strike: 400000, Years: 0.5, RiskFree: 0.03, Volatility: 0.35},
		{PropertyValue: 250000, Strike: 600000, Years: 5, RiskFree: 0.02, Volatility: 0.25},
	}
	for _, in := range cases {
		p, err := Price(in)
		if err != nil {
			t.Fatalf("Price(%+v) error = %v", in, err)
		}
		lhs := p.Call - p.Put
		rhs := in.PropertyValue - in.Strike*math.Exp(-in.RiskFree*in.Years)
		if math.Abs(lhs-rhs) > 1e-9*math.Max(1, math.Abs(rhs)) {
			t.Errorf("parity violated for %+v: C-P = %v, S-Ke^-rT = %v", in, lhs, rhs)
		}
	}
}

func TestPriceVolatilityMonotonic(t *testing.T) {
	base := Inputs{PropertyValue: 750000, Strike: 800000, Years: 2, RiskFree: 0.04}
	prev := -1.0
	for _, sigma := range []float64{0.05, 0.10, 0.20, 0.40, 0.80} {
		in := base
		in.Volatility = sigma
		p, err := Price(in)
		if err != nil {
			t.Fatalf("Price(sigma=%v) error = %v", sigma, err)
		}
		if p.Call <= prev {
			t.Errorf("call value %v at sigma %v did not rise from %v", p.Call, sigma, prev)
		}
		prev = p.Call
	}
}

func TestPriceDeepInTheMoney(t *testing.T) {
	in := Inputs{PropertyValue: 200000, Strike: 100000, Years: 0.25, RiskFree: 0.05, Volatility: 0.2}
	p, err := Price(in)
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	intrinsic := in.PropertyValue - in.Strike*math.Exp(-in.RiskFree*in.Years)
	if p.Call < intrinsic {
		t.Errorf("Call = %v below discounted intrinsic %v", p.Call, intrinsic)
	}
	if p.CallDelta < 0.99 {
		t.Errorf("CallDelta = %v, want near 1 deep in the money", p.CallDelta)
	}
}

func TestPriceValidation(t *testing.T) {
	good := Inputs{PropertyValue: 100, Strike: 100, Years: 1, RiskFree: 0.05, Volatility: 0.2}

	mutate := func(f func(*Inputs)) Inputs {
		in := good
		f(&in)
		return in
	}
	tests := []struct {
		name string
		in   Inputs
	}{
		{"zero property value", mutate(func(i *Inputs) { i.PropertyValue = 0 })},
		{"negative strike", mutate(func(i *Inputs) { i.Strike = -1 })},
		{"zero term", mutate(func(i *Inputs) { i.Years = 0 })},
		{"term too long", mutate(func(i *Inputs) { i.Years = 101 })},
		{"zero volatility", mutate(func(i *Inputs) { i.Volatility = 0 })},
		{"volatility too high", mutate(func(i *Inputs) { i.Volatility = 5.5 })},
		{"nan rate", mutate(func(i *Inputs) { i.RiskFree = math.NaN() })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Price(tt.in)
			if err == nil {
				t.Fatal("Price() error = nil, want validation error")
			}
			if !types.IsInputError(err) {
				t.Errorf("IsInputError(%v) = false, want true", err)
			}
		})
	}
}

func TestAssessVerdicts(t *testing.T) {
	in := Inputs{PropertyValue: 100, Strike: 100, Years: 1, RiskFree: 0.05, Volatility: 0.2}
	p, err := Price(in)
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}

	tests := []struct {
		name string
		fee  float64
		want Verdict
	}{
		{"fee at theoretical", p.Call, VerdictFair},
		{"fee inside band", p.Call * 1.10, VerdictFair},
		{"fee under band", p.Call * 0.5, VerdictCheap},
		{"fee over band", p.Call * 2, VerdictRich},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Assess(in, tt.fee)
			if err != nil {
				t.Fatalf("Assess() error = %v", err)
			}
			if a.Verdict != tt.want {
				t.Errorf("Verdict = %s, want %s (premium %v)", a.Verdict, tt.want, a.Premium)
			}
		})
	}
}

func TestAssessWorthlessOption(t *testing.T) {
	// Far out of the money with almost no time or volatility left.
	in := Inputs{PropertyValue: 100000, Strike: 10000000, Years: 0.01, RiskFree: 0.05, Volatility: 0.05}

	a, err := Assess(in, 5000)
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}
	if a.Verdict != VerdictRich {
		t.Errorf("Verdict = %s, want rich for any fee on a worthless option", a.Verdict)
	}

	a, err = Assess(in, 0)
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}
	if a.Verdict != VerdictFair {
		t.Errorf("Verdict = %s, want fair for zero fee on a worthless option", a.Verdict)
	}
}

func TestAssessNegativeFee(t *testing.T) {
	in := Inputs{PropertyValue: 100, Strike: 100, Years: 1, RiskFree: 0.05, Volatility: 0.2}
	if _, err := Assess(in, -1); err == nil {
		t.Fatal("Assess() error = nil, want validation error")
	}
}
