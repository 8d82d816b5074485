// Package leaseopt prices the purchase option embedded in a lease-option
// deal as a European call on the property under Black-Scholes, and grades a
// quoted option fee against the theoretical value.
package leaseopt

import (
	"math"

	"dealdesk/internal/money"
	"dealdesk/internal/types"
)

// Inputs parameterize the option. PropertyValue is the spot, Strike the
// agreed purchase price, Years the option term, RiskFree the continuously
// compounded rate, Volatility the annualized property value volatility.
type Inputs struct {
	PropertyValue float64 `json:"property_value"`
	Strike        float64 `json:"strike"`
	Years         float64 `json:"years"`
	RiskFree      float64 `json:"risk_free"`
	Volatility    float64 `json:"volatility"`
}

// Pricing holds both option legs and their deltas. Put pricing comes from
// put-call parity, so C - P = S - K*exp(-rT) holds exactly.
type Pricing struct {
	Call      float64 `json:"call"`
	Put       float64 `json:"put"`
	CallDelta float64 `json:"call_delta"`
	PutDelta  float64 `json:"put_delta"`
	D1        float64 `json:"d1"`
	D2        float64 `json:"d2"`
}

// Verdict grades a quoted fee against the theoretical option value.
type Verdict string

const (
	VerdictCheap Verdict = "cheap"
	VerdictFair  Verdict = "fair"
	VerdictRich  Verdict = "rich"
)

// fairBand is the relative premium window treated as fair pricing.
const fairBand = 0.15

// Assessment is the graded quote: the pricing, the quoted fee, the premium
// of the fee over theoretical value, and the verdict.
type Assessment struct {
	Pricing   Pricing `json:"pricing"`
	QuotedFee float64 `json:"quoted_fee"`
	Premium   float64 `json:"premium"`
	Verdict   Verdict `json:"verdict"`
}

const (
	maxYears      = 100
	maxVolatility = 5
)

func (in Inputs) validate() error {
	if in.PropertyValue <= 0 {
		return types.Validationf("property_value", "must be positive, got %v", in.PropertyValue)
	}
	if in.Strike <= 0 {
		return types.Validationf("strike", "must be positive, got %v", in.Strike)
	}
	if in.Years <= 0 || in.Years > maxYears {
		return types.Validationf("years", "must be in (0,%d], got %v", maxYears, in.Years)
	}
	if in.Volatility <= 0 || in.Volatility > maxVolatility {
		return types.Validationf("volatility", "must be in (0,%v], got %v", float64(maxVolatility), in.Volatility)
	}
	if math.IsNaN(in.RiskFree) || math.IsInf(in.RiskFree, 0) {
		return types.Validationf("risk_free", "must be finite, got %v", in.RiskFree)
	}
	return nil
}

// Price computes the Black-Scholes value of the purchase option.
func Price(in Inputs) (*Pricing, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	sqrtT := math.Sqrt(in.Years)
	volT := in.Volatility * sqrtT
	d1 := (math.Log(in.PropertyValue/in.Strike) + (in.RiskFree+in.Volatility*in.Volatility/2)*in.Years) / volT
	d2 := d1 - volT

	discounted := in.Strike * math.Exp(-in.RiskFree*in.Years)
	callDelta := normCDF(d1)
	call := in.PropertyValue*callDelta - discounted*normCDF(d2)
	put := call - in.PropertyValue + discounted

	return &Pricing{
		Call:      call,
		Put:       put,
		CallDelta: callDelta,
		PutDelta:  callDelta - 1,
		D1:        d1,
		D2:        d2,
	}, nil
}

// Assess prices the option and grades the quoted fee. A fee within fairBand
// of theoretical value is fair; outside the band it is cheap or rich. A
// near-worthless option makes any positive fee rich.
func Assess(in Inputs, quotedFee float64) (*Assessment, error) {
	if quotedFee < 0 {
		return nil, types.Validationf("quoted_fee", "must be non-negative, got %v", quotedFee)
	}
	p, err := Price(in)
	if err != nil {
		return nil, err
	}

	a := &Assessment{Pricing: *p, QuotedFee: quotedFee}
	if p.Call < 0.01 {
		a.Premium = math.Inf(1)
		a.Verdict = VerdictRich
		if quotedFee == 0 {
			a.Premium = 0
			a.Verdict = VerdictFair
		}
		return a, nil
	}

	a.Premium = quotedFee/p.Call - 1
	switch {
	case a.Premium < -fairBand:
		a.Verdict = VerdictCheap
	case a.Premium > fairBand:
		a.Verdict = VerdictRich
	default:
		a.Verdict = VerdictFair
	}
	return a, nil
}

// Headline is the one-line summary used by run history and batch tables.
func (a *Assessment) Headline() string {
	return "option value " + money.USD(a.Pricing.Call) + "; quoted fee is " + string(a.Verdict)
}

// normCDF is the standard normal CDF via the complementary error function,
// which keeps precision in the far tails.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
