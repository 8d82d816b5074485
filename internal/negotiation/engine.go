package negotiation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealdesk/internal/money"
	"dealdesk/internal/types"
)

// Defaults applied when neither the scenario nor the caller supplies a value.
const (
	DefaultConfidence = 0.7
	DefaultRounds     = 5
)

// Options carry caller overrides for the per-scenario knobs. Zero values
// defer to the scenario record, then to the fallbacks, then to the package
// defaults. The fallback pair exists so configured defaults apply without
// overriding what a scenario file says about itself.
type Options struct {
	Confidence float64
	Rounds     int

	FallbackConfidence float64
	FallbackRounds     int
}

func (o Options) resolve(s Scenario) (confidence float64, rounds int) {
	confidence = o.Confidence
	if confidence == 0 {
		confidence = s.Confidence
	}
	if confidence == 0 {
		confidence = o.FallbackConfidence
	}
	if confidence == 0 {
		confidence = DefaultConfidence
	}
	rounds = o.Rounds
	if rounds == 0 {
		rounds = s.Rounds
	}
	if rounds == 0 {
		rounds = o.FallbackRounds
	}
	if rounds == 0 {
		rounds = DefaultRounds
	}
	return confidence, rounds
}

// Analyze runs the full settlement analysis: BATNA, ZOPA, holdout scoring,
// then either a settlement range with a concession schedule or, when no zone
// exists, the hearing recommendation. All validation failures surface before
// any result is produced.
func Analyze(s Scenario, opts Options) (*Analysis, error) {
	confidence, rounds := opts.resolve(s)

	batna, err := ComputeBATNA(s.Probabilities, s.Awards, s.Costs)
	if err != nil {
		return nil, err
	}
	zopa, err := ComputeZOPA(s.BuyerMax, s.SellerMin)
	if err != nil {
		return nil, err
	}
	holdout, err := ScoreHoldout(s.Owner)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		ID:          uuid.NewString(),
		Matter:      s.Matter,
		GeneratedAt: time.Now().UTC(),
		BATNA:       batna,
		ZOPA:        zopa,
		Holdout:     holdout,
	}

	rng, err := RecommendRange(zopa, batna.Net, confidence, holdout.Band)
	if errors.Is(err, types.ErrNoZOPA) {
		a.Strategy = StrategyHearing
		a.Rationale = fmt.Sprintf(
			"No zone of possible agreement: the seller's minimum exceeds the buyer's maximum by %s. Proceed to hearing; the expected award is %s against %s in hearing costs.",
			money.USD(zopa.Gap), money.USD(batna.ExpectedAward), money.USD(batna.TotalCosts))
		return a, nil
	}
	if err != nil {
		return nil, err
	}

	schedule, err := BuildConcessionSchedule(rng.Opening, rng.Target, rounds, rng.Ceiling)
	if err != nil {
		return nil, err
	}

	a.Strategy = StrategySettle
	a.Range = rng
	a.Schedule = schedule
	a.Rationale = fmt.Sprintf(
		"Negotiate toward %s inside the %s to %s zone. Holdout risk is %s (score %d of %d, %s escalation); walk away above %s.",
		money.USD(rng.Target), money.USD(rng.Floor), money.USD(zopa.Upper),
		holdout.Band, holdout.Score, holdoutMaxScore, money.Percent(holdout.Probability),
		money.USD(rng.Walkaway))
	return a, nil
}

// Headline is the one-line summary used by run history and batch tables.
func (a *Analysis) Headline() string {
	prefix := ""
	if a.Matter != "" {
		prefix = a.Matter + ": "
	}
	if a.Strategy == StrategyHearing {
		return prefix + fmt.Sprintf("proceed to hearing; offers apart by %s", money.USD(a.ZOPA.Gap))
	}
	return prefix + fmt.Sprintf("negotiate toward %s", money.USD(a.Range.Target))
}
