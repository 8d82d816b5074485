package negotiation

import "dealdesk/internal/types"

// The holdout rubric scores nine owner factors on a 0-30 scale. Motivation
// carries up to 12 points, sophistication and alternatives up to 9 each.
// Higher points mean the owner can afford to dig in. Levels are listed least
// risky first; the monotonicity of each factor's point column is what makes
// band escalation predictable as circumstances worsen.

type rubricLevel struct {
	name   string
	points int
}

type rubricFactor struct {
	group  string
	factor string
	levels []rubricLevel
}

var holdoutRubric = []rubricFactor{
	{"motivation", "financial_need", []rubricLevel{{"urgent", 0}, {"moderate", 2}, {"none", 4}}},
	{"motivation", "emotional_attachment", []rubricLevel{{"none", 0}, {"moderate", 2}, {"strong", 4}}},
	{"motivation", "business_impact", []rubricLevel{{"minimal", 0}, {"moderate", 2}, {"severe", 4}}},
	{"sophistication", "real_estate_experience", []rubricLevel{{"none", 0}, {"some", 1}, {"extensive", 3}}},
	{"sophistication", "legal_representation", []rubricLevel{{"unrepresented", 0}, {"general_counsel", 1}, {"specialist", 3}}},
	{"sophistication", "previous_negotiations", []rubricLevel{{"none", 0}, {"some", 1}, {"frequent", 3}}},
	{"alternatives", "relocation_options", []rubricLevel{{"many", 0}, {"limited", 2}, {"none", 3}}},
	{"alternatives", "financial_flexibility", []rubricLevel{{"constrained", 0}, {"moderate", 2}, {"strong", 3}}},
	{"alternatives", "timeline_pressure", []rubricLevel{{"severe", 0}, {"moderate", 2}, {"none", 3}}},
}

const (
	holdoutMaxScore = 30

	bandMediumFloor   = 8
	bandHighFloor     = 16
	bandCriticalFloor = 23
)

// bandProbability maps each band to its escalation probability: the chance
// the owner holds out past negotiation into a hearing.
var bandProbability = map[Band]float64{
	BandLow:      0.15,
	BandMedium:   0.30,
	BandHigh:     0.50,
	BandCritical: 0.70,
}

// ScoreHoldout scores an owner profile against the rubric. Every factor must
// carry one of its recognized levels; an unknown level reports the allowed
// set. The returned assessment includes the per-factor breakdown in rubric
// order so a reviewer can audit the total.
func ScoreHoldout(p OwnerProfile) (*HoldoutAssessment, error) {
	values := map[string]string{
		"financial_need":         p.Motivation.FinancialNeed,
		"emotional_attachment":   p.Motivation.EmotionalAttachment,
		"business_impact":        p.Motivation.BusinessImpact,
		"real_estate_experience": p.Sophistication.RealEstateExperience,
		"legal_representation":   p.Sophistication.LegalRepresentation,
		"previous_negotiations":  p.Sophistication.PreviousNegotiations,
		"relocation_options":     p.Alternatives.RelocationOptions,
		"financial_flexibility":  p.Alternatives.FinancialFlexibility,
		"timeline_pressure":      p.Alternatives.TimelinePressure,
	}

	score := 0
	contributions := make([]FactorContribution, 0, len(holdoutRubric))
	for _, f := range holdoutRubric {
		level := values[f.factor]
		points, ok := factorPoints(f, level)
		if !ok {
			return nil, &types.InvalidEnumError{
				Field:   "owner_profile." + f.group + "." + f.factor,
				Value:   level,
				Allowed: factorLevels(f),
			}
		}
		score += points
		contributions = append(contributions, FactorContribution{
			Group:  f.group,
			Factor: f.factor,
			Level:  level,
			Points: points,
		})
	}

	if score < 0 {
		score = 0
	}
	if score > holdoutMaxScore {
		score = holdoutMaxScore
	}

	band := bandFor(score)
	return &HoldoutAssessment{
		Score:         score,
		Band:          band,
		Probability:   bandProbability[band],
		Contributions: contributions,
	}, nil
}

func bandFor(score int) Band {
	switch {
	case score >= bandCriticalFloor:
		return BandCritical
	case score >= bandHighFloor:
		return BandHigh
	case score >= bandMediumFloor:
		return BandMedium
	default:
		return BandLow
	}
}

func factorPoints(f rubricFactor, level string) (int, bool) {
	for _, l := range f.levels {
		if l.name == level {
			return l.points, true
		}
	}
	return 0, false
}

func factorLevels(f rubricFactor) []string {
	names := make([]string, len(f.levels))
	for i, l := range f.levels {
		names[i] = l.name
	}
	return names
}
