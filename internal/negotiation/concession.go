package negotiation

import (
	"dealdesk/internal/money"
	"dealdesk/internal/types"
)

const (
	minConcessionRounds = 2
	maxConcessionRounds = 12
)

var concessionNotes = []string{
	"Concede half the remaining gap to signal good faith.",
	"Slow the pace; pair the concession with a non-price ask.",
	"Small move only; flag that little room remains.",
}

const (
	openingNote = "Opening position. Anchor with comparable evidence before discussing the number."
	finalNote   = "Best and final. Land on the target and hold."
)

// BuildConcessionSchedule plans the offer sequence from opening to target
// over the given total rounds, opening included. Each intermediate round
// concedes half the remaining distance, which produces the shrinking
// 50%/25%/12.5% pattern an opponent reads as a closing fund. The final offer
// is assigned the destination exactly rather than computed, so the schedule
// always lands on it regardless of rounding along the way.
//
// The schedule runs in either direction: a buyer opening below target
// concedes upward, a seller opening above it concedes downward. When limit is
// non-zero the destination is capped at it (an upper cap conceding upward, a
// lower cap conceding downward). The result is a pure function of its inputs.
func BuildConcessionSchedule(opening, target float64, rounds int, limit float64) ([]ConcessionStep, error) {
	if rounds == 0 {
		rounds = DefaultRounds
	}
	if rounds < minConcessionRounds || rounds > maxConcessionRounds {
		return nil, types.Validationf("rounds", "must be between %d and %d, got %d", minConcessionRounds, maxConcessionRounds, rounds)
	}
	if opening <= 0 || target <= 0 {
		return nil, types.Validationf("concessions", "opening %v and target %v must be positive", opening, target)
	}

	final := target
	if limit != 0 {
		if opening <= target && final > limit {
			final = limit
		}
		if opening > target && final < limit {
			final = limit
		}
	}

	steps := make([]ConcessionStep, 0, rounds)
	steps = append(steps, ConcessionStep{Round: 1, Offer: money.Round2(opening), Concession: 0, Note: openingNote})

	prev := steps[0].Offer
	for r := 2; r < rounds; r++ {
		offer := money.Round2(prev + (final-prev)/2)
		steps = append(steps, ConcessionStep{
			Round:      r,
			Offer:      offer,
			Concession: money.Round2(offer - prev),
			Note:       concessionNotes[(r-2)%len(concessionNotes)],
		})
		prev = offer
	}

	steps = append(steps, ConcessionStep{
		Round:      rounds,
		Offer:      final,
		Concession: money.Round2(final - prev),
		Note:       finalNote,
	})
	return steps, nil
}
