// Package mcda ranks comparable properties by weighted multi-criteria score.
// Nine variables cover occupancy cost, physical fit, proximity, and building
// quality. Numeric variables are min-max normalized across the candidate set
// with direction awareness (lower net rent scores high, taller clear height
// scores high); building class maps through a fixed categorical scale.
// Composite scores land on a 0-100 scale.
package mcda

import (
	"fmt"
	"math"
	"sort"

	"dealdesk/internal/types"
)

// Subject anchors the deviation-scored variables. OfficePct is the subject's
// office share of gross leasable area in percent points; comparables score by
// distance to it.
type Subject struct {
	Name      string  `json:"name,omitempty"`
	OfficePct float64 `json:"office_pct,omitempty"`
}

// Comparable is one candidate property with the nine ranked variables. Rent
// and TMI are per square foot per year; clear height is in feet; office share
// is in percent points; area difference is the absolute square-footage delta
// to the subject; parking ratio is stalls per thousand square feet.
type Comparable struct {
	Name           string  `json:"name"`
	NetRent        float64 `json:"net_rent"`
	TMI            float64 `json:"tmi"`
	ClearHeight    float64 `json:"clear_height"`
	OfficePct      float64 `json:"office_pct"`
	Distance       float64 `json:"distance"`
	AreaDifference float64 `json:"area_difference"`
	YearBuilt      int     `json:"year_built"`
	BuildingClass  string  `json:"building_class"`
	ParkingRatio   float64 `json:"parking_ratio"`
}

// Ranked is a scored comparable: per-criterion normalized scores in [0,1],
// the weighted composite on a 0-100 scale, and the 1-based rank.
type Ranked struct {
	Comparable
	Scores    map[string]float64 `json:"scores"`
	Composite float64            `json:"composite"`
	Rank      int                `json:"rank"`
}

// classScore maps building class straight to a normalized score; class is an
// ordinal market judgment, not a measurement, so it skips min-max.
var classScore = map[string]float64{
	"A": 1.0,
	"B": 0.6,
	"C": 0.3,
}

const (
	yearBuiltFloor   = 1800
	yearBuiltCeiling = 2100

	maxOfficePct = 100
)

type criterion struct {
	name         string
	higherBetter bool
	// direct marks criteria whose value is already a score in [0,1].
	direct bool
	value  func(s Subject, c Comparable) (float64, error)
}

var criteria = []criterion{
	{name: "net_rent", value: func(s Subject, c Comparable) (float64, error) {
		if c.NetRent <= 0 {
			return 0, types.Validationf("net_rent", "must be positive, got %v", c.NetRent)
		}
		return c.NetRent, nil
	}},
	{name: "tmi", value: func(s Subject, c Comparable) (float64, error) {
		if c.TMI < 0 {
			return 0, types.Validationf("tmi", "must be non-negative, got %v", c.TMI)
		}
		return c.TMI, nil
	}},
	{name: "clear_height", higherBetter: true, value: func(s Subject, c Comparable) (float64, error) {
		if c.ClearHeight <= 0 {
			return 0, types.Validationf("clear_height", "must be positive, got %v", c.ClearHeight)
		}
		return c.ClearHeight, nil
	}},
	{name: "office_pct", value: func(s Subject, c Comparable) (float64, error) {
		if c.OfficePct < 0 || c.OfficePct > maxOfficePct {
			return 0, types.Validationf("office_pct", "must be within [0,%d], got %v", maxOfficePct, c.OfficePct)
		}
		// Scored as deviation from the subject's office share.
		return math.Abs(c.OfficePct - s.OfficePct), nil
	}},
	{name: "distance", value: func(s Subject, c Comparable) (float64, error) {
		if c.Distance < 0 {
			return 0, types.Validationf("distance", "must be non-negative, got %v", c.Distance)
		}
		return c.Distance, nil
	}},
	{name: "area_difference", value: func(s Subject, c Comparable) (float64, error) {
		if c.AreaDifference < 0 {
			return 0, types.Validationf("area_difference", "must be non-negative, got %v", c.AreaDifference)
		}
		return c.AreaDifference, nil
	}},
	{name: "year_built", higherBetter: true, value: func(s Subject, c Comparable) (float64, error) {
		if c.YearBuilt < yearBuiltFloor || c.YearBuilt > yearBuiltCeiling {
			return 0, types.Validationf("year_built", "%d outside plausible range [%d,%d]", c.YearBuilt, yearBuiltFloor, yearBuiltCeiling)
		}
		return float64(c.YearBuilt), nil
	}},
	{name: "building_class", direct: true, value: func(s Subject, c Comparable) (float64, error) {
		v, ok := classScore[c.BuildingClass]
		if !ok {
			return 0, &types.InvalidEnumError{Field: "building_class", Value: c.BuildingClass, Allowed: []string{"A", "B", "C"}}
		}
		return v, nil
	}},
	{name: "parking_ratio", higherBetter: true, value: func(s Subject, c Comparable) (float64, error) {
		if c.ParkingRatio < 0 {
			return 0, types.Validationf("parking_ratio", "must be non-negative, got %v", c.ParkingRatio)
		}
		return c.ParkingRatio, nil
	}},
}

// CriterionNames returns the ranked variable names in canonical order.
func CriterionNames() []string {
	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = c.name
	}
	return names
}

// DefaultWeights is the standard weighting: occupancy cost leads, proximity
// and physical fit follow, building quality trails.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"net_rent":        0.20,
		"tmi":             0.10,
		"clear_height":    0.10,
		"office_pct":      0.05,
		"distance":        0.15,
		"area_difference": 0.10,
		"year_built":      0.10,
		"building_class":  0.10,
		"parking_ratio":   0.10,
	}
}

const weightSumTolerance = 0.01

func validateWeights(weights map[string]float64) error {
	if len(weights) == 0 {
		return types.Validationf("weights", "at least one criterion weight is required")
	}
	known := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		known[c.name] = true
	}
	sum := 0.0
	for name, w := range weights {
		if !known[name] {
			return &types.InvalidEnumError{Field: "weights", Value: name, Allowed: CriterionNames()}
		}
		if w < 0 {
			return types.Validationf("weights", "criterion %q weight %v is negative", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return types.Validationf("weights", "weights sum to %.4f, want 1.0 within %.2f", sum, weightSumTolerance)
	}
	return nil
}

// Rank scores and orders the comparables against the subject. Absent criteria
// in the weight map carry zero weight. A criterion whose values do not spread
// across the set scores a neutral 0.5 for everyone. Ties in the composite
// break by name so the ordering is stable run to run.
func Rank(subject Subject, comps []Comparable, weights map[string]float64) ([]Ranked, error) {
	if len(comps) == 0 {
		return nil, types.Validationf("comparables", "at least one comparable is required")
	}
	if subject.OfficePct < 0 || subject.OfficePct > maxOfficePct {
		return nil, types.Validationf("subject.office_pct", "must be within [0,%d], got %v", maxOfficePct, subject.OfficePct)
	}
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := validateWeights(weights); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(comps))
	for i, c := range comps {
		if c.Name == "" {
			return nil, types.Validationf("comparables", "comparable %d has no name", i)
		}
		if seen[c.Name] {
			return nil, types.Validationf("comparables", "duplicate comparable name %q", c.Name)
		}
		seen[c.Name] = true
	}

	// Extract and validate every value before scoring anything.
	values := make([]map[string]float64, len(comps))
	for i, c := range comps {
		values[i] = make(map[string]float64, len(criteria))
		for _, crit := range criteria {
			v, err := crit.value(subject, c)
			if err != nil {
				return nil, fmt.Errorf("comparable %q: %w", c.Name, err)
			}
			values[i][crit.name] = v
		}
	}

	ranked := make([]Ranked, len(comps))
	for i, c := range comps {
		ranked[i] = Ranked{Comparable: c, Scores: make(map[string]float64, len(criteria))}
	}

	for _, crit := range criteria {
		if crit.direct {
			for i := range ranked {
				ranked[i].Scores[crit.name] = values[i][crit.name]
			}
			continue
		}
		lo, hi := values[0][crit.name], values[0][crit.name]
		for i := 1; i < len(values); i++ {
			v := values[i][crit.name]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		for i := range ranked {
			ranked[i].Scores[crit.name] = normalize(values[i][crit.name], lo, hi, crit.higherBetter)
		}
	}

	for i := range ranked {
		composite := 0.0
		for name, w := range weights {
			composite += w * ranked[i].Scores[name]
		}
		ranked[i].Composite = composite * 100
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Composite != ranked[j].Composite {
			return ranked[i].Composite > ranked[j].Composite
		}
		return ranked[i].Name < ranked[j].Name
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// Summarize is the one-line description of a ranking used by run history
// and batch tables.
func Summarize(ranked []Ranked) string {
	if len(ranked) == 0 {
		return "no comparables ranked"
	}
	return fmt.Sprintf("%d comparables ranked; best match %s", len(ranked), ranked[0].Name)
}

// normalize min-max scales v into [0,1] over [lo,hi], flipping direction for
// cost criteria. A degenerate spread scores neutral.
func normalize(v, lo, hi float64, higherBetter bool) float64 {
	if hi == lo {
		return 0.5
	}
	n := (v - lo) / (hi - lo)
	if !higherBetter {
		n = 1 - n
	}
	return n
}
