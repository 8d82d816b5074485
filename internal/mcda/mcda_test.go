package mcda

import (
	"fmt"
	"math"
	"testing"

	"dealdesk/internal/types"
)

const eps = 1e-6

// fullComparable fills every field with mid-scale values so single-criterion
// tests can override just what they exercise.
func fullComparable(name string) Comparable {
	return Comparable{
		Name:           name,
		NetRent:        12.50,
		TMI:            4.25,
		ClearHeight:    24,
		OfficePct:      10,
		Distance:       2.0,
		AreaDifference: 5000,
		YearBuilt:      2000,
		BuildingClass:  "B",
		ParkingRatio:   1.5,
	}
}

func TestRankTwoCriteria(t *testing.T) {
	alpha := fullComparable("Alpha")
	alpha.NetRent = 10
	alpha.Distance = 1

	bravo := fullComparable("Bravo")
	bravo.NetRent = 16
	bravo.Distance = 3

	weights := map[string]float64{"net_rent": 0.5, "distance": 0.5}
	ranked, err := Rank(Subject{}, []Comparable{bravo, alpha}, weights)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if ranked[0].Name != "Alpha" || ranked[0].Rank != 1 {
		t.Fatalf("rank 1 = %q, want Alpha", ranked[0].Name)
	}
	// Alpha is cheapest and closest: both normalized scores are 1.
	if math.Abs(ranked[0].Composite-100) > eps {
		t.Errorf("Alpha composite = %v, want 100", ranked[0].Composite)
	}
	if math.Abs(ranked[1].Composite-0) > eps {
		t.Errorf("Bravo composite = %v, want 0", ranked[1].Composite)
	}
}

func TestRankDirectionAwareness(t *testing.T) {
	cheap := fullComparable("Cheap")
	cheap.NetRent = 9
	dear := fullComparable("Dear")
	dear.NetRent = 21

	ranked, err := Rank(Subject{}, []Comparable{cheap, dear}, nil)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, r := range ranked {
		switch r.Name {
		case "Cheap":
			if r.Scores["net_rent"] != 1 {
				t.Errorf("Cheap rent score = %v, want 1 (lower rent is better)", r.Scores["net_rent"])
			}
		case "Dear":
			if r.Scores["net_rent"] != 0 {
				t.Errorf("Dear rent score = %v, want 0", r.Scores["net_rent"])
			}
		}
	}
}

func TestRankOfficeDeviationFromSubject(t *testing.T) {
	match := fullComparable("Match")
	match.OfficePct = 15
	far := fullComparable("Far")
	far.OfficePct = 45

	subject := Subject{Name: "Subject", OfficePct: 15}
	ranked, err := Rank(subject, []Comparable{far, match}, nil)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, r := range ranked {
		switch r.Name {
		case "Match":
			// Zero deviation from the subject's office share is the best score.
			if r.Scores["office_pct"] != 1 {
				t.Errorf("Match office score = %v, want 1", r.Scores["office_pct"])
			}
		case "Far":
			if r.Scores["office_pct"] != 0 {
				t.Errorf("Far office score = %v, want 0", r.Scores["office_pct"])
			}
		}
	}
}

func TestRankDegenerateSpreadIsNeutral(t *testing.T) {
	a := fullComparable("Alpha")
	b := fullComparable("Bravo")

	ranked, err := Rank(Subject{}, []Comparable{a, b}, nil)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, r := range ranked {
		if r.Scores["net_rent"] != 0.5 {
			t.Errorf("%s rent score = %v, want neutral 0.5 on identical values", r.Name, r.Scores["net_rent"])
		}
		if r.Scores["year_built"] != 0.5 {
			t.Errorf("%s year score = %v, want neutral 0.5", r.Name, r.Scores["year_built"])
		}
	}
}

func TestRankBuildingClassDirectScore(t *testing.T) {
	a := fullComparable("Alpha")
	a.BuildingClass = "A"
	b := fullComparable("Bravo")
	b.BuildingClass = "C"

	ranked, err := Rank(Subject{}, []Comparable{a, b}, nil)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, r := range ranked {
		want := 1.0
		if r.Name == "Bravo" {
			want = 0.3
		}
		if r.Scores["building_class"] != want {
			t.Errorf("%s class score = %v, want %v", r.Name, r.Scores["building_class"], want)
		}
	}
}

func TestRankTieBreaksByName(t *testing.T) {
	a := fullComparable("Charlie")
	b := fullComparable("Alpha")
	c := fullComparable("Bravo")

	ranked, err := Rank(Subject{}, []Comparable{a, b, c}, nil)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	wantOrder := []string{"Alpha", "Bravo", "Charlie"}
	for i, name := range wantOrder {
		if ranked[i].Name != name {
			t.Errorf("rank %d = %q, want %q", i+1, ranked[i].Name, name)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("%s Rank = %d, want %d", ranked[i].Name, ranked[i].Rank, i+1)
		}
	}
}

func TestRankDominantComparableWins(t *testing.T) {
	best := Comparable{
		Name: "Best", NetRent: 9.50, TMI: 3.10, ClearHeight: 32, OfficePct: 10,
		Distance: 0.5, AreaDifference: 1000, YearBuilt: 2020,
		BuildingClass: "A", ParkingRatio: 2.5,
	}
	worst := Comparable{
		Name: "Worst", NetRent: 18.75, TMI: 6.40, ClearHeight: 16, OfficePct: 40,
		Distance: 6, AreaDifference: 22000, YearBuilt: 1978,
		BuildingClass: "C", ParkingRatio: 0.8,
	}
	mid := fullComparable("Middle")

	ranked, err := Rank(Subject{OfficePct: 10}, []Comparable{worst, mid, best}, nil)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if ranked[0].Name != "Best" {
		t.Errorf("rank 1 = %q, want Best", ranked[0].Name)
	}
	if ranked[2].Name != "Worst" {
		t.Errorf("rank 3 = %q, want Worst", ranked[2].Name)
	}
	if ranked[0].Composite < ranked[1].Composite || ranked[1].Composite < ranked[2].Composite {
		t.Errorf("composites not descending: %v, %v, %v", ranked[0].Composite, ranked[1].Composite, ranked[2].Composite)
	}
}

func TestRankSingleComparable(t *testing.T) {
	ranked, err := Rank(Subject{}, []Comparable{fullComparable("Only")}, nil)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(ranked) != 1 || ranked[0].Rank != 1 {
		t.Fatalf("single comparable not ranked first: %+v", ranked)
	}
	// Every min-max criterion is degenerate; building class stays direct.
	if ranked[0].Scores["net_rent"] != 0.5 {
		t.Errorf("rent score = %v, want neutral 0.5", ranked[0].Scores["net_rent"])
	}
	if ranked[0].Scores["building_class"] != 0.6 {
		t.Errorf("class score = %v, want 0.6 for class B", ranked[0].Scores["building_class"])
	}
}

func TestRankValidation(t *testing.T) {
	valid := fullComparable("Valid")

	badRent := fullComparable("BadRent")
	badRent.NetRent = 0

	badClass := fullComparable("BadClass")
	badClass.BuildingClass = "D"

	badYear := fullComparable("BadYear")
	badYear.YearBuilt = 1492

	badOffice := fullComparable("BadOffice")
	badOffice.OfficePct = 130

	noName := fullComparable("")

	tests := []struct {
		name    string
		subject Subject
		comps   []Comparable
		weights map[string]float64
	}{
		{"no comparables", Subject{}, nil, nil},
		{"non-positive rent", Subject{}, []Comparable{valid, badRent}, nil},
		{"unknown building class", Subject{}, []Comparable{valid, badClass}, nil},
		{"implausible year", Subject{}, []Comparable{valid, badYear}, nil},
		{"office share above range", Subject{}, []Comparable{valid, badOffice}, nil},
		{"subject office share above range", Subject{OfficePct: 130}, []Comparable{valid}, nil},
		{"missing name", Subject{}, []Comparable{noName}, nil},
		{"duplicate names", Subject{}, []Comparable{valid, valid}, nil},
		{"weights sum off", Subject{}, []Comparable{valid}, map[string]float64{"net_rent": 0.5}},
		{"negative weight", Subject{}, []Comparable{valid}, map[string]float64{"net_rent": 1.5, "distance": -0.5}},
		{"unknown criterion", Subject{}, []Comparable{valid}, map[string]float64{"frontage": 1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rank(tt.subject, tt.comps, tt.weights)
			if err == nil {
				t.Fatal("Rank() error = nil, want error")
			}
			if !types.IsInputError(err) {
				t.Errorf("IsInputError(%v) = false, want true", err)
			}
		})
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range DefaultWeights() {
		sum += w
	}
	if math.Abs(sum-1.0) > eps {
		t.Errorf("default weights sum = %v, want 1.0", sum)
	}
	if len(DefaultWeights()) != len(CriterionNames()) {
		t.Errorf("default weights cover %d criteria, want %d", len(DefaultWeights()), len(CriterionNames()))
	}
}

func BenchmarkRank(b *testing.B) {
	comps := make([]Comparable, 50)
	for i := range comps {
		c := fullComparable(fmt.Sprintf("Comp-%02d", i))
		c.NetRent = 9 + float64(i)*0.25
		c.Distance = float64(i%10) * 0.7
		c.YearBuilt = 1975 + i
		comps[i] = c
	}
	subject := Subject{Name: "Subject", OfficePct: 12}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Rank(subject, comps, nil); err != nil {
			b.Fatal(err)
		}
	}
}
