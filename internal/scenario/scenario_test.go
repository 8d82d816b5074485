package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"dealdesk/internal/types"
)

const settlementJSON = `{
	"matter": "Corridor parcel 12",
	"buyer_max": 200000,
	"seller_min": 150000,
	"probabilities": {"low": 0.2, "mid": 0.5, "high": 0.3},
	"awards": {"low": 140000, "mid": 175000, "high": 210000},
	"costs": {"legal": 45000, "expert": 25000, "time": 25000},
	"owner_profile": {
		"motivation": {"financial_need": "moderate", "emotional_attachment": "moderate", "business_impact": "moderate"},
		"sophistication": {"real_estate_experience": "some", "legal_representation": "general_counsel", "previous_negotiations": "some"},
		"alternatives": {"relocation_options": "limited", "financial_flexibility": "moderate", "timeline_pressure": "moderate"}
	}
}`

func TestParseSettlementBySniffing(t *testing.T) {
	f, err := Parse([]byte(settlementJSON))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Kind != types.KindSettlement {
		t.Fatalf("Kind = %s, want settlement", f.Kind)
	}
	if f.Settlement == nil {
		t.Fatal("Settlement payload is nil")
	}
	if f.Settlement.BuyerMax != 200000 {
		t.Errorf("BuyerMax = %v, want 200000", f.Settlement.BuyerMax)
	}
	if f.Settlement.Owner.Motivation.FinancialNeed != "moderate" {
		t.Errorf("FinancialNeed = %q, want moderate", f.Settlement.Owner.Motivation.FinancialNeed)
	}
}

func TestParseExplicitKind(t *testing.T) {
	tests := []struct {
		name string
		data string
		want types.Kind
	}{
		{
			name: "appraisal with alias",
			data: `{"kind": "cost_approach", "cost": {"materials": 150000, "labor": 80000, "overhead_rate": 0.15, "profit_rate": 0.12}}`,
			want: types.KindAppraisal,
		},
		{
			name: "ranking",
			data: `{"kind": "ranking", "comparables": [{"name": "Alpha", "net_rent": 12.5}]}`,
			want: types.KindRanking,
		},
		{
			name: "lease option",
			data: `{"kind": "lease_option", "property_value": 850000, "strike": 900000, "years": 3, "risk_free": 0.04, "volatility": 0.15, "quoted_fee": 25000}`,
			want: types.KindLeaseOption,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if f.Kind != tt.want {
				t.Errorf("Kind = %s, want %s", f.Kind, tt.want)
			}
		})
	}
}

func TestParseSniffing(t *testing.T) {
	tests := []struct {
		name string
		data string
		want types.Kind
	}{
		{"comparables key", `{"comparables": []}`, types.KindRanking},
		{"strike key", `{"property_value": 1, "strike": 2, "years": 1, "volatility": 0.2}`, types.KindLeaseOption},
		{"cost key", `{"cost": {"materials": 1000}}`, types.KindAppraisal},
		{"owner profile key", `{"owner_profile": {}}`, types.KindSettlement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if f.Kind != tt.want {
				t.Errorf("Kind = %s, want %s", f.Kind, tt.want)
			}
		})
	}
}

func TestParseLeaseOptionPayload(t *testing.T) {
	data := `{"kind": "leaseopt", "property_value": 850000, "strike": 900000, "years": 3, "risk_free": 0.04, "volatility": 0.15, "quoted_fee": 25000}`
	f, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.LeaseOption == nil {
		t.Fatal("LeaseOption payload is nil")
	}
	if f.LeaseOption.Strike != 900000 {
		t.Errorf("Strike = %v, want 900000", f.LeaseOption.Strike)
	}
	if f.LeaseOption.QuotedFee != 25000 {
		t.Errorf("QuotedFee = %v, want 25000", f.LeaseOption.QuotedFee)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `negotiate harder`},
		{"json array", `[1, 2, 3]`},
		{"unknown kind", `{"kind": "arbitration"}`},
		{"non-string kind", `{"kind": 7}`},
		{"no signature keys", `{"address": "41 Industrial Rd"}`},
		{"wrong payload type", `{"kind": "ranking", "comparables": "Alpha"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !types.IsInputError(err) {
				t.Errorf("IsInputError(%v) = false, want true", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parcel12.json")
	if err := os.WriteFile(path, []byte(settlementJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Source != path {
		t.Errorf("Source = %q, want %q", f.Source, path)
	}
	if f.Kind != types.KindSettlement {
		t.Errorf("Kind = %s, want settlement", f.Kind)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("Load(missing) error = nil, want error")
	}
}
