// Package scenario loads analysis input records from JSON files. A record
// either declares its kind explicitly or gets sniffed from its key signature,
// so batch runs can mix settlement, appraisal, ranking, and lease-option
// files in one directory.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"dealdesk/internal/appraisal"
	"dealdesk/internal/leaseopt"
	"dealdesk/internal/mcda"
	"dealdesk/internal/negotiation"
	"dealdesk/internal/types"
)

// RankingInput is the on-disk shape for a comparable ranking run. Weights
// are optional; nil means the configured defaults.
type RankingInput struct {
	Subject     mcda.Subject       `json:"subject,omitempty"`
	Weights     map[string]float64 `json:"weights,omitempty"`
	Comparables []mcda.Comparable  `json:"comparables"`
}

// LeaseOptionInput is the on-disk shape for a lease-option assessment.
type LeaseOptionInput struct {
	leaseopt.Inputs
	QuotedFee float64 `json:"quoted_fee,omitempty"`
}

// File is one parsed input record, tagged with the kind that drives
// dispatch. Exactly one payload field is non-nil.
type File struct {
	Kind   types.Kind `json:"kind"`
	Source string     `json:"source,omitempty"`

	Settlement  *negotiation.Scenario `json:"settlement,omitempty"`
	Appraisal   *appraisal.Request    `json:"appraisal,omitempty"`
	Ranking     *RankingInput         `json:"ranking,omitempty"`
	LeaseOption *LeaseOptionInput     `json:"lease_option,omitempty"`
}

// Load reads and parses one scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Source = path
	return f, nil
}

// Parse decodes a scenario record. An explicit "kind" key wins; without one
// the record's key signature decides.
func Parse(data []byte) (*File, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, types.Validationf("scenario", "not a JSON object: %v", err)
	}

	kind, err := resolveKind(raw)
	if err != nil {
		return nil, err
	}

	f := &File{Kind: kind}
	switch kind {
	case types.KindSettlement:
		var s negotiation.Scenario
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, types.Validationf("scenario", "bad settlement record: %v", err)
		}
		f.Settlement = &s
	case types.KindAppraisal:
		var r appraisal.Request
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, types.Validationf("scenario", "bad appraisal record: %v", err)
		}
		f.Appraisal = &r
	case types.KindRanking:
		var r RankingInput
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, types.Validationf("scenario", "bad ranking record: %v", err)
		}
		f.Ranking = &r
	case types.KindLeaseOption:
		var l LeaseOptionInput
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, types.Validationf("scenario", "bad lease option record: %v", err)
		}
		f.LeaseOption = &l
	default:
		return nil, types.Validationf("kind", "unhandled scenario kind %q", kind)
	}
	return f, nil
}

// resolveKind picks the record kind from the explicit tag or, failing that,
// from which signature keys appear.
func resolveKind(raw map[string]json.RawMessage) (types.Kind, error) {
	if tag, ok := raw["kind"]; ok {
		var s string
		if err := json.Unmarshal(tag, &s); err != nil {
			return "", types.Validationf("kind", "must be a string: %v", err)
		}
		return types.ParseKind(s)
	}

	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := raw[k]; ok {
				return true
			}
		}
		return false
	}
	switch {
	case has("buyer_max", "seller_min", "owner_profile"):
		return types.KindSettlement, nil
	case has("comparables"):
		return types.KindRanking, nil
	case has("strike", "volatility"):
		return types.KindLeaseOption, nil
	case has("cost", "depreciation"):
		return types.KindAppraisal, nil
	}
	return "", types.Validationf("scenario", "cannot determine record kind; add a \"kind\" field")
}
