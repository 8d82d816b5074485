// Package types provides shared type definitions used across dealdesk packages.
// This package exists to break import cycles between the calculation engines,
// the report builders, and the run-history store. Types in this package should
// be foundational data structures with no complex dependencies.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which calculator produced (or should consume) a document.
type Kind string

const (
	KindSettlement  Kind = "settlement"
	KindAppraisal   Kind = "appraisal"
	KindRanking     Kind = "ranking"
	KindLeaseOption Kind = "lease_option"
)

// Kinds lists every recognized kind in display order.
func Kinds() []Kind {
	return []Kind{KindSettlement, KindAppraisal, KindRanking, KindLeaseOption}
}

// ParseKind normalizes a user-supplied kind string.
// Accepts a few common aliases so batch inputs authored by hand still resolve.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "settlement", "settle", "negotiation":
		return KindSettlement, nil
	case "appraisal", "appraise", "cost_approach":
		return KindAppraisal, nil
	case "ranking", "rank", "mcda", "comparables":
		return KindRanking, nil
	case "lease_option", "leaseopt", "real_option", "option":
		return KindLeaseOption, nil
	}
	return "", &InvalidEnumError{Field: "kind", Value: s, Allowed: kindNames()}
}

func kindNames() []string {
	ks := Kinds()
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = string(k)
	}
	return names
}

// ErrNoZOPA signals that the buyer's maximum sits below the seller's minimum,
// so no settlement zone exists. Callers branch to a proceed-to-hearing
// recommendation rather than treating this as fatal.
var ErrNoZOPA = errors.New("no zone of possible agreement")

// ValidationError reports malformed or logically inconsistent input.
// All validation runs before any computation: no partial results are produced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidEnumError reports an enumerated level outside the recognized set.
// The scorer and ranking tables never extrapolate beyond their enumerations.
type InvalidEnumError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("unrecognized %s %q (allowed: %s)", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// IsInputError reports whether err is one of the input-validation failures
// (ValidationError or InvalidEnumError). These are user errors, not bugs, and
// the CLI prints them without a stack or retry.
func IsInputError(err error) bool {
	var ve *ValidationError
	var ee *InvalidEnumError
	return errors.As(err, &ve) || errors.As(err, &ee)
}
