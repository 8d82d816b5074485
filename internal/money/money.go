// Package money holds the shared rounding and formatting conventions for
// dollar amounts. Calculations keep full float precision; rounding to cents
// happens once, at the presentation boundary (reports, tables, exports).
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Round2 rounds to cents, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// USD formats an amount as a grouped dollar string, e.g. "$296,240.00".
func USD(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// USDWhole formats an amount to whole dollars, e.g. "$296,240".
func USDWhole(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// Percent formats a 0..1 rate as a percentage, e.g. "24.0%".
func Percent(rate float64) string {
	return printer.Sprintf("%.1f%%", rate*100)
}

// Grouped formats a plain number with thousands separators.
func Grouped(v float64) string {
	return printer.Sprintf("%.2f", v)
}
