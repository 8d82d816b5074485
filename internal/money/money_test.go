package money

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{296240.004, 296240.00},
		{296240.005, 296240.01},
		{225142.399, 225142.40},
		{-12.345, -12.35},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{296240, "$296,240.00"},
		{225142.4, "$225,142.40"},
		{950.5, "$950.50"},
		{0, "$0.00"},
	}
	for _, tt := range tests {
		if got := USD(tt.in); got != tt.want {
			t.Errorf("USD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUSDWhole(t *testing.T) {
	if got := USDWhole(273500.49); got != "$273,500" {
		t.Errorf("USDWhole = %q, want $273,500", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.24); got != "24.0%" {
		t.Errorf("Percent(0.24) = %q, want 24.0%%", got)
	}
	if got := Percent(0.035); got != "3.5%" {
		t.Errorf("Percent(0.035) = %q, want 3.5%%", got)
	}
}
