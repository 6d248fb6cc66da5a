package tgCallback

import (
	"strings"
	"testing"
)

func TestValidTicker(t *testing.T) {
	tests := []struct {
		ticker string
		want   bool
	}{
		{"AAPL", true},
		{"BRK.B", true},
		{strings.Repeat("A", MaxTickerLen), true},
		{strings.Repeat("A", MaxTickerLen+1), false},
		{"BRK|B", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidTicker(tt.ticker); got != tt.want {
			t.Errorf("ValidTicker(%q) = %v, want %v", tt.ticker, got, tt.want)
		}
	}
}

func TestLongestButtonFits(t *testing.T) {
	data := "\f" + ToggleTicker + "|portfolio|" + strings.Repeat("A", MaxTickerLen)
	if len(data) > MaxDataLen {
		t.Errorf("toggle button data is %d bytes, limit %d", len(data), MaxDataLen)
	}
}
