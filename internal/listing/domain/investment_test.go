package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMinimumInvestment(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5 million", 1_500_000},
		{"1.1 million", 1_100_000},
		{"$1 million - $5 million", 1_000_000},
		{"2 BILLION", 2_000_000_000},
		{"500,000", 500_000},
		{"USD 250,000 minimum", 250_000},
		{"1,000.50", 1000.5},
		{"3million", 3_000_000},
		{".5 million", 500_000},
		{"", 0},
		{"negotiable", 0},
		{"...", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMinimumInvestment(tt.in))
		})
	}
}
