package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var investmentPattern = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?|\.\d+)\s*(million|billion)?`)

var (
	million = decimal.NewFromInt(1_000_000)
	billion = decimal.NewFromInt(1_000_000_000)
)

// ParseMinimumInvestment turns free text such as "$1.5 million - $3 million" into the
// numeric value of its first amount, scaled by a following "million" or "billion".
// Text without a recognizable amount yields 0.
func ParseMinimumInvestment(text string) float64 {
	m := investmentPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "million":
		amount = amount.Mul(million)
	case "billion":
		amount = amount.Mul(billion)
	}
	return amount.InexactFloat64()
}
