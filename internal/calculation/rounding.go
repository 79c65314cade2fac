package calculation

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds money to cents, half away from zero
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundPoints rounds to a whole number of points, half away from zero
func RoundPoints(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// EarnPointsFromDollars converts a points-dollar balance into earn points (one point per $100)
func EarnPointsFromDollars(pointsDollars decimal.Decimal) int64 {
	return RoundPoints(pointsDollars.Div(hundred))
}
