package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyRate converts an annual percentage into a periodic monthly rate.
// Formula: annualRatePercent / 12 / 100
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(twelve).Div(hundred)
}

// AnnuityPayment returns the unrounded fixed payment that amortizes principal
// over periods at monthlyRate.
// Formula: P * r / (1 - (1 + r)^-n), or P / n when r is zero
func AnnuityPayment(principal, monthlyRate decimal.Decimal, periods int) decimal.Decimal {
	n := decimal.NewFromInt(int64(periods))
	if monthlyRate.IsZero() {
		return principal.Div(n)
	}

	// (1+r)^-n rewritten as f / (f - 1) with f = (1+r)^n keeps the exponent positive.
	factor := decimal.NewFromInt(1).Add(monthlyRate).Pow(n)
	return principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
}

// RoundToUnit rounds to the nearest whole currency unit, halves away from zero.
func RoundToUnit(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(0)
}

// PercentOf returns percent% of amount, unrounded.
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// DaysIn returns the number of days in the given month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
