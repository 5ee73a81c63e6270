package delinquency

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/dealer-billing/pkg/utils"
)

// PenaltyPolicy charges a daily percentage of the installment amount once the
// grace period is over, capped at CapPercent of the amount. A zero cap means
// uncapped.
type PenaltyPolicy struct {
	DailyRatePercent decimal.Decimal
	GraceDays        int
	CapPercent       decimal.Decimal
}

// Penalty for an installment of amount that is daysOverdue late, rounded to
// the whole unit.
func (p PenaltyPolicy) Penalty(amount decimal.Decimal, daysOverdue int) decimal.Decimal {
	chargeable := daysOverdue - p.GraceDays
	if chargeable <= 0 || !p.DailyRatePercent.IsPositive() {
		return decimal.Zero
	}

	penalty := utils.PercentOf(amount, p.DailyRatePercent).Mul(decimal.NewFromInt(int64(chargeable)))
	if p.CapPercent.IsPositive() {
		penalty = decimal.Min(penalty, utils.PercentOf(amount, p.CapPercent))
	}
	return utils.RoundToUnit(penalty)
}
