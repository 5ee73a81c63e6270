package delinquency

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/dealer-billing/internal/domain"
)

// Policy bundles the penalty rules with the escalation threshold: a schedule
// is delinquent once its worst aging reaches ThresholdDays.
type Policy struct {
	Penalty       PenaltyPolicy
	ThresholdDays int
}

// Evaluate computes every metric in one pass plus the per-installment aging
// rows, in schedule order.
func Evaluate(installments []*domain.Installment, today domain.Date, policy Policy) (*domain.DelinquencyMetrics, []*domain.InstallmentAging, error) {
	if err := today.Validate(); err != nil {
		return nil, nil, err
	}

	metrics := &domain.DelinquencyMetrics{
		AsOf:               today,
		TotalOverdueAmount: decimal.Zero,
		TotalPenalty:       decimal.Zero,
	}
	rows := make([]*domain.InstallmentAging, 0, len(installments))
	daysSum := 0

	for _, inst := range installments {
		days, err := DaysOverdue(inst.DueDate, today)
		if err != nil {
			return nil, nil, err
		}

		row := &domain.InstallmentAging{
			SequenceNumber: inst.SequenceNumber,
			DueDate:        inst.DueDate,
			Amount:         inst.Amount,
			Status:         inst.Status,
			Penalty:        decimal.Zero,
		}
		rows = append(rows, row)

		if inst.IsPaid() || days == 0 {
			continue
		}

		row.DaysOverdue = days
		row.Penalty = policy.Penalty.Penalty(inst.Amount, days)

		metrics.TotalOverdueAmount = metrics.TotalOverdueAmount.Add(inst.Amount)
		metrics.TotalPenalty = metrics.TotalPenalty.Add(row.Penalty)
		metrics.OverdueCount++
		daysSum += days
		if days > metrics.MaxDaysOverdue {
			metrics.MaxDaysOverdue = days
		}
		addToBucket(&metrics.Aging, days)
	}

	metrics.AverageDaysOverdue = roundedMean(daysSum, metrics.OverdueCount)
	metrics.Delinquent = policy.ThresholdDays > 0 && metrics.MaxDaysOverdue >= policy.ThresholdDays

	return metrics, rows, nil
}

func addToBucket(b *domain.AgingBuckets, days int) {
	switch {
	case days <= 30:
		b.Days1To30++
	case days <= 60:
		b.Days31To60++
	case days <= 90:
		b.Days61To90++
	default:
		b.Over90++
	}
}
