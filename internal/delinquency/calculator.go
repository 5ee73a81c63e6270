// Package delinquency derives overdue state from a schedule and a reference
// date. Every function takes "today" explicitly and works on whole days.
//
// An installment is overdue when its status is not paid and its due date is
// strictly before today. Due dates and the reference date are validated up
// front: one bad record fails the whole computation instead of silently
// dropping out of the aggregates.
package delinquency

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/dealer-billing/internal/domain"
)

// DaysOverdue is the number of calendar days from due to today, floored at 0.
// An installment due today is not overdue.
func DaysOverdue(due, today domain.Date) (int, error) {
	if err := due.Validate(); err != nil {
		return 0, err
	}
	if err := today.Validate(); err != nil {
		return 0, err
	}
	if !due.Before(today) {
		return 0, nil
	}
	return today.DaysSince(due), nil
}

// TotalOverdueAmount sums the full amount of every overdue installment,
// partially paid ones included.
func TotalOverdueAmount(installments []*domain.Installment, today domain.Date) (decimal.Decimal, error) {
	total := decimal.Zero
	err := eachOverdue(installments, today, func(inst *domain.Installment, _ int) {
		total = total.Add(inst.Amount)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func OverdueCount(installments []*domain.Installment, today domain.Date) (int, error) {
	count := 0
	err := eachOverdue(installments, today, func(_ *domain.Installment, _ int) {
		count++
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// AverageDaysOverdue is the mean days overdue across overdue installments,
// rounded half up. 0 when nothing is overdue.
func AverageDaysOverdue(installments []*domain.Installment, today domain.Date) (int, error) {
	sum, count := 0, 0
	err := eachOverdue(installments, today, func(_ *domain.Installment, days int) {
		sum += days
		count++
	})
	if err != nil {
		return 0, err
	}
	return roundedMean(sum, count), nil
}

// MaxDaysOverdue is the worst aging among unpaid installments.
func MaxDaysOverdue(installments []*domain.Installment, today domain.Date) (int, error) {
	worst := 0
	err := eachOverdue(installments, today, func(_ *domain.Installment, days int) {
		if days > worst {
			worst = days
		}
	})
	if err != nil {
		return 0, err
	}
	return worst, nil
}

// eachOverdue validates every due date, then calls fn for each unpaid
// installment with a positive days overdue.
func eachOverdue(installments []*domain.Installment, today domain.Date, fn func(*domain.Installment, int)) error {
	if err := today.Validate(); err != nil {
		return err
	}
	for _, inst := range installments {
		days, err := DaysOverdue(inst.DueDate, today)
		if err != nil {
			return err
		}
		if inst.IsPaid() || days == 0 {
			continue
		}
		fn(inst, days)
	}
	return nil
}

func roundedMean(sum, count int) int {
	if count == 0 {
		return 0
	}
	return (2*sum + count) / (2 * count)
}
