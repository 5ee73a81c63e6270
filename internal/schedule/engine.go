// Package schedule turns financing terms into a monthly installment plan.
//
// Amounts are whole currency units. Each period's interest is rounded to the
// unit, the regular payment is rounded once, and the final installment takes
// whatever balance is left so the principal parts sum to the principal
// exactly.
package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/segyhp/dealer-billing/internal/domain"
	customError "github.com/segyhp/dealer-billing/pkg/errors"
	"github.com/segyhp/dealer-billing/pkg/utils"
	"github.com/segyhp/dealer-billing/pkg/validation"
)

var validate = validation.New()

// Validate checks terms without generating anything.
func Validate(terms domain.FinancingTerms) error {
	if terms.Principal.IsNegative() {
		return customError.WrapValidation("principal must not be negative")
	}
	if terms.TermMonths <= 0 {
		return customError.WrapValidation("term_months must be greater than 0")
	}
	if err := validation.Struct(validate, terms); err != nil {
		return err
	}
	if err := terms.StartDate.Validate(); err != nil {
		return err
	}
	for _, r := range terms.Reinforcements {
		if r.Month < 1 || r.Month > terms.TermMonths {
			return customError.WrapValidation(
				fmt.Sprintf("reinforcement month %d is outside 1..%d", r.Month, terms.TermMonths))
		}
	}
	return nil
}

// Generate returns exactly terms.TermMonths pending installments, numbered
// from 1, with installment n due n calendar months after the start date.
// IDs and sale ownership are left for the caller to stamp.
func Generate(terms domain.FinancingTerms) ([]*domain.Installment, error) {
	if err := Validate(terms); err != nil {
		return nil, err
	}

	extras := reinforcementsByMonth(terms.Reinforcements)
	rate := utils.MonthlyRate(terms.AnnualRatePercent)
	payment := RegularPayment(terms.Principal, terms.AnnualRatePercent, terms.TermMonths)

	installments := make([]*domain.Installment, 0, terms.TermMonths)
	balance := terms.Principal

	for seq := 1; seq <= terms.TermMonths; seq++ {
		interest := utils.RoundToUnit(balance.Mul(rate))

		principalPart := payment.Sub(interest)
		if seq == terms.TermMonths || principalPart.GreaterThan(balance) {
			principalPart = balance
		}
		if principalPart.IsNegative() {
			principalPart = decimal.Zero
		}
		balance = balance.Sub(principalPart)

		extra := extras[seq]
		installments = append(installments, &domain.Installment{
			SequenceNumber: seq,
			DueDate:        terms.StartDate.AddMonths(seq),
			Principal:      principalPart,
			Interest:       interest,
			Reinforcement:  extra,
			Amount:         principalPart.Add(interest).Add(extra),
			Status:         domain.InstallmentStatusPending,
		})
	}

	return installments, nil
}

// RegularPayment is the payment of every installment but the last, rounded
// to the nearest unit. The last installment absorbs the drift in either
// direction.
func RegularPayment(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	rate := utils.MonthlyRate(annualRatePercent)
	return utils.RoundToUnit(utils.AnnuityPayment(principal, rate, termMonths))
}

// Duplicate months are summed.
func reinforcementsByMonth(reinforcements []domain.Reinforcement) map[int]decimal.Decimal {
	extras := make(map[int]decimal.Decimal, len(reinforcements))
	for _, r := range reinforcements {
		extras[r.Month] = extras[r.Month].Add(r.Amount)
	}
	return extras
}
