package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/dealer-billing/internal/domain"
)

// Summary totals a schedule.
type Summary struct {
	Installments       int             `json:"installments"`
	RegularPayment     decimal.Decimal `json:"regular_payment"`
	TotalPrincipal     decimal.Decimal `json:"total_principal"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	TotalReinforcement decimal.Decimal `json:"total_reinforcement"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
}

func Summarize(installments []*domain.Installment) Summary {
	s := Summary{
		Installments:       len(installments),
		TotalPrincipal:     decimal.Zero,
		TotalInterest:      decimal.Zero,
		TotalReinforcement: decimal.Zero,
		TotalAmount:        decimal.Zero,
	}
	if len(installments) > 0 {
		first := installments[0]
		s.RegularPayment = first.Principal.Add(first.Interest)
	}
	for _, inst := range installments {
		s.TotalPrincipal = s.TotalPrincipal.Add(inst.Principal)
		s.TotalInterest = s.TotalInterest.Add(inst.Interest)
		s.TotalReinforcement = s.TotalReinforcement.Add(inst.Reinforcement)
		s.TotalAmount = s.TotalAmount.Add(inst.Amount)
	}
	return s
}

type PreviewResponse struct {
	Summary  Summary               `json:"summary"`
	Schedule []*domain.Installment `json:"schedule"`
}
