package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reinforcement is an extra lump sum due alongside the regular installment of
// the given month of the plan.
type Reinforcement struct {
	Month  int             `json:"month" db:"month" validate:"gte=1"`
	Amount decimal.Decimal `json:"amount" db:"amount" validate:"gte=0,whole"`
}

// FinancingTerms is the input of schedule generation.
type FinancingTerms struct {
	Principal         decimal.Decimal `json:"principal" validate:"gte=0,whole"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"gte=0"`
	TermMonths        int             `json:"term_months" validate:"gt=0"`
	StartDate         Date            `json:"start_date"`
	Reinforcements    []Reinforcement `json:"reinforcements" validate:"dive"`
}

// Sale is a financed vehicle sale. It owns its installments and payments.
type Sale struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	ClientName        string          `json:"client_name" db:"client_name"`
	Vehicle           string          `json:"vehicle" db:"vehicle"`
	Price             decimal.Decimal `json:"price" db:"price"`
	DownPayment       decimal.Decimal `json:"down_payment" db:"down_payment"`
	Principal         decimal.Decimal `json:"principal" db:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" db:"annual_rate_percent"`
	TermMonths        int             `json:"term_months" db:"term_months"`
	StartDate         Date            `json:"start_date" db:"start_date"`
	Reinforcements    []Reinforcement `json:"reinforcements" db:"-"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// Terms returns the financing terms the sale's schedule was generated from.
func (s *Sale) Terms() FinancingTerms {
	return FinancingTerms{
		Principal:         s.Principal,
		AnnualRatePercent: s.AnnualRatePercent,
		TermMonths:        s.TermMonths,
		StartDate:         s.StartDate,
		Reinforcements:    s.Reinforcements,
	}
}

// DTOs for requests and responses

type CreateSaleRequest struct {
	ClientName        string          `json:"client_name" validate:"required"`
	Vehicle           string          `json:"vehicle" validate:"required"`
	Price             decimal.Decimal `json:"price" validate:"gt=0,whole"`
	DownPayment       decimal.Decimal `json:"down_payment" validate:"gte=0,whole"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"gte=0"`
	TermMonths        int             `json:"term_months" validate:"required,gt=0"`
	StartDate         Date            `json:"start_date"`
	Reinforcements    []Reinforcement `json:"reinforcements" validate:"dive"`
}

// Terms derives the financed principal from price and down payment.
func (r *CreateSaleRequest) Terms() FinancingTerms {
	return FinancingTerms{
		Principal:         r.Price.Sub(r.DownPayment),
		AnnualRatePercent: r.AnnualRatePercent,
		TermMonths:        r.TermMonths,
		StartDate:         r.StartDate,
		Reinforcements:    r.Reinforcements,
	}
}

type CreateSaleResponse struct {
	Sale     *Sale          `json:"sale"`
	Schedule []*Installment `json:"schedule"`
}

type OutstandingResponse struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
