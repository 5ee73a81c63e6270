package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgingBuckets counts overdue installments by days overdue.
type AgingBuckets struct {
	Days1To30  int `json:"days_1_30"`
	Days31To60 int `json:"days_31_60"`
	Days61To90 int `json:"days_61_90"`
	Over90     int `json:"over_90"`
}

// DelinquencyMetrics is derived from installments and a reference date on
// every read. It is never persisted or cached.
type DelinquencyMetrics struct {
	AsOf               Date            `json:"as_of"`
	TotalOverdueAmount decimal.Decimal `json:"total_overdue_amount"`
	OverdueCount       int             `json:"overdue_count"`
	AverageDaysOverdue int             `json:"average_days_overdue"`
	MaxDaysOverdue     int             `json:"max_days_overdue"`
	TotalPenalty       decimal.Decimal `json:"total_penalty"`
	Aging              AgingBuckets    `json:"aging"`
	Delinquent         bool            `json:"delinquent"`
}

// InstallmentAging is the per-installment view behind the collections screen.
type InstallmentAging struct {
	SequenceNumber int               `json:"sequence_number"`
	DueDate        Date              `json:"due_date"`
	Amount         decimal.Decimal   `json:"amount"`
	Status         InstallmentStatus `json:"status"`
	DaysOverdue    int               `json:"days_overdue"`
	Penalty        decimal.Decimal   `json:"penalty"`
}

type DelinquencyResponse struct {
	SaleID       uuid.UUID           `json:"sale_id"`
	Installments []*InstallmentAging `json:"installments"`
	Metrics      *DelinquencyMetrics `json:"metrics"`
}

// SaleDelinquency pairs a sale with its metrics in portfolio sweeps.
type SaleDelinquency struct {
	SaleID  uuid.UUID           `json:"sale_id"`
	Metrics *DelinquencyMetrics `json:"metrics"`
}

// PortfolioDelinquencyResponse aggregates every open installment of the
// dealership and lists the sales past the escalation threshold.
type PortfolioDelinquencyResponse struct {
	Metrics        *DelinquencyMetrics `json:"metrics"`
	SalesEvaluated int                 `json:"sales_evaluated"`
	Delinquent     []*SaleDelinquency  `json:"delinquent"`
}
