package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is money received against one installment.
type Payment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	SaleID         uuid.UUID       `json:"sale_id" db:"sale_id"`
	SequenceNumber int             `json:"sequence_number" db:"sequence_number"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	PaidOn         Date            `json:"paid_on" db:"paid_on"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

type RecordPaymentRequest struct {
	SaleID         uuid.UUID       `json:"-"`
	SequenceNumber int             `json:"-"`
	IdempotencyKey string          `json:"-"`
	Amount         decimal.Decimal `json:"amount" validate:"gt=0,whole"`
	PaidOn         *Date           `json:"paid_on,omitempty"`
}

type PaymentHistoryResponse struct {
	SaleID    uuid.UUID       `json:"sale_id"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Payments  []*Payment      `json:"payments"`
}

type PaymentResponse struct {
	Payment     *Payment     `json:"payment"`
	Installment *Installment `json:"installment"`
}
