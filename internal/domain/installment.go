package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/dealer-billing/pkg/errors"
)

// InstallmentStatus is the payment state of an installment.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPartial InstallmentStatus = "partial"
	InstallmentStatusPaid    InstallmentStatus = "paid"
)

// ParseInstallmentStatus rejects anything outside pending, partial and paid.
func ParseInstallmentStatus(s string) (InstallmentStatus, error) {
	status := InstallmentStatus(s)
	if !status.Valid() {
		return "", customError.WrapValidation(fmt.Sprintf("unknown installment status %q", s))
	}
	return status, nil
}

func (s InstallmentStatus) Valid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPartial, InstallmentStatusPaid:
		return true
	}
	return false
}

func (s *InstallmentStatus) UnmarshalText(data []byte) error {
	status, err := ParseInstallmentStatus(string(data))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

func (s *InstallmentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into InstallmentStatus", src)
	}
}

func (s InstallmentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, customError.WrapValidation(fmt.Sprintf("unknown installment status %q", string(s)))
	}
	return string(s), nil
}

// Installment is one scheduled payment obligation of a sale. Amount and
// DueDate never change after creation; only the payment fields move.
type Installment struct {
	ID             uuid.UUID           `json:"id" db:"id"`
	SaleID         uuid.UUID           `json:"sale_id" db:"sale_id"`
	SequenceNumber int                 `json:"sequence_number" db:"sequence_number"`
	DueDate        Date                `json:"due_date" db:"due_date"`
	Principal      decimal.Decimal     `json:"principal" db:"principal"`
	Interest       decimal.Decimal     `json:"interest" db:"interest"`
	Reinforcement  decimal.Decimal     `json:"reinforcement" db:"reinforcement"`
	Amount         decimal.Decimal     `json:"amount" db:"amount"`
	Status         InstallmentStatus   `json:"status" db:"status"`
	PaymentDate    *Date               `json:"payment_date" db:"payment_date"`
	PartialAmount  decimal.NullDecimal `json:"partial_amount" db:"partial_amount"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
}

func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// PaidSoFar is the recorded partial amount, or zero.
func (i *Installment) PaidSoFar() decimal.Decimal {
	if i.PartialAmount.Valid {
		return i.PartialAmount.Decimal
	}
	return decimal.Zero
}

// Remaining is what is still owed on the installment.
func (i *Installment) Remaining() decimal.Decimal {
	if i.IsPaid() {
		return decimal.Zero
	}
	return i.Amount.Sub(i.PaidSoFar())
}

type ScheduleResponse struct {
	SaleID   uuid.UUID      `json:"sale_id"`
	Schedule []*Installment `json:"schedule"`
}

type ReceiptResponse struct {
	SaleID        uuid.UUID    `json:"sale_id"`
	ClientName    string       `json:"client_name"`
	Installment   *Installment `json:"installment"`
	AmountInWords string       `json:"amount_in_words"`
}
