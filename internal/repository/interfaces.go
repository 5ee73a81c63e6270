package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/dealer-billing/internal/domain"
)

// SaleRepository defines the interface for sale and installment data operations.
// Lookups of a missing sale or installment return sql.ErrNoRows.
type SaleRepository interface {
	// Create persists a sale, its reinforcements and its installments atomically
	Create(ctx context.Context, sale *domain.Sale, installments []*domain.Installment) error

	// GetByID retrieves a sale with its reinforcements
	GetByID(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error)

	// GetInstallments retrieves the schedule of a sale ordered by sequence number
	GetInstallments(ctx context.Context, saleID uuid.UUID) ([]*domain.Installment, error)

	// GetInstallment retrieves a single installment of a sale
	GetInstallment(ctx context.Context, saleID uuid.UUID, sequenceNumber int) (*domain.Installment, error)

	// ListOpenInstallments retrieves every pending or partial installment of the portfolio
	ListOpenInstallments(ctx context.Context) ([]*domain.Installment, error)

	// ListInstallmentsDueBetween retrieves open installments due in [from, to]
	ListInstallmentsDueBetween(ctx context.Context, from, to domain.Date) ([]*domain.Installment, error)

	// Delete removes a sale together with its installments and payments
	Delete(ctx context.Context, saleID uuid.UUID) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Record stores a payment and the resulting installment state in one transaction.
	// paidBefore is the partial amount the installment carried when it was read;
	// sql.ErrNoRows is returned if the stored row no longer matches it.
	Record(ctx context.Context, payment *domain.Payment, installment *domain.Installment, paidBefore decimal.Decimal) error

	// GetBySaleID retrieves all payments of a sale
	GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]*domain.Payment, error)
}

// IdempotencyStore reserves keys for a limited time. Reserve reports false
// when the key is already held.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
