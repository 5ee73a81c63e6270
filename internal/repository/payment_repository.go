package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/dealer-billing/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Record(ctx context.Context, payment *domain.Payment, installment *domain.Installment, paidBefore decimal.Decimal) error {
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := tx.Rebind(`
		INSERT INTO payments (id, sale_id, sequence_number, amount, paid_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err = tx.ExecContext(ctx, insert,
		payment.ID,
		payment.SaleID,
		payment.SequenceNumber,
		payment.Amount,
		payment.PaidOn,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	// Compare-and-set on the amount read by the caller: a payment computed
	// from a stale read updates nothing and the insert rolls back.
	update := tx.Rebind(`
		UPDATE installments
		SET status = ?, payment_date = ?, partial_amount = ?
		WHERE sale_id = ? AND sequence_number = ? AND status <> ?
		  AND COALESCE(partial_amount, '0') = ?
	`)
	result, err := tx.ExecContext(ctx, update,
		installment.Status,
		installment.PaymentDate,
		installment.PartialAmount,
		installment.SaleID,
		installment.SequenceNumber,
		domain.InstallmentStatusPaid,
		paidBefore,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *paymentRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]*domain.Payment, error) {
	query := r.db.Rebind(`
		SELECT id, sale_id, sequence_number, amount, paid_on, created_at
		FROM payments
		WHERE sale_id = ?
		ORDER BY created_at, sequence_number
	`)

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, saleID); err != nil {
		return nil, err
	}

	return payments, nil
}
