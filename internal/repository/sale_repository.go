package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/segyhp/dealer-billing/internal/domain"
)

const installmentColumns = `id, sale_id, sequence_number, due_date, principal, interest, reinforcement,
		amount, status, payment_date, partial_amount, created_at`

type saleRepository struct {
	db *sqlx.DB
}

func NewSaleRepository(db *sqlx.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale, installments []*domain.Installment) error {
	now := time.Now().UTC()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	sale.UpdatedAt = sale.CreatedAt

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	saleQuery := tx.Rebind(`
		INSERT INTO sales (id, client_name, vehicle, price, down_payment, principal,
			annual_rate_percent, term_months, start_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = tx.ExecContext(ctx, saleQuery,
		sale.ID,
		sale.ClientName,
		sale.Vehicle,
		sale.Price,
		sale.DownPayment,
		sale.Principal,
		sale.AnnualRatePercent,
		sale.TermMonths,
		sale.StartDate,
		sale.CreatedAt,
		sale.UpdatedAt,
	)
	if err != nil {
		return err
	}

	reinforcementQuery := tx.Rebind(`INSERT INTO sale_reinforcements (sale_id, month, amount) VALUES (?, ?, ?)`)
	for _, reinforcement := range sale.Reinforcements {
		if _, err = tx.ExecContext(ctx, reinforcementQuery, sale.ID, reinforcement.Month, reinforcement.Amount); err != nil {
			return err
		}
	}

	installmentQuery := tx.Rebind(`
		INSERT INTO installments (` + installmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, installment := range installments {
		if installment.CreatedAt.IsZero() {
			installment.CreatedAt = sale.CreatedAt
		}
		_, err = tx.ExecContext(ctx, installmentQuery,
			installment.ID,
			installment.SaleID,
			installment.SequenceNumber,
			installment.DueDate,
			installment.Principal,
			installment.Interest,
			installment.Reinforcement,
			installment.Amount,
			installment.Status,
			installment.PaymentDate,
			installment.PartialAmount,
			installment.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *saleRepository) GetByID(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	query := r.db.Rebind(`
		SELECT id, client_name, vehicle, price, down_payment, principal,
			annual_rate_percent, term_months, start_date, created_at, updated_at
		FROM sales
		WHERE id = ?
	`)

	var sale domain.Sale
	if err := r.db.GetContext(ctx, &sale, query, saleID); err != nil {
		return nil, err
	}

	reinforcementQuery := r.db.Rebind(`
		SELECT month, amount
		FROM sale_reinforcements
		WHERE sale_id = ?
		ORDER BY month
	`)
	if err := r.db.SelectContext(ctx, &sale.Reinforcements, reinforcementQuery, saleID); err != nil {
		return nil, err
	}

	return &sale, nil
}

func (r *saleRepository) GetInstallments(ctx context.Context, saleID uuid.UUID) ([]*domain.Installment, error) {
	query := r.db.Rebind(`
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE sale_id = ?
		ORDER BY sequence_number
	`)

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, saleID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *saleRepository) GetInstallment(ctx context.Context, saleID uuid.UUID, sequenceNumber int) (*domain.Installment, error) {
	query := r.db.Rebind(`
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE sale_id = ? AND sequence_number = ?
	`)

	var installment domain.Installment
	if err := r.db.GetContext(ctx, &installment, query, saleID, sequenceNumber); err != nil {
		return nil, err
	}

	return &installment, nil
}

func (r *saleRepository) ListOpenInstallments(ctx context.Context) ([]*domain.Installment, error) {
	query := r.db.Rebind(`
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE status <> ?
		ORDER BY sale_id, sequence_number
	`)

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, domain.InstallmentStatusPaid); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *saleRepository) ListInstallmentsDueBetween(ctx context.Context, from, to domain.Date) ([]*domain.Installment, error) {
	query := r.db.Rebind(`
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE status <> ? AND due_date >= ? AND due_date <= ?
		ORDER BY due_date, sale_id, sequence_number
	`)

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, domain.InstallmentStatusPaid, from, to); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *saleRepository) Delete(ctx context.Context, saleID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Children first so the delete also works without ON DELETE CASCADE.
	for _, table := range []string{"payments", "installments", "sale_reinforcements"} {
		if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+table+` WHERE sale_id = ?`), saleID); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sales WHERE id = ?`), saleID)
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
