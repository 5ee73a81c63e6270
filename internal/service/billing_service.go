package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/segyhp/dealer-billing/internal/config"
	"github.com/segyhp/dealer-billing/internal/delinquency"
	"github.com/segyhp/dealer-billing/internal/domain"
	"github.com/segyhp/dealer-billing/internal/repository"
	"github.com/segyhp/dealer-billing/internal/schedule"
	customError "github.com/segyhp/dealer-billing/pkg/errors"
	"github.com/segyhp/dealer-billing/pkg/numwords"
	"github.com/segyhp/dealer-billing/pkg/validation"
)

type BillingService struct {
	SaleRepo    repository.SaleRepository
	PaymentRepo repository.PaymentRepository
	Keys        repository.IdempotencyStore

	validate       *validator.Validate
	policy         delinquency.Policy
	location       *time.Location
	idempotencyTTL time.Duration
	now            func() time.Time
	logger         zerolog.Logger
}

func NewBillingService(
	saleRepo repository.SaleRepository,
	paymentRepo repository.PaymentRepository,
	keys repository.IdempotencyStore,
	cfg *config.Config,
	logger zerolog.Logger,
) *BillingService {
	return &BillingService{
		SaleRepo:    saleRepo,
		PaymentRepo: paymentRepo,
		Keys:        keys,
		validate:    validation.New(),
		policy: delinquency.Policy{
			Penalty: delinquency.PenaltyPolicy{
				DailyRatePercent: cfg.GetPenaltyDailyRate(),
				GraceDays:        cfg.Business.PenaltyGraceDays,
				CapPercent:       cfg.GetPenaltyCap(),
			},
			ThresholdDays: cfg.Business.DelinquencyThresholdDays,
		},
		location:       cfg.Location(),
		idempotencyTTL: cfg.Business.IdempotencyTTL,
		now:            time.Now,
		logger:         logger.With().Str("component", "billing").Logger(),
	}
}

// Today is the current calendar day in the business timezone.
func (s *BillingService) Today() domain.Date {
	return domain.DateOf(s.now().In(s.location))
}

// CreateSale validates the request, generates the schedule and persists both
func (s *BillingService) CreateSale(ctx context.Context, request *domain.CreateSaleRequest) (*domain.CreateSaleResponse, error) {
	if err := validation.Struct(s.validate, request); err != nil {
		return nil, err
	}
	if request.DownPayment.GreaterThan(request.Price) {
		return nil, customError.WrapValidation("down_payment must not exceed price")
	}

	terms := request.Terms()
	installments, err := schedule.Generate(terms)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sale := &domain.Sale{
		ID:                uuid.New(),
		ClientName:        request.ClientName,
		Vehicle:           request.Vehicle,
		Price:             request.Price,
		DownPayment:       request.DownPayment,
		Principal:         terms.Principal,
		AnnualRatePercent: terms.AnnualRatePercent,
		TermMonths:        terms.TermMonths,
		StartDate:         terms.StartDate,
		Reinforcements:    terms.Reinforcements,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, installment := range installments {
		installment.ID = uuid.New()
		installment.SaleID = sale.ID
		installment.CreatedAt = now
	}

	if err = s.SaleRepo.Create(ctx, sale, installments); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info().
		Str("sale_id", sale.ID.String()).
		Str("principal", sale.Principal.String()).
		Int("term_months", sale.TermMonths).
		Msg("Sale created")

	return &domain.CreateSaleResponse{Sale: sale, Schedule: installments}, nil
}

// PreviewSchedule runs the amortization engine without persisting anything
func (s *BillingService) PreviewSchedule(ctx context.Context, terms domain.FinancingTerms) (*schedule.PreviewResponse, error) {
	installments, err := schedule.Generate(terms)
	if err != nil {
		return nil, err
	}

	summary := schedule.Summarize(installments)
	summary.RegularPayment = schedule.RegularPayment(terms.Principal, terms.AnnualRatePercent, terms.TermMonths)

	return &schedule.PreviewResponse{Summary: summary, Schedule: installments}, nil
}

func (s *BillingService) GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	sale, err := s.SaleRepo.GetByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapSaleNotFound(saleID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return sale, nil
}

// GetSchedule returns the installments of a sale ordered by sequence number
func (s *BillingService) GetSchedule(ctx context.Context, saleID uuid.UUID) (*domain.ScheduleResponse, error) {
	installments, err := s.installments(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &domain.ScheduleResponse{SaleID: saleID, Schedule: installments}, nil
}

// GetDelinquency evaluates the sale's schedule as of asOf, or today when asOf is nil
func (s *BillingService) GetDelinquency(ctx context.Context, saleID uuid.UUID, asOf *domain.Date) (*domain.DelinquencyResponse, error) {
	installments, err := s.installments(ctx, saleID)
	if err != nil {
		return nil, err
	}

	today, err := s.referenceDate(asOf)
	if err != nil {
		return nil, err
	}
	metrics, rows, err := delinquency.Evaluate(installments, today, s.policy)
	if err != nil {
		return nil, s.evaluationError(err, saleID)
	}

	return &domain.DelinquencyResponse{
		SaleID:       saleID,
		Installments: rows,
		Metrics:      metrics,
	}, nil
}

// GetPortfolioDelinquency evaluates every open installment of every sale
func (s *BillingService) GetPortfolioDelinquency(ctx context.Context, asOf *domain.Date) (*domain.PortfolioDelinquencyResponse, error) {
	open, err := s.SaleRepo.ListOpenInstallments(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	today, err := s.referenceDate(asOf)
	if err != nil {
		return nil, err
	}
	metrics, _, err := delinquency.Evaluate(open, today, s.policy)
	if err != nil {
		return nil, s.evaluationError(err, uuid.Nil)
	}

	bySale := make(map[uuid.UUID][]*domain.Installment)
	for _, installment := range open {
		bySale[installment.SaleID] = append(bySale[installment.SaleID], installment)
	}

	response := &domain.PortfolioDelinquencyResponse{
		Metrics:        metrics,
		SalesEvaluated: len(bySale),
		Delinquent:     []*domain.SaleDelinquency{},
	}
	for saleID, installments := range bySale {
		saleMetrics, _, err := delinquency.Evaluate(installments, today, s.policy)
		if err != nil {
			return nil, s.evaluationError(err, saleID)
		}
		if saleMetrics.Delinquent {
			response.Delinquent = append(response.Delinquent, &domain.SaleDelinquency{SaleID: saleID, Metrics: saleMetrics})
		}
	}

	// Worst first, then by id for a stable listing.
	sort.Slice(response.Delinquent, func(i, j int) bool {
		a, b := response.Delinquent[i], response.Delinquent[j]
		if a.Metrics.MaxDaysOverdue != b.Metrics.MaxDaysOverdue {
			return a.Metrics.MaxDaysOverdue > b.Metrics.MaxDaysOverdue
		}
		return a.SaleID.String() < b.SaleID.String()
	})

	return response, nil
}

// GetOutstanding sums what is still owed on every unpaid installment
func (s *BillingService) GetOutstanding(ctx context.Context, saleID uuid.UUID) (*domain.OutstandingResponse, error) {
	installments, err := s.installments(ctx, saleID)
	if err != nil {
		return nil, err
	}

	outstanding := decimal.Zero
	for _, installment := range installments {
		outstanding = outstanding.Add(installment.Remaining())
	}

	return &domain.OutstandingResponse{SaleID: saleID, Outstanding: outstanding}, nil
}

// RecordPayment applies a payment to one installment. Payments accumulate
// until the installment amount is reached; anything beyond it is rejected.
func (s *BillingService) RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest) (_ *domain.PaymentResponse, err error) {
	if err = validation.Struct(s.validate, request); err != nil {
		return nil, err
	}

	if request.IdempotencyKey != "" {
		key := fmt.Sprintf("payment:%s:%s", request.SaleID, request.IdempotencyKey)
		reserved, reserveErr := s.Keys.Reserve(ctx, key, s.idempotencyTTL)
		if reserveErr != nil {
			return nil, customError.WrapCacheError(reserveErr)
		}
		if !reserved {
			return nil, customError.WrapDuplicatePayment(request.IdempotencyKey)
		}
		// A failed attempt must not burn the key.
		defer func() {
			if err == nil {
				return
			}
			if releaseErr := s.Keys.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
				s.logger.Warn().Err(releaseErr).Str("key", key).Msg("Failed to release idempotency key")
			}
		}()
	}

	if _, err = s.GetSale(ctx, request.SaleID); err != nil {
		return nil, err
	}

	installment, err := s.SaleRepo.GetInstallment(ctx, request.SaleID, request.SequenceNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInstallmentNotFound(request.SaleID.String(), request.SequenceNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if installment.IsPaid() {
		return nil, customError.WrapInstallmentAlreadyPaid(request.SaleID.String(), request.SequenceNumber)
	}

	paidOn := s.Today()
	if request.PaidOn != nil {
		paidOn = *request.PaidOn
	}
	if err = paidOn.Validate(); err != nil {
		return nil, err
	}

	remaining := installment.Remaining()
	if request.Amount.GreaterThan(remaining) {
		return nil, customError.WrapInvalidPaymentAmount(request.Amount.String(),
			fmt.Sprintf("exceeds the %s still owed on installment %d", remaining, request.SequenceNumber))
	}

	paidBefore := installment.PaidSoFar()
	total := paidBefore.Add(request.Amount)
	if total.Equal(installment.Amount) {
		installment.Status = domain.InstallmentStatusPaid
		installment.PaymentDate = &paidOn
		installment.PartialAmount = decimal.NullDecimal{}
	} else {
		installment.Status = domain.InstallmentStatusPartial
		installment.PartialAmount = decimal.NewNullDecimal(total)
	}

	payment := &domain.Payment{
		ID:             uuid.New(),
		SaleID:         request.SaleID,
		SequenceNumber: request.SequenceNumber,
		Amount:         request.Amount,
		PaidOn:         paidOn,
		CreatedAt:      s.now().UTC(),
	}

	if err = s.PaymentRepo.Record(ctx, payment, installment, paidBefore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentConflict(request.SaleID.String(), request.SequenceNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info().
		Str("sale_id", request.SaleID.String()).
		Int("sequence_number", request.SequenceNumber).
		Str("amount", request.Amount.String()).
		Str("status", string(installment.Status)).
		Msg("Payment recorded")

	return &domain.PaymentResponse{Payment: payment, Installment: installment}, nil
}

// GetPayments lists the payments received for a sale
func (s *BillingService) GetPayments(ctx context.Context, saleID uuid.UUID) (*domain.PaymentHistoryResponse, error) {
	if _, err := s.GetSale(ctx, saleID); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetBySaleID(ctx, saleID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	total := decimal.Zero
	for _, payment := range payments {
		total = total.Add(payment.Amount)
	}
	if payments == nil {
		payments = []*domain.Payment{}
	}

	return &domain.PaymentHistoryResponse{SaleID: saleID, TotalPaid: total, Payments: payments}, nil
}

// GetReceipt returns an installment with its amount spelled out
func (s *BillingService) GetReceipt(ctx context.Context, saleID uuid.UUID, sequenceNumber int) (*domain.ReceiptResponse, error) {
	sale, err := s.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	installment, err := s.SaleRepo.GetInstallment(ctx, saleID, sequenceNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInstallmentNotFound(saleID.String(), sequenceNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.ReceiptResponse{
		SaleID:        saleID,
		ClientName:    sale.ClientName,
		Installment:   installment,
		AmountInWords: numwords.Guaranies(installment.Amount.IntPart()),
	}, nil
}

// DeleteSale removes a sale with its installments and payments
func (s *BillingService) DeleteSale(ctx context.Context, saleID uuid.UUID) error {
	if err := s.SaleRepo.Delete(ctx, saleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapSaleNotFound(saleID.String())
		}
		return customError.WrapDatabaseError(err)
	}

	s.logger.Info().Str("sale_id", saleID.String()).Msg("Sale deleted")
	return nil
}

// UpcomingInstallments lists unpaid installments due between today and
// today plus windowDays, inclusive.
func (s *BillingService) UpcomingInstallments(ctx context.Context, windowDays int) ([]*domain.Installment, error) {
	today := s.Today()
	installments, err := s.SaleRepo.ListInstallmentsDueBetween(ctx, today, today.AddDays(windowDays))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return installments, nil
}

func (s *BillingService) installments(ctx context.Context, saleID uuid.UUID) ([]*domain.Installment, error) {
	if _, err := s.GetSale(ctx, saleID); err != nil {
		return nil, err
	}

	installments, err := s.SaleRepo.GetInstallments(ctx, saleID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return installments, nil
}

func (s *BillingService) referenceDate(asOf *domain.Date) (domain.Date, error) {
	if asOf == nil {
		return s.Today(), nil
	}
	if err := asOf.Validate(); err != nil {
		return domain.Date{}, err
	}
	return *asOf, nil
}

// Reference dates are validated before they get here, so an invalid date
// out of the calculator came from storage.
func (s *BillingService) evaluationError(err error, saleID uuid.UUID) error {
	if errors.Is(err, customError.ErrInvalidDate) {
		s.logger.Error().Err(err).Str("sale_id", saleID.String()).Msg("Stored installment has an invalid due date")
		return customError.WrapDatabaseError(err)
	}
	return err
}
