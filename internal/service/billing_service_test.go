package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/dealer-billing/internal/config"
	"github.com/segyhp/dealer-billing/internal/domain"
	"github.com/segyhp/dealer-billing/internal/mocks"
	customError "github.com/segyhp/dealer-billing/pkg/errors"
)

type testDeps struct {
	sales    *mocks.MockSaleRepository
	payments *mocks.MockPaymentRepository
	keys     *mocks.MockIdempotencyStore
}

func (d testDeps) assertExpectations(t *testing.T) {
	d.sales.AssertExpectations(t)
	d.payments.AssertExpectations(t)
	d.keys.AssertExpectations(t)
}

func newTestService() (*BillingService, testDeps) {
	deps := testDeps{
		sales:    &mocks.MockSaleRepository{},
		payments: &mocks.MockPaymentRepository{},
		keys:     &mocks.MockIdempotencyStore{},
	}

	cfg := &config.Config{
		Business: config.BusinessConfig{
			Timezone:                 "America/Asuncion",
			DelinquencyThresholdDays: 60,
			PenaltyDailyRatePercent:  "0.1",
			PenaltyCapPercent:        "20",
			IdempotencyTTL:           time.Hour,
		},
	}

	svc := NewBillingService(deps.sales, deps.payments, deps.keys, cfg, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return svc, deps
}

func date(y int, m time.Month, d int) domain.Date {
	return domain.NewDate(y, m, d)
}

func testSale() *domain.Sale {
	return &domain.Sale{
		ID:                uuid.New(),
		ClientName:        "María González",
		Vehicle:           "Nissan Frontier 2020",
		Price:             decimal.NewFromInt(15000000),
		DownPayment:       decimal.NewFromInt(3000000),
		Principal:         decimal.NewFromInt(12000000),
		AnnualRatePercent: decimal.NewFromInt(12),
		TermMonths:        12,
		StartDate:         date(2024, time.January, 15),
	}
}

func testInstallment(saleID uuid.UUID, seq int, due domain.Date, amount int64, status domain.InstallmentStatus) *domain.Installment {
	return &domain.Installment{
		ID:             uuid.New(),
		SaleID:         saleID,
		SequenceNumber: seq,
		DueDate:        due,
		Amount:         decimal.NewFromInt(amount),
		Status:         status,
	}
}

// mixedSchedule as of 2024-06-01: #1 is 92 days late, #2 paid, #3 partial and
// 31 days late, #4 not yet due.
func mixedSchedule(saleID uuid.UUID) []*domain.Installment {
	partial := testInstallment(saleID, 3, date(2024, time.May, 1), 1000000, domain.InstallmentStatusPartial)
	partial.PartialAmount = decimal.NewNullDecimal(decimal.NewFromInt(400000))

	return []*domain.Installment{
		testInstallment(saleID, 1, date(2024, time.March, 1), 1000000, domain.InstallmentStatusPending),
		testInstallment(saleID, 2, date(2024, time.April, 1), 1000000, domain.InstallmentStatusPaid),
		partial,
		testInstallment(saleID, 4, date(2024, time.July, 1), 1000000, domain.InstallmentStatusPending),
	}
}

func TestToday_UsesBusinessTimezone(t *testing.T) {
	svc, _ := newTestService()

	// 02:00 UTC on June 2 is still June 1 in Asunción.
	svc.now = func() time.Time { return time.Date(2024, time.June, 2, 2, 0, 0, 0, time.UTC) }
	assert.Equal(t, date(2024, time.June, 1), svc.Today())
}

func TestCreateSale_Success(t *testing.T) {
	svc, deps := newTestService()

	request := &domain.CreateSaleRequest{
		ClientName:        "María González",
		Vehicle:           "Nissan Frontier 2020",
		Price:             decimal.NewFromInt(15000000),
		DownPayment:       decimal.NewFromInt(3000000),
		AnnualRatePercent: decimal.NewFromInt(12),
		TermMonths:        12,
		StartDate:         date(2024, time.January, 15),
		Reinforcements:    []domain.Reinforcement{{Month: 6, Amount: decimal.NewFromInt(500000)}},
	}

	deps.sales.On("Create", mock.Anything,
		mock.MatchedBy(func(sale *domain.Sale) bool {
			return sale.Principal.Equal(decimal.NewFromInt(12000000)) && sale.TermMonths == 12
		}),
		mock.MatchedBy(func(installments []*domain.Installment) bool {
			return len(installments) == 12
		}),
	).Return(nil).Once()

	result, err := svc.CreateSale(context.Background(), request)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.Sale.ID)
	require.Len(t, result.Schedule, 12)
	for _, inst := range result.Schedule {
		assert.Equal(t, result.Sale.ID, inst.SaleID)
		assert.NotEqual(t, uuid.Nil, inst.ID)
	}
	assert.True(t, result.Schedule[0].Amount.Equal(decimal.NewFromInt(1066185)))
	assert.True(t, result.Schedule[5].Reinforcement.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, date(2024, time.February, 15), result.Schedule[0].DueDate)

	deps.assertExpectations(t)
}

func TestCreateSale_ValidationErrors(t *testing.T) {
	valid := func() *domain.CreateSaleRequest {
		return &domain.CreateSaleRequest{
			ClientName:  "Carlos",
			Vehicle:     "Hyundai Tucson",
			Price:       decimal.NewFromInt(10000000),
			DownPayment: decimal.NewFromInt(1000000),
			TermMonths:  10,
			StartDate:   date(2024, time.January, 1),
		}
	}

	tests := []struct {
		name   string
		mutate func(*domain.CreateSaleRequest)
		target error
	}{
		{"down payment above price", func(r *domain.CreateSaleRequest) { r.DownPayment = decimal.NewFromInt(20000000) }, customError.ErrValidation},
		{"missing client", func(r *domain.CreateSaleRequest) { r.ClientName = "" }, customError.ErrValidation},
		{"zero term", func(r *domain.CreateSaleRequest) { r.TermMonths = 0 }, customError.ErrValidation},
		{"fractional price", func(r *domain.CreateSaleRequest) { r.Price = decimal.RequireFromString("100.5") }, customError.ErrValidation},
		{"reinforcement beyond term", func(r *domain.CreateSaleRequest) {
			r.Reinforcements = []domain.Reinforcement{{Month: 11, Amount: decimal.NewFromInt(1)}}
		}, customError.ErrValidation},
		{"missing start date", func(r *domain.CreateSaleRequest) { r.StartDate = domain.Date{} }, customError.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newTestService()
			request := valid()
			tt.mutate(request)

			result, err := svc.CreateSale(context.Background(), request)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.target)
			deps.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateSale_DatabaseError(t *testing.T) {
	svc, deps := newTestService()

	deps.sales.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := svc.CreateSale(context.Background(), &domain.CreateSaleRequest{
		ClientName: "Carlos",
		Vehicle:    "Hyundai Tucson",
		Price:      decimal.NewFromInt(1200000),
		TermMonths: 12,
		StartDate:  date(2024, time.January, 1),
	})

	assert.Equal(t, customError.ErrCodeDatabaseError, customError.CodeOf(err))
}

func TestPreviewSchedule(t *testing.T) {
	svc, deps := newTestService()

	result, err := svc.PreviewSchedule(context.Background(), domain.FinancingTerms{
		Principal:         decimal.NewFromInt(12000000),
		AnnualRatePercent: decimal.NewFromInt(12),
		TermMonths:        12,
		StartDate:         date(2024, time.January, 15),
	})

	require.NoError(t, err)
	assert.Len(t, result.Schedule, 12)
	assert.True(t, result.Summary.RegularPayment.Equal(decimal.NewFromInt(1066185)))
	assert.True(t, result.Summary.TotalPrincipal.Equal(decimal.NewFromInt(12000000)))
	assert.True(t, result.Summary.TotalInterest.Equal(decimal.NewFromInt(794226)))
	deps.assertExpectations(t)
}

func TestGetSale_NotFound(t *testing.T) {
	svc, deps := newTestService()
	saleID := uuid.New()

	deps.sales.On("GetByID", mock.Anything, saleID).Return(nil, sql.ErrNoRows)

	_, err := svc.GetSale(context.Background(), saleID)

	assert.ErrorIs(t, err, customError.ErrSaleNotFound)
	assert.Equal(t, customError.ErrCodeSaleNotFound, customError.CodeOf(err))
}

func TestGetSchedule(t *testing.T) {
	svc, deps := newTestService()
	sale := testSale()
	installments := mixedSchedule(sale.ID)

	deps.sales.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	deps.sales.On("GetInstallments", mock.Anything, sale.ID).Return(installments, nil)

	result, err := svc.GetSchedule(context.Background(), sale.ID)

	require.NoError(t, err)
	assert.Equal(t, sale.ID, result.SaleID)
	assert.Len(t, result.Schedule, 4)
	deps.assertExpectations(t)
}

func TestGetDelinquency(t *testing.T) {
	svc, deps := newTestService()
	sale := testSale()

	deps.sales.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	deps.sales.On("GetInstallments", mock.Anything, sale.ID).Return(mixedSchedule(sale.ID), nil)

	asOf := date(2024, time.June, 1)
	result, err := svc.GetDelinquency(context.Background(), sale.ID, &asOf)

	require.NoError(t, err)
	m := result.Metrics
	assert.Equal(t, asOf, m.AsOf)
	assert.Equal(t, 2, m.OverdueCount)
	assert.True(t, m.TotalOverdueAmount.Equal(decimal.NewFromInt(2000000)))
	assert.Equal(t, 92, m.MaxDaysOverdue)
	assert.Equal(t, 62, m.AverageDaysOverdue)
	assert.True(t, m.TotalPenalty.Equal(decimal.NewFromInt(123000)))
	assert.Equal(t, domain.AgingBuckets{Days31To60: 1, Over90: 1}, m.Aging)
	assert.True(t, m.Delinquent)

	require.Len(t, result.Installments, 4)
	assert.Equal(t, 92, result.Installments[0].DaysOverdue)
	assert.Equal(t, 0, result.Installments[1].DaysOverdue)
	assert.Equal(t, 0, result.Installments[3].DaysOverdue)
}

func TestGetDelinquency_DefaultsToToday(t *testing.T) {
	svc, deps := newTestService()
	sale := testSale()

	deps.sales.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	deps.sales.On("GetInstallments", mock.Anything, sale.ID).Return([]*domain.Installment{}, nil)

	result, err := svc.GetDelinquency(context.Background(), sale.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, date(2024, time.June, 1), result.Metrics.AsOf)
	assert.Equal(t, 0, result.Metrics.OverdueCount)
	assert.True(t, result.Metrics.TotalOverdueAmount.IsZero())
	assert.False(t, result.Metrics.Delinquent)
}

func TestGetDelinquency_CorruptStoredDate(t *testing.T) {
	svc, deps := newTestService()
	sale := testSale()

	broken := mixedSchedule(sale.ID)
	broken[2].DueDate = domain.Date{}

	deps.sales.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	deps.sales.On("GetInstallments", mock.Anything, sale.ID).Return(broken, nil)

	asOf := date(2024, time.June, 1)
	_, err := svc.GetDelinquency(context.Background(), sale.ID, &asOf)

	assert.ErrorIs(t, err, customError.ErrInvalidDate)
	assert.Equal(t, customError.ErrCodeDatabaseError, customError.CodeOf(err))
}

func TestGetDelinquency_InvalidReferenceDate(t *testing.T) {
	svc, deps := newTestService()
	sale := testSale()

	deps.sales.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	deps.sales.On("GetInstallments", mock.Anything, sale.ID).Return(mixedSchedule(sale.ID), nil)

	bad := domain.NewDate(2024, time.February, 30)
	_, err := svc.GetDelinquency(context.Background(), sale.ID, &bad)

	assert.Equal(t, customError.ErrCodeInvalidDate, customError.CodeOf(err))
}

func TestGetPortfolioDelinquency(t *testing.T) {
	svc, deps := newTestService()

	lateSale := uuid.New()
	currentSale := uuid.New()

	open := []*domain.Installment{
		testInstallment(lateSale, 1, date(2024, time.March, 1), 1000000, domain.InstallmentStatusPending),
		testInstallment(lateSale, 2, date(2024, time.April, 1), 1000000, domain.InstallmentStatusPending),
		testInstallment(currentSale, 5, date(2024, time.May, 20), 500000, domain.InstallmentStatusPending),
		testInstallment(currentSale, 6, date(2024, time.June, 20), 500000, domain.InstallmentStatusPending),
	}
	deps.sales.On("ListOpenInstallments", mock.Anything).Return(open, nil)

	asOf := date(2024, time.June, 1)
	result, err := svc.GetPortfolioDelinquency(context.Background(), &asOf)

	require.NoError(t, err)
	assert.Equal(t, 2, result.SalesEvaluated)
	assert.Equal(t, 3, result.Metrics.OverdueCount)
	assert.True(t, result.Metrics.TotalOverdueAmount.Equal(decimal.NewFromInt(2500000)))
	assert.Equal(t, 92, result.Metrics.MaxDaysOverdue)

	require.Len(t, result.Delinquent, 1)
	assert.Equal(t, lateSale, result.Delinquent[0].SaleID)
	assert.Equal(t, 2, result.Delinquent[0].Metrics.OverdueCount)
}

func TestGetOutstanding(t *testing.T) {
	svc, deps := newTestService()
	sale := testSale()

	deps.sales.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	deps.sales.On("GetInstallments", mock.Anything, sale.ID).Return(mixedSchedule(sale.ID), nil)

	result, err := svc.GetOutstanding(context.Background(), sale.ID)

	require.NoError(t, err)
	assert.True(t, result.Outstanding.Equal(decimal.NewFromInt(2600000)), "got %s", result.Outstanding)
}

func TestRecordPayment(t *testing.T) {
	tests := []struct {
		name          string
		existing      func(uuid.UUID) *domain.Installment
		amount        int64
		paidOn        *domain.Date
		expectStatus  domain.InstallmentStatus
		expectPartial decimal.NullDecimal
		expectPaidOn  *domain.Date
	}{
		{
			name: "first partial payment",
			existing: func(id uuid.UUID) *domain.Installment {
				return testInstallment(id, 2, date(2024, time.March, 15), 1066185, domain.InstallmentStatusPending)
			},
			amount:        500000,
			expectStatus:  domain.InstallmentStatusPartial,
			expectPartial: decimal.NewNullDecimal(decimal.NewFromInt(500000)),
		},
		{
			name: "partial payments accumulate",
			existing: func(id uuid.UUID) *domain.Installment {
				inst := testInstallment(id, 2, date(2024, time.March, 15), 1066185, domain.InstallmentStatusPartial)
				inst.PartialAmount = decimal.NewNullDecimal(decimal.NewFromInt(500000))
				return inst
			},
			amount:        300000,
			expectStatus:  domain.InstallmentStatusPartial,
			expectPartial: decimal.NewNullDecimal(decimal.NewFromInt(800000)),
		},
		{
			name: "remaining balance settles the installment",
			existing: func(id uuid.UUID) *domain.Installment {
				inst := testInstallment(id, 2, date(2024, time.March, 15), 1066185, domain.InstallmentStatusPartial)
				inst.PartialAmount = decimal.NewNullDecimal(decimal.NewFromInt(500000))
				return inst
			},
			amount:       566185,
			paidOn:       func() *domain.Date { d := date(2024, time.May, 2); return &d }(),
			expectStatus: domain.InstallmentStatusPaid,
			expectPaidOn: func() *domain.Date { d := date(2024, time.May, 2); return &d }(),
		},
		{
			name: "full payment defaults to today",
			existing: func(id uuid.UUID) *domain.Installment {
				return testInstallment(id, 2, date(2024, time.March, 15), 1066185, domain.InstallmentStatusPending)
			},
			amount:       1066185,
			expectStatus: domain.InstallmentStatusPaid,
			expectPaidOn: func() *domain.Date { d := date(2024, time.June, 1); return &d }(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newTestService()
			sale := testSale()

			deps.keys.On("Reserve", mock.Anything, "payment:"+sale.ID.String()+":key-1", time.Hour).Return(true, nil).Once()
			deps.sales.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
			deps.sales.On("GetInstallment", mock.Anything, sale.ID, 2).Return(tt.existing(sale.ID), nil)
			deps.payments.On("Record", mock.Anything,
				mock.MatchedBy(func(p *domain.Payment) bool {
					return p.Amount.Equal(decimal.NewFromInt(tt.amount)) && p.SequenceNumber == 2
				}),
				mock.AnythingOfType("*domain.Installment"),
				mock.MatchedBy(func(before decimal.Decimal) bool {
					return before.Equal(tt.existing(sale.ID).PaidSoFar())
				}),
			).Return(nil).Once()

			result, err := svc.RecordPayment(context.Background(), &domain.RecordPaymentRequest{
				SaleID:         sale.ID,
				SequenceNumber: 2,
				IdempotencyKey: "key-1",
				Amount:         decimal.NewFromInt(tt.amount),
				PaidOn:         tt.paidOn,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectStatus, result.Installment.Status)
			assert.Equal(t, tt.expectPartial.Valid, result.Installment.PartialAmount.Valid)
			if tt.expectPartial.Valid {
				assert.True(t, tt.expectPartial.Decimal.Equal(result.Installment.PartialAmount.Decimal))
			}
			if tt.expectPaidOn != nil {
				require.NotNil(t, result.Installment.PaymentDate)
				assert.Equal(t, *tt.expectPaidOn, *result.Installment.PaymentDate)
				assert.Equal(t, *tt.expectPaidOn, result.Payment.PaidOn)
			} else {
				assert.Nil(t, result.Installment.PaymentDate)
			}
			deps.keys.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
			deps.assertExpectations(t)
		})
	}
}

func TestRecordPayment_Rejections(t *testing.T) {
	saleID := uuid.New()
	key := "payment:" + saleID.String() + ":key-1"

	tests := []struct {
		name       string
		amount     int64
		setupMock  func(testDeps)
		expectCode string
	}{
		{
			name:   "over-payment",
			amount: 600000,
			setupMock: func(d testDeps) {
				inst := testInstallment(saleID, 2, date(2024, time.March, 15), 1066185, domain.InstallmentStatusPartial)
				inst.PartialAmount = decimal.NewNullDecimal(decimal.NewFromInt(500000))
				d.keys.On("Reserve", mock.Anything, key, time.Hour).Return(true, nil)
				d.keys.On("Release", mock.Anything, key).Return(nil).Once()
				d.sales.On("GetByID", mock.Anything, saleID).Return(&domain.Sale{ID: saleID}, nil)
				d.sales.On("GetInstallment", mock.Anything, saleID, 2).Return(inst, nil)
			},
			expectCode: customError.ErrCodeInvalidPaymentAmount,
		},
		{
			name:   "already paid",
			amount: 1000,
			setupMock: func(d testDeps) {
				d.keys.On("Reserve", mock.Anything, key, time.Hour).Return(true, nil)
				d.keys.On("Release", mock.Anything, key).Return(nil).Once()
				d.sales.On("GetByID", mock.Anything, saleID).Return(&domain.Sale{ID: saleID}, nil)
				d.sales.On("GetInstallment", mock.Anything, saleID, 2).
					Return(testInstallment(saleID, 2, date(2024, time.March, 15), 1066185, domain.InstallmentStatusPaid), nil)
			},
			expectCode: customError.ErrCodeInstallmentAlreadyPaid,
		},
		{
			name:   "unknown installment",
			amount: 1000,
			setupMock: func(d testDeps) {
				d.keys.On("Reserve", mock.Anything, key, time.Hour).Return(true, nil)
				d.keys.On("Release", mock.Anything, key).Return(nil).Once()
				d.sales.On("GetByID", mock.Anything, saleID).Return(&domain.Sale{ID: saleID}, nil)
				d.sales.On("GetInstallment", mock.Anything, saleID, 2).Return(nil, sql.ErrNoRows)
			},
			expectCode: customError.ErrCodeInstallmentNotFound,
		},
		{
			name:   "unknown sale",
			amount: 1000,
			setupMock: func(d testDeps) {
				d.keys.On("Reserve", mock.Anything, key, time.Hour).Return(true, nil)
				d.keys.On("Release", mock.Anything, key).Return(nil).Once()
				d.sales.On("GetByID", mock.Anything, saleID).Return(nil, sql.ErrNoRows)
			},
			expectCode: customError.ErrCodeSaleNotFound,
		},
		{
			name:   "duplicate idempotency key",
			amount: 1000,
			setupMock: func(d testDeps) {
				d.keys.On("Reserve", mock.Anything, key, time.Hour).Return(false, nil)
			},
			expectCode: customError.ErrCodeDuplicatePayment,
		},
		{
			name:   "cache unavailable",
			amount: 1000,
			setupMock: func(d testDeps) {
				d.keys.On("Reserve", mock.Anything, key, time.Hour).Return(false, errors.New("dial tcp: refused"))
			},
			expectCode: customError.ErrCodeCacheError,
		},
		{
			name:   "concurrent settlement",
			amount: 1066185,
			setupMock: func(d testDeps) {
				d.keys.On("Reserve", mock.Anything, key, time.Hour).Return(true, nil)
				d.keys.On("Release", mock.Anything, key).Return(nil).Once()
				d.sales.On("GetByID", mock.Anything, saleID).Return(&domain.Sale{ID: saleID}, nil)
				d.sales.On("GetInstallment", mock.Anything, saleID, 2).
					Return(testInstallment(saleID, 2, date(2024, time.March, 15), 1066185, domain.InstallmentStatusPending), nil)
				d.payments.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(sql.ErrNoRows)
			},
			expectCode: customError.ErrCodePaymentConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newTestService()
			tt.setupMock(deps)

			result, err := svc.RecordPayment(context.Background(), &domain.RecordPaymentRequest{
				SaleID:         saleID,
				SequenceNumber: 2,
				IdempotencyKey: "key-1",
				Amount:         decimal.NewFromInt(tt.amount),
			})

			assert.Nil(t, result)
			assert.Equal(t, tt.expectCode, customError.CodeOf(err))
			deps.assertExpectations(t)
		})
	}
}

func TestRecordPayment_InvalidAmount(t *testing.T) {
	svc, deps := newTestService()

	for _, amount := range []string{"0", "-100", "10.5"} {
		_, err := svc.RecordPayment(context.Background(), &domain.RecordPaymentRequest{
			SaleID:         uuid.New(),
			SequenceNumber: 1,
			Amount:         decimal.RequireFromString(amount),
		})
		assert.ErrorIs(t, err, customError.ErrValidation, amount)
	}

	deps.keys.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPayments(t *testing.T) {
	svc, deps := newTestService()
	sale := testSale()

	payments := []*domain.Payment{
		{ID: uuid.New(), SaleID: sale.ID, SequenceNumber: 1, Amount: decimal.NewFromInt(500000)},
		{ID: uuid.New(), SaleID: sale.ID, SequenceNumber: 1, Amount: decimal.NewFromInt(566185)},
	}
	deps.sales.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	deps.payments.On("GetBySaleID", mock.Anything, sale.ID).Return(payments, nil)

	result, err := svc.GetPayments(context.Background(), sale.ID)

	require.NoError(t, err)
	assert.Len(t, result.Payments, 2)
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(1066185)))
	deps.assertExpectations(t)
}

func TestGetReceipt(t *testing.T) {
	svc, deps := newTestService()
	sale := testSale()

	inst := testInstallment(sale.ID, 1, date(2024, time.February, 15), 1066185, domain.InstallmentStatusPaid)
	deps.sales.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	deps.sales.On("GetInstallment", mock.Anything, sale.ID, 1).Return(inst, nil)

	receipt, err := svc.GetReceipt(context.Background(), sale.ID, 1)

	require.NoError(t, err)
	assert.Equal(t, "María González", receipt.ClientName)
	assert.Equal(t, "un millón sesenta y seis mil ciento ochenta y cinco guaraníes", receipt.AmountInWords)
}

func TestDeleteSale(t *testing.T) {
	svc, deps := newTestService()
	existing := uuid.New()
	missing := uuid.New()

	deps.sales.On("Delete", mock.Anything, existing).Return(nil)
	deps.sales.On("Delete", mock.Anything, missing).Return(sql.ErrNoRows)

	assert.NoError(t, svc.DeleteSale(context.Background(), existing))
	assert.ErrorIs(t, svc.DeleteSale(context.Background(), missing), customError.ErrSaleNotFound)
}

func TestUpcomingInstallments(t *testing.T) {
	svc, deps := newTestService()

	due := []*domain.Installment{testInstallment(uuid.New(), 3, date(2024, time.June, 3), 1000, domain.InstallmentStatusPending)}
	deps.sales.On("ListInstallmentsDueBetween", mock.Anything, date(2024, time.June, 1), date(2024, time.June, 4)).Return(due, nil)

	result, err := svc.UpcomingInstallments(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, due, result)
}
