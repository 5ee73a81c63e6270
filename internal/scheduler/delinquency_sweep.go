package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/segyhp/dealer-billing/internal/domain"
	"github.com/segyhp/dealer-billing/internal/repository"
)

// PortfolioReporter evaluates delinquency across all sales.
type PortfolioReporter interface {
	Today() domain.Date
	GetPortfolioDelinquency(ctx context.Context, asOf *domain.Date) (*domain.PortfolioDelinquencyResponse, error)
}

// DelinquencySweepJob evaluates the whole portfolio once a day and reports
// every sale past the escalation threshold
type DelinquencySweepJob struct {
	log     zerolog.Logger
	billing PortfolioReporter
	locks   repository.IdempotencyStore
	lockTTL time.Duration
}

func NewDelinquencySweepJob(billing PortfolioReporter, locks repository.IdempotencyStore, log zerolog.Logger) *DelinquencySweepJob {
	return &DelinquencySweepJob{
		log:     log.With().Str("job", "delinquency_sweep").Logger(),
		billing: billing,
		locks:   locks,
		lockTTL: 23 * time.Hour,
	}
}

// Name returns the job name
func (j *DelinquencySweepJob) Name() string {
	return "delinquency_sweep"
}

// Run executes the sweep. Only one scheduler instance sweeps a given day.
func (j *DelinquencySweepJob) Run(ctx context.Context) (err error) {
	today := j.billing.Today()
	lockKey := "delinquency_sweep:" + today.String()

	acquired, err := j.locks.Reserve(ctx, lockKey, j.lockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		j.log.Info().Str("date", today.String()).Msg("Sweep already done for today, skipping")
		return nil
	}
	defer func() {
		// Let a later run retry the day.
		if err != nil {
			if releaseErr := j.locks.Release(context.WithoutCancel(ctx), lockKey); releaseErr != nil {
				j.log.Warn().Err(releaseErr).Msg("Failed to release sweep lock")
			}
		}
	}()

	startTime := time.Now()
	report, err := j.billing.GetPortfolioDelinquency(ctx, &today)
	if err != nil {
		return err
	}

	m := report.Metrics
	j.log.Info().
		Str("as_of", today.String()).
		Int("sales", report.SalesEvaluated).
		Int("overdue_installments", m.OverdueCount).
		Str("total_overdue", m.TotalOverdueAmount.String()).
		Str("total_penalty", m.TotalPenalty.String()).
		Int("max_days_overdue", m.MaxDaysOverdue).
		Int("average_days_overdue", m.AverageDaysOverdue).
		Int("aging_1_30", m.Aging.Days1To30).
		Int("aging_31_60", m.Aging.Days31To60).
		Int("aging_61_90", m.Aging.Days61To90).
		Int("aging_over_90", m.Aging.Over90).
		Dur("duration", time.Since(startTime)).
		Msg("Portfolio delinquency evaluated")

	for _, sale := range report.Delinquent {
		j.log.Warn().
			Str("sale_id", sale.SaleID.String()).
			Int("max_days_overdue", sale.Metrics.MaxDaysOverdue).
			Int("overdue_installments", sale.Metrics.OverdueCount).
			Str("total_overdue", sale.Metrics.TotalOverdueAmount.String()).
			Msg("Sale is delinquent")
	}

	return nil
}
