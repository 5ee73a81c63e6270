package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/segyhp/dealer-billing/internal/domain"
)

// UpcomingSource lists unpaid installments that fall due soon.
type UpcomingSource interface {
	Today() domain.Date
	UpcomingInstallments(ctx context.Context, windowDays int) ([]*domain.Installment, error)
}

// PaymentReminderJob logs a reminder for every unpaid installment due within
// the reminder window
type PaymentReminderJob struct {
	log        zerolog.Logger
	billing    UpcomingSource
	windowDays int
}

func NewPaymentReminderJob(billing UpcomingSource, windowDays int, log zerolog.Logger) *PaymentReminderJob {
	return &PaymentReminderJob{
		log:        log.With().Str("job", "payment_reminder").Logger(),
		billing:    billing,
		windowDays: windowDays,
	}
}

// Name returns the job name
func (j *PaymentReminderJob) Name() string {
	return "payment_reminder"
}

// Run executes the reminder pass and returns nil when nothing is due
func (j *PaymentReminderJob) Run(ctx context.Context) error {
	installments, err := j.billing.UpcomingInstallments(ctx, j.windowDays)
	if err != nil {
		return err
	}

	today := j.billing.Today()
	for _, inst := range installments {
		j.log.Info().
			Str("sale_id", inst.SaleID.String()).
			Int("sequence_number", inst.SequenceNumber).
			Str("due_date", inst.DueDate.String()).
			Int("days_until_due", inst.DueDate.DaysSince(today)).
			Str("amount_due", inst.Remaining().String()).
			Msg("Payment reminder")
	}

	j.log.Info().Int("reminders", len(installments)).Msg("Payment reminders sent")
	return nil
}
