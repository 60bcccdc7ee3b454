// Package scheduler holds the periodic circulation jobs run by cmd/scheduler.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/ledger"
)

// ReminderSpec runs the overdue reminder every Sunday at 9 AM
const ReminderSpec = "0 0 9 * * SUN"

// jobTimeout bounds a single run so a stuck database never stacks runs
const jobTimeout = 10 * time.Minute

// FineAccruer is the part of the borrowing service the jobs drive
type FineAccruer interface {
	AccrueFines(ctx context.Context) (int, error)
	Overdue(ctx context.Context) ([]*domain.Borrowing, error)
}

type Jobs struct {
	borrowings FineAccruer
	estimator  *ledger.Estimator
	logger     *slog.Logger
}

func NewJobs(borrowings FineAccruer, estimator *ledger.Estimator, logger *slog.Logger) *Jobs {
	return &Jobs{
		borrowings: borrowings,
		estimator:  estimator,
		logger:     logger,
	}
}

// Register schedules fine accrual on fineSpec and the weekly reminder
func (j *Jobs) Register(c *cron.Cron, fineSpec string) error {
	if _, err := c.AddFunc(fineSpec, j.run("accrue fines", j.AccrueFines)); err != nil {
		return err
	}

	if _, err := c.AddFunc(ReminderSpec, j.run("overdue reminders", j.RemindOverdue)); err != nil {
		return err
	}

	j.logger.Info("cron jobs scheduled", "fine_spec", fineSpec, "reminder_spec", ReminderSpec)
	return nil
}

func (j *Jobs) run(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			j.logger.Error("job failed", "job", name, "error", err)
			return
		}
		j.logger.Info("job finished", "job", name, "duration_ms", time.Since(start).Milliseconds())
	}
}

// AccrueFines recomputes the running fine of every overdue borrowing
func (j *Jobs) AccrueFines(ctx context.Context) error {
	updated, err := j.borrowings.AccrueFines(ctx)
	if err != nil {
		return err
	}

	j.logger.InfoContext(ctx, "fines accrued", "updated", updated)
	return nil
}

// RemindOverdue logs one reminder per overdue borrowing and returns the totals
func (j *Jobs) RemindOverdue(ctx context.Context) error {
	overdue, err := j.borrowings.Overdue(ctx)
	if err != nil {
		return err
	}

	borrowings := make([]domain.Borrowing, 0, len(overdue))
	for _, b := range overdue {
		borrowings = append(borrowings, *b)
	}

	entries := j.estimator.ClassifyAll(borrowings)
	for _, entry := range entries {
		fine, provisional := entry.Fine()
		j.logger.InfoContext(ctx, "overdue reminder",
			"borrowing_id", entry.Borrowing.ID,
			"member_email", entry.Borrowing.Member.Email,
			"book_title", entry.Borrowing.Book.Title,
			"due_date", entry.Borrowing.DueDate.String(),
			"days_overdue", entry.DaysOverdue,
			"fine", fine.StringFixed(2),
			"provisional", provisional,
		)
	}

	summary := ledger.Summarize(entries)
	j.logger.InfoContext(ctx, "overdue reminders sent",
		"count", summary.Overdue,
		"estimated_fines", summary.EstimatedFines.StringFixed(2),
	)
	return nil
}
