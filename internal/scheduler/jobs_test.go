package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/ledger"
)

type fakeAccruer struct {
	updated  int
	overdue  []*domain.Borrowing
	err      error
	accruals int
}

func (f *fakeAccruer) AccrueFines(context.Context) (int, error) {
	f.accruals++
	return f.updated, f.err
}

func (f *fakeAccruer) Overdue(context.Context) ([]*domain.Borrowing, error) {
	return f.overdue, f.err
}

func newJobs(accruer *fakeAccruer) (*Jobs, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	now := func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }

	return NewJobs(accruer, ledger.NewEstimator(decimal.NewFromInt(1), now), logger), &buf
}

func TestJobs_AccrueFines(t *testing.T) {
	accruer := &fakeAccruer{updated: 3}
	jobs, logs := newJobs(accruer)

	require.NoError(t, jobs.AccrueFines(context.Background()))
	assert.Equal(t, 1, accruer.accruals)
	assert.Contains(t, logs.String(), "updated=3")
}

func TestJobs_RemindOverdue(t *testing.T) {
	accruer := &fakeAccruer{overdue: []*domain.Borrowing{
		{
			ID:      4,
			Book:    domain.BookSummary{Title: "The Word for World Is Forest"},
			Member:  domain.MemberSummary{Email: "takver@anarres.example"},
			DueDate: domain.MustParseDate("2024-01-10"),
			Fine:    decimal.NewNullDecimal(decimal.Zero),
		},
	}}
	jobs, logs := newJobs(accruer)

	require.NoError(t, jobs.RemindOverdue(context.Background()))

	out := logs.String()
	assert.Contains(t, out, "borrowing_id=4")
	assert.Contains(t, out, "days_overdue=6")
	assert.Contains(t, out, "fine=6.00")
	assert.Contains(t, out, "provisional=true")
	assert.Contains(t, out, "count=1")
}

func TestJobs_RunLogsFailures(t *testing.T) {
	jobs, logs := newJobs(&fakeAccruer{err: errors.New("database is down")})

	jobs.run("accrue fines", jobs.AccrueFines)()

	assert.Contains(t, logs.String(), "job failed")
	assert.Contains(t, logs.String(), "database is down")
}

func TestJobs_Register(t *testing.T) {
	jobs, _ := newJobs(&fakeAccruer{})
	c := cron.New(cron.WithSeconds())

	require.NoError(t, jobs.Register(c, "0 0 0 * * *"))
	assert.Len(t, c.Entries(), 2)

	assert.Error(t, jobs.Register(cron.New(cron.WithSeconds()), "every midnight"))
}
