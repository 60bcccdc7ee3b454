package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-circulation/internal/domain"
)

func borrowing(due string, returned string, fine *string) domain.Borrowing {
	b := domain.Borrowing{
		ID:         1,
		BorrowDate: domain.MustParseDate(due).AddDays(-14),
		DueDate:    domain.MustParseDate(due),
	}
	if returned != "" {
		d := domain.MustParseDate(returned)
		b.ReturnDate = &d
	}
	if fine != nil {
		b.Fine = decimal.NewNullDecimal(decimal.RequireFromString(*fine))
	}
	return b
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		borrowing    domain.Borrowing
		now          time.Time
		expected     Status
		expectedDays int
		expectedFine decimal.Decimal
	}{
		{
			name:         "overdue by five days",
			borrowing:    borrowing("2024-01-10", "", nil),
			now:          at("2024-01-15T00:00:00Z"),
			expected:     StatusOverdue,
			expectedDays: 5,
			expectedFine: decimal.NewFromInt(5),
		},
		{
			name:         "due exactly now is still active",
			borrowing:    borrowing("2024-01-10", "", nil),
			now:          at("2024-01-10T00:00:00Z"),
			expected:     StatusActive,
			expectedFine: decimal.Zero,
		},
		{
			name:         "one second past due counts as a full day",
			borrowing:    borrowing("2024-01-10", "", nil),
			now:          at("2024-01-10T00:00:01Z"),
			expected:     StatusOverdue,
			expectedDays: 1,
			expectedFine: decimal.NewFromInt(1),
		},
		{
			name:         "part of the fifth day rounds up",
			borrowing:    borrowing("2024-01-10", "", nil),
			now:          at("2024-01-14T18:00:00Z"),
			expected:     StatusOverdue,
			expectedDays: 5,
			expectedFine: decimal.NewFromInt(5),
		},
		{
			name:         "due in the future",
			borrowing:    borrowing("2024-01-20", "", nil),
			now:          at("2024-01-15T12:00:00Z"),
			expected:     StatusActive,
			expectedFine: decimal.Zero,
		},
		{
			name:         "returned late keeps returned status",
			borrowing:    borrowing("2024-01-10", "2024-01-12", strPtr("2.00")),
			now:          at("2024-03-01T00:00:00Z"),
			expected:     StatusReturned,
			expectedFine: decimal.Zero,
		},
		{
			name:         "returned before due",
			borrowing:    borrowing("2024-01-10", "2024-01-05", nil),
			now:          at("2024-01-06T00:00:00Z"),
			expected:     StatusReturned,
			expectedFine: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Classify(tt.borrowing, tt.now, DefaultDailyRate)

			assert.Equal(t, tt.expected, entry.Status)
			assert.Equal(t, tt.expectedDays, entry.DaysOverdue)
			assert.True(t, entry.EstimatedFine.Equal(tt.expectedFine),
				"Expected fine %v, but got %v", tt.expectedFine, entry.EstimatedFine)
		})
	}
}

func TestClassify_ReturnedIgnoresDueDate(t *testing.T) {
	now := at("2024-06-01T00:00:00Z")

	for _, due := range []string{"2023-01-01", "2024-05-31", "2024-06-01", "2025-01-01"} {
		entry := Classify(borrowing(due, "2024-05-01", nil), now, DefaultDailyRate)
		assert.Equal(t, StatusReturned, entry.Status, due)
		assert.Zero(t, entry.DaysOverdue, due)
	}
}

func TestClassify_ReturnedSurfacesServerFine(t *testing.T) {
	entry := Classify(borrowing("2024-01-10", "2024-01-12", strPtr("7.25")), at("2024-01-15T00:00:00Z"), DefaultDailyRate)

	fine, provisional := entry.Fine()
	assert.False(t, provisional)
	assert.True(t, fine.Equal(decimal.RequireFromString("7.25")), "server fine must not be recomputed")
}

func TestClassify_EstimateIsMonotonic(t *testing.T) {
	b := borrowing("2024-01-10", "", nil)
	start := at("2024-01-08T00:00:00Z")

	previous := decimal.Zero
	for h := 0; h < 24*30; h++ {
		entry := Classify(b, start.Add(time.Duration(h)*time.Hour), DefaultDailyRate)
		require.True(t, entry.EstimatedFine.GreaterThanOrEqual(previous), "hour %d", h)
		if entry.Status == StatusOverdue {
			require.GreaterOrEqual(t, entry.DaysOverdue, 1)
			require.True(t, entry.EstimatedFine.Equal(decimal.NewFromInt(int64(entry.DaysOverdue))))
		}
		previous = entry.EstimatedFine
	}
}

func TestEntry_Fine(t *testing.T) {
	now := at("2024-01-15T00:00:00Z")

	active := Classify(borrowing("2024-02-01", "", nil), now, DefaultDailyRate)
	fine, provisional := active.Fine()
	assert.True(t, fine.IsZero())
	assert.False(t, provisional)

	estimated := Classify(borrowing("2024-01-10", "", strPtr("0")), now, DefaultDailyRate)
	fine, provisional = estimated.Fine()
	assert.True(t, provisional)
	assert.True(t, fine.Equal(decimal.NewFromInt(5)))

	accrued := Classify(borrowing("2024-01-10", "", strPtr("4.00")), now, DefaultDailyRate)
	fine, provisional = accrued.Fine()
	assert.False(t, provisional)
	assert.True(t, fine.Equal(decimal.NewFromInt(4)))

	returnedNoFine := Classify(borrowing("2024-01-10", "2024-01-09", nil), now, DefaultDailyRate)
	fine, provisional = returnedNoFine.Fine()
	assert.False(t, provisional)
	assert.True(t, fine.IsZero())
}

func TestEstimator_ClassifyAll(t *testing.T) {
	now := at("2024-01-15T00:00:00Z")
	estimator := NewEstimator(decimal.RequireFromString("0.50"), func() time.Time { return now })

	entries := estimator.ClassifyAll([]domain.Borrowing{
		borrowing("2024-01-10", "", nil),
		borrowing("2024-01-20", "", nil),
		borrowing("2024-01-01", "2024-01-03", strPtr("2.00")),
		borrowing("2024-01-14", "", nil),
	})
	require.Len(t, entries, 4)

	summary := Summarize(entries)
	assert.Equal(t, 1, summary.Active)
	assert.Equal(t, 2, summary.Overdue)
	assert.Equal(t, 1, summary.Returned)
	// (5 + 1) days at 0.50
	assert.True(t, summary.EstimatedFines.Equal(decimal.NewFromInt(3)), summary.EstimatedFines.String())
	assert.True(t, summary.ServerFines.Equal(decimal.NewFromInt(2)))
	assert.True(t, estimator.Rate().Equal(decimal.RequireFromString("0.5")))
}
