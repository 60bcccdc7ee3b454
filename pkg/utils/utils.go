package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// CeilDays returns the number of started days in d, i.e. ceil(d / 24h).
// Negative durations yield zero or a negative count.
func CeilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}

// CalculateFine multiplies the overdue days by the daily rate
// Formula: days * rate, rounded to 2 decimal places
func CalculateFine(days int, dailyRate decimal.Decimal) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return dailyRate.Mul(decimal.NewFromInt(int64(days))).Round(2)
}

// CalculateDueDate returns the day a loan starting on borrowDate must be returned by
func CalculateDueDate(borrowDate time.Time, periodDays int) time.Time {
	return borrowDate.AddDate(0, 0, periodDays)
}

// IsDateOverdue checks if dueDate lies strictly before now
func IsDateOverdue(dueDate time.Time, now time.Time) bool {
	return now.After(dueDate)
}
