// Package ledger classifies borrowings for display and estimates overdue fines.
//
// The estimate is a provisional hint computed from the local clock. The fine
// reported by the server is authoritative and always wins when present.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/pkg/utils"
)

// Status is the display state of a borrowing. It is derived, never persisted.
type Status string

const (
	StatusActive   Status = "active"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

// DefaultDailyRate is the observed per-day estimate of one currency unit
var DefaultDailyRate = decimal.NewFromInt(1)

// Entry is a borrowing together with its derived status
type Entry struct {
	Borrowing     domain.Borrowing
	Status        Status
	DaysOverdue   int
	EstimatedFine decimal.Decimal
	ServerFine    decimal.NullDecimal
}

// Fine returns the amount to show and whether it is only a local estimate.
// Returned borrowings report the server fine verbatim (zero when the server sent none).
func (e Entry) Fine() (amount decimal.Decimal, provisional bool) {
	switch e.Status {
	case StatusReturned:
		if e.ServerFine.Valid {
			return e.ServerFine.Decimal, false
		}
		return decimal.Zero, false
	case StatusOverdue:
		if e.ServerFine.Valid && e.ServerFine.Decimal.IsPositive() {
			return e.ServerFine.Decimal, false
		}
		return e.EstimatedFine, true
	default:
		return decimal.Zero, false
	}
}

// Classify derives the status of b at instant now.
//
//	returnDate set            -> Returned
//	ceil((now-due)/day) > 0   -> Overdue, fine = days * rate
//	otherwise                 -> Active
func Classify(b domain.Borrowing, now time.Time, dailyRate decimal.Decimal) Entry {
	entry := Entry{
		Borrowing:     b,
		EstimatedFine: decimal.Zero,
		ServerFine:    b.Fine,
	}

	if b.IsReturned() {
		entry.Status = StatusReturned
		return entry
	}

	diffDays := utils.CeilDays(now.Sub(b.DueDate.Time))
	if diffDays > 0 {
		entry.Status = StatusOverdue
		entry.DaysOverdue = diffDays
		entry.EstimatedFine = utils.CalculateFine(diffDays, dailyRate)
		return entry
	}

	entry.Status = StatusActive
	return entry
}

// Estimator binds a rate and a clock so every view classifies identically
type Estimator struct {
	rate decimal.Decimal
	now  func() time.Time
}

// NewEstimator returns an estimator. A nil clock means time.Now.
func NewEstimator(dailyRate decimal.Decimal, now func() time.Time) *Estimator {
	if now == nil {
		now = time.Now
	}
	return &Estimator{rate: dailyRate, now: now}
}

// Rate returns the daily estimate rate
func (e *Estimator) Rate() decimal.Decimal {
	return e.rate
}

// Classify derives the status of b at the estimator's current time
func (e *Estimator) Classify(b domain.Borrowing) Entry {
	return Classify(b, e.now(), e.rate)
}

// ClassifyAll classifies a list against a single reading of the clock
func (e *Estimator) ClassifyAll(borrowings []domain.Borrowing) []Entry {
	now := e.now()
	entries := make([]Entry, 0, len(borrowings))
	for _, b := range borrowings {
		entries = append(entries, Classify(b, now, e.rate))
	}
	return entries
}

// Summary aggregates a classified list for dashboard cards
type Summary struct {
	Active         int
	Overdue        int
	Returned       int
	EstimatedFines decimal.Decimal
	ServerFines    decimal.Decimal
}

// Summarize counts entries per status and totals their fines
func Summarize(entries []Entry) Summary {
	s := Summary{EstimatedFines: decimal.Zero, ServerFines: decimal.Zero}

	for _, e := range entries {
		switch e.Status {
		case StatusActive:
			s.Active++
		case StatusOverdue:
			s.Overdue++
			s.EstimatedFines = s.EstimatedFines.Add(e.EstimatedFine)
		case StatusReturned:
			s.Returned++
		}

		if e.ServerFine.Valid {
			s.ServerFines = s.ServerFines.Add(e.ServerFine.Decimal)
		}
	}

	return s
}
