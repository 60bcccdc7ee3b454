package domain

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/library-circulation/pkg/utils"
)

// Borrowing associates a member with a book copy for a bounded loan period.
// A non-nil ReturnDate is terminal.
type Borrowing struct {
	ID         int64               `json:"id" db:"id"`
	Book       BookSummary         `json:"book" db:"book"`
	Member     MemberSummary       `json:"member" db:"member"`
	BorrowDate Date                `json:"borrowDate" db:"borrow_date"`
	DueDate    Date                `json:"dueDate" db:"due_date"`
	ReturnDate *Date               `json:"returnDate,omitempty" db:"return_date"`
	Fine       decimal.NullDecimal `json:"fine" db:"fine"`
}

// IsReturned reports whether the loan has ended
func (b Borrowing) IsReturned() bool {
	return b.ReturnDate != nil
}

// IsOverdueOn reports whether the loan is unreturned and past due on the given day
func (b Borrowing) IsOverdueOn(day Date) bool {
	return !b.IsReturned() && utils.IsDateOverdue(b.DueDate.Time, day.Time)
}

// DaysLate returns the number of whole days between the due date and day, or 0
func (b Borrowing) DaysLate(day Date) int {
	if !day.After(b.DueDate) {
		return 0
	}
	return int(day.Sub(b.DueDate.Time).Hours() / 24)
}

type TotalFinesResponse struct {
	MemberID   int64           `json:"memberId"`
	TotalFines decimal.Decimal `json:"totalFines"`
}
