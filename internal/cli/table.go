package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/segyhp/library-circulation/internal/catalog"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/ledger"
)

type table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer, header ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)}
	t.row(toAny(header)...)
	return t
}

func (t *table) row(cells ...interface{}) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(t.w, strings.Join(parts, "\t"))
}

func (t *table) flush() error {
	return t.w.Flush()
}

func toAny(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// fineCell marks local estimates with a leading tilde
func fineCell(e ledger.Entry) string {
	amount, provisional := e.Fine()
	if amount.IsZero() {
		return "-"
	}
	if provisional {
		return "~" + money(amount)
	}
	return money(amount)
}

func overdueCell(e ledger.Entry) string {
	if e.Status != ledger.StatusOverdue {
		return "-"
	}
	return fmt.Sprintf("%d", e.DaysOverdue)
}

func returnedCell(b domain.Borrowing) string {
	if b.ReturnDate == nil {
		return "-"
	}
	return b.ReturnDate.String()
}

func writeBooks(out io.Writer, entries []catalog.Entry) error {
	t := newTable(out, "ID", "TITLE", "AUTHOR", "GENRE", "AVAILABLE", "DIGITAL", "WISHLIST")
	for _, e := range entries {
		available := fmt.Sprintf("%d/%d", e.AvailableCopies, e.TotalCopies)
		if e.Provisional {
			available += "*"
		}
		wish := ""
		if e.Wishlisted {
			wish = "♥"
		}
		t.row(e.ID, e.Title, e.Author, e.Genre, available, yesNo(e.HasDigitalCopy), wish)
	}
	return t.flush()
}

func writeLoans(out io.Writer, entries []ledger.Entry, withMember bool) error {
	header := []string{"ID", "BOOK", "BORROWED", "DUE", "RETURNED", "STATUS", "DAYS OVERDUE", "FINE"}
	if withMember {
		header = append(header[:2:2], append([]string{"MEMBER"}, header[2:]...)...)
	}

	t := newTable(out, header...)
	for _, e := range entries {
		b := e.Borrowing
		cells := []interface{}{b.ID, b.Book.Title}
		if withMember {
			cells = append(cells, b.Member.FullName)
		}
		cells = append(cells, b.BorrowDate, b.DueDate, returnedCell(b), e.Status, overdueCell(e), fineCell(e))
		t.row(cells...)
	}
	return t.flush()
}

func writeSummary(out io.Writer, s ledger.Summary) {
	fmt.Fprintf(out, "\nactive: %d  overdue: %d  returned: %d", s.Active, s.Overdue, s.Returned)
	if s.EstimatedFines.IsPositive() {
		fmt.Fprintf(out, "  estimated fines: ~%s", money(s.EstimatedFines))
	}
	if s.ServerFines.IsPositive() {
		fmt.Fprintf(out, "  charged fines: %s", money(s.ServerFines))
	}
	fmt.Fprintln(out)
}
