// Package notify prints the short confirmation or failure line after each action.
package notify

import (
	"errors"
	"fmt"
	"io"

	"github.com/segyhp/library-circulation/internal/circulation"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/inflight"
	"github.com/segyhp/library-circulation/pkg/client"
)

const (
	MessageLoginRequired = "Please login to continue."
	MessageInProgress    = "Request already in progress."
	MessageNoCopies      = "No copies available. Use --force to ask the server anyway."
)

type Notifier struct {
	out io.Writer
	err io.Writer
}

func New(out, errOut io.Writer) *Notifier {
	return &Notifier{out: out, err: errOut}
}

// Success prints a confirmation
func (n *Notifier) Success(format string, args ...interface{}) {
	fmt.Fprintf(n.out, format+"\n", args...)
}

// Error prints the message for err and returns it unchanged, so commands can
// `return n.Error(err, "...")`
func (n *Notifier) Error(err error, fallback string) error {
	if err == nil {
		return nil
	}
	fmt.Fprintln(n.err, Message(err, fallback))
	return err
}

func (n *Notifier) Borrowed(b *domain.Borrowing) {
	n.Success("Book borrowed successfully! Due date: %s", b.DueDate)
}

func (n *Notifier) Returned(r *circulation.ReturnResult) {
	if r.Late() {
		n.Success("Book returned successfully! Fine: $%s", r.Fine.StringFixed(2))
		return
	}
	n.Success("Book returned successfully!")
}

func (n *Notifier) Renewed(b domain.Borrowing) {
	n.Success("Borrowing renewed. New due date: %s", b.DueDate)
}

// Message derives the text shown for err
func Message(err error, fallback string) string {
	switch {
	case errors.Is(err, client.ErrNotAuthenticated):
		return MessageLoginRequired
	case errors.Is(err, inflight.ErrDuplicate):
		return MessageInProgress
	case errors.Is(err, circulation.ErrNoCopiesAvailable):
		return MessageNoCopies
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
