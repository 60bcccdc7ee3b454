package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/segyhp/library-circulation/internal/circulation"
	"github.com/segyhp/library-circulation/internal/ledger"
)

func (a *App) borrowCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "borrow <bookId>",
		Short: "Borrow a copy of a book",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("book id", func(cmd *cobra.Command, bookID int64) error {
			ctx := cmd.Context()
			if _, err := a.currentSession(); err != nil {
				return err
			}

			var opts []circulation.BorrowOption
			if force {
				opts = append(opts, circulation.Force())
			} else if book, err := a.api.Book(ctx, bookID); err == nil {
				a.circulation.Catalog().Upsert(*book)
			}

			borrowing, err := a.circulation.Borrow(ctx, bookID, opts...)
			if err != nil {
				return a.fail(err, "Failed to borrow book")
			}
			a.notify.Borrowed(borrowing)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&force, "force", false, "ask the server even when no copy seems free")

	return cmd
}

func (a *App) returnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "return <borrowingId>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("borrowing id", func(cmd *cobra.Command, id int64) error {
			result, err := a.circulation.Return(cmd.Context(), id)
			if err != nil {
				return a.fail(err, "Failed to return book")
			}
			a.notify.Returned(result)
			return nil
		}),
	}
}

func (a *App) renewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "renew <borrowingId>",
		Short: "Extend the due date of a borrowing",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("borrowing id", func(cmd *cobra.Command, id int64) error {
			entry, err := a.circulation.Renew(cmd.Context(), id)
			if err != nil {
				return a.fail(err, "Failed to renew borrowing")
			}
			a.notify.Renewed(entry.Borrowing)
			return nil
		}),
	}
}

func (a *App) loansCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "loans",
		Aliases: []string{"dashboard"},
		Short:   "Show current borrowings with due dates and estimated fines",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.currentSession(); err != nil {
				return err
			}

			d, err := a.circulation.Dashboard(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch borrowings")
			}
			if len(d.Loans) == 0 {
				fmt.Fprintln(a.out, "No current borrowings")
				return nil
			}

			if err := writeLoans(a.out, d.Loans, false); err != nil {
				return err
			}
			writeSummary(a.out, d.Summary)
			return nil
		},
	}
}

func (a *App) loanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "loan <borrowingId>",
		Short: "Show one borrowing with its due date and fine",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("borrowing id", func(cmd *cobra.Command, id int64) error {
			if _, err := a.currentSession(); err != nil {
				return err
			}

			b, err := a.api.Borrowing(cmd.Context(), id)
			if err != nil {
				return a.fail(err, "Failed to fetch borrowing")
			}
			entry := a.circulation.Estimator().Classify(*b)
			return writeLoans(a.out, []ledger.Entry{entry}, false)
		}),
	}
}

func (a *App) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show returned borrowings and the fines charged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.currentSession(); err != nil {
				return err
			}

			entries, err := a.circulation.History(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch borrowing history")
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No returned borrowings")
				return nil
			}
			return writeLoans(a.out, entries, false)
		},
	}
}

func (a *App) wishlistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show books saved for later",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.currentSession(); err != nil {
				return err
			}

			items, err := a.circulation.RefreshWishlist(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch wishlist")
			}
			if len(items) == 0 {
				fmt.Fprintln(a.out, "Your wishlist is empty")
				return nil
			}

			t := newTable(a.out, "BOOK", "TITLE", "AUTHOR", "AVAILABLE", "ADDED")
			for _, item := range items {
				t.row(item.Book.ID, item.Book.Title, item.Book.Author, yesNo(item.Book.IsAvailable()), item.CreatedAt.Format("2006-01-02"))
			}
			return t.flush()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <bookId>",
			Short: "Save a book for later",
			Args:  cobra.ExactArgs(1),
			RunE: idArg("book id", func(cmd *cobra.Command, bookID int64) error {
				if err := a.circulation.ToggleWishlist(cmd.Context(), bookID, true); err != nil {
					return a.fail(err, "Failed to update wishlist")
				}
				a.notify.Success("Book added to wishlist")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove <bookId>",
			Short: "Drop a book from the wishlist",
			Args:  cobra.ExactArgs(1),
			RunE: idArg("book id", func(cmd *cobra.Command, bookID int64) error {
				if err := a.circulation.ToggleWishlist(cmd.Context(), bookID, false); err != nil {
					return a.fail(err, "Failed to remove from wishlist")
				}
				a.notify.Success("Book removed from wishlist")
				return nil
			}),
		},
	)

	return cmd
}
