package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/ledger"
)

func (a *App) adminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Staff reports and catalog maintenance",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			// role checks stay with the server
			_, err := a.currentSession()
			return err
		},
	}

	cmd.AddCommand(
		a.adminOverdueCommand(),
		a.adminStatsCommand(),
		a.adminMembersCommand(),
		a.adminBooksCommand(),
		a.adminBorrowingsCommand(),
		a.adminCalculateFinesCommand(),
		a.adminFinesCommand(),
		a.adminAddBookCommand(),
		a.adminUpdateBookCommand(),
		a.adminDeleteBookCommand(),
		a.adminMemberCommand(),
		a.adminAddMemberCommand(),
		a.adminUpdateMemberCommand(),
		a.adminDeleteMemberCommand(),
		a.adminMemberLoansCommand(),
		a.adminUsersCommand(),
		a.adminAddAdminCommand(),
		a.adminSetRoleCommand(),
	)
	return cmd
}

func (a *App) adminOverdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Every overdue borrowing with its estimated fine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, summary, err := a.circulation.OverdueReport(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch reports")
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No overdue borrowings")
				return nil
			}
			if err := writeLoans(a.out, entries, true); err != nil {
				return err
			}
			writeSummary(a.out, summary)
			return nil
		},
	}
}

func (a *App) adminBorrowingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "borrowings",
		Short: "Every borrowing of every member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			borrowings, err := a.api.AllBorrowings(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch borrowings")
			}
			entries := a.circulation.Estimator().ClassifyAll(borrowings)
			if err := writeLoans(a.out, entries, true); err != nil {
				return err
			}
			writeSummary(a.out, ledger.Summarize(entries))
			return nil
		},
	}
}

func (a *App) adminStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.api.DashboardStats(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to load dashboard data")
			}

			t := newTable(a.out, "TOTAL BOOKS", "MEMBERS", "ACTIVE BORROWINGS", "OVERDUE")
			t.row(stats.TotalBooks, stats.TotalMembers, stats.ActiveBorrowings, stats.OverdueBooks)
			return t.flush()
		},
	}
}

func (a *App) adminMembersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.api.Members(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch members")
			}

			t := newTable(a.out, "ID", "NAME", "EMAIL", "USERNAME", "JOINED")
			for _, m := range members {
				t.row(m.ID, m.FullName, m.Email, m.Username, m.CreatedAt.Format("2006-01-02"))
			}
			return t.flush()
		},
	}
}

func (a *App) adminBooksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List the catalog as staff sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.api.AdminBooks(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch books")
			}
			a.circulation.Catalog().Replace(books)
			return writeBooks(a.out, a.circulation.Catalog().List())
		},
	}
}

func (a *App) adminCalculateFinesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "calculate-fines",
		Short: "Recompute fines of overdue borrowings on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := a.api.CalculateFines(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to calculate fines")
			}
			a.notify.Success("Fines updated on %d borrowings", updated)
			return nil
		},
	}
}

func (a *App) adminFinesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fines <memberId>",
		Short: "Total fines charged to a member",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("member id", func(cmd *cobra.Command, memberID int64) error {
			total, err := a.api.MemberTotalFines(cmd.Context(), memberID)
			if err != nil {
				return a.fail(err, "Failed to fetch fines")
			}
			fmt.Fprintf(a.out, "member #%d owes %s\n", total.MemberID, money(total.TotalFines))
			return nil
		}),
	}
}

func (a *App) adminAddBookCommand() *cobra.Command {
	var request domain.BookRequest
	var copies int
	var digital bool

	cmd := &cobra.Command{
		Use:   "add-book",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			request.TotalCopies = &copies
			request.HasDigitalCopy = &digital

			book, err := a.api.CreateBook(cmd.Context(), request)
			if err != nil {
				return a.fail(err, "Failed to add book")
			}
			a.notify.Success("Book added successfully! (#%d)", book.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&request.Title, "title", "", "title")
	cmd.Flags().StringVar(&request.Author, "author", "", "author")
	cmd.Flags().StringVar(&request.Genre, "genre", "", "genre")
	cmd.Flags().IntVar(&copies, "copies", 1, "number of physical copies")
	cmd.Flags().BoolVar(&digital, "digital", false, "a digital copy exists")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func (a *App) adminUpdateBookCommand() *cobra.Command {
	var title, author, genre string
	var copies int
	var digital bool

	cmd := &cobra.Command{
		Use:   "update-book <id>",
		Short: "Change the details of a book",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("book id", func(cmd *cobra.Command, id int64) error {
			ctx := cmd.Context()

			current, err := a.api.Book(ctx, id)
			if err != nil {
				return a.fail(err, "Failed to fetch book details")
			}
			request := domain.BookRequest{Title: current.Title, Author: current.Author, Genre: current.Genre}

			flags := cmd.Flags()
			if flags.Changed("title") {
				request.Title = title
			}
			if flags.Changed("author") {
				request.Author = author
			}
			if flags.Changed("genre") {
				request.Genre = genre
			}
			if flags.Changed("copies") {
				request.TotalCopies = &copies
			}
			if flags.Changed("digital") {
				request.HasDigitalCopy = &digital
			}

			book, err := a.api.UpdateBook(ctx, id, request)
			if err != nil {
				return a.fail(err, "Failed to update book")
			}
			a.circulation.Catalog().Upsert(*book)
			a.notify.Success("Book updated successfully! %d of %d available", book.AvailableCopies, book.TotalCopies)
			return nil
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&author, "author", "", "author")
	cmd.Flags().StringVar(&genre, "genre", "", "genre")
	cmd.Flags().IntVar(&copies, "copies", 0, "number of physical copies")
	cmd.Flags().BoolVar(&digital, "digital", false, "a digital copy exists")
	cmd.MarkFlagsOneRequired("title", "author", "genre", "copies", "digital")

	return cmd
}

func (a *App) adminDeleteBookCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-book <id>",
		Short: "Remove a book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("book id", func(cmd *cobra.Command, id int64) error {
			if err := a.api.DeleteBook(cmd.Context(), id); err != nil {
				return a.fail(err, "Failed to delete book")
			}
			a.notify.Success("Book deleted successfully!")
			return nil
		}),
	}
}
