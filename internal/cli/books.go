package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/segyhp/library-circulation/internal/catalog"
	"github.com/segyhp/library-circulation/internal/domain"
)

func (a *App) booksCommand() *cobra.Command {
	var filter catalog.Filter
	var popular, remote bool

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if popular || remote {
				books, err := a.serverBooks(ctx, filter, popular)
				if err != nil {
					return a.fail(err, "Failed to fetch books")
				}
				if len(books) == 0 {
					fmt.Fprintln(a.out, "No books found")
					return nil
				}
				entries := make([]catalog.Entry, 0, len(books))
				for _, b := range books {
					entries = append(entries, catalog.Entry{Book: b})
				}
				return writeBooks(a.out, entries)
			}

			if err := a.circulation.RefreshCatalog(ctx); err != nil {
				return a.fail(err, "Failed to fetch books")
			}
			if _, err := a.circulation.RefreshWishlist(ctx); err != nil {
				a.logger.Warn("wishlist unavailable", "error", err)
			}

			entries := a.circulation.Catalog().Search(filter)
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No books found")
				return nil
			}
			return writeBooks(a.out, entries)
		},
	}
	cmd.Flags().StringVarP(&filter.Keyword, "search", "s", "", "match title, author or genre")
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "only this genre")
	cmd.Flags().BoolVar(&filter.AvailableOnly, "available", false, "only books with a free copy")
	cmd.Flags().BoolVar(&filter.DigitalOnly, "digital", false, "only books with a digital copy")
	cmd.Flags().BoolVar(&popular, "popular", false, "most borrowed books")
	cmd.Flags().BoolVar(&remote, "server", false, "filter on the server instead of the local catalog")

	return cmd
}

// serverBooks picks the narrowest server listing for the filter
func (a *App) serverBooks(ctx context.Context, filter catalog.Filter, popular bool) ([]domain.Book, error) {
	switch {
	case popular:
		return a.api.PopularBooks(ctx)
	case filter.Keyword != "" || filter.Genre != "" || (filter.AvailableOnly && filter.DigitalOnly):
		return a.api.SearchBooks(ctx, domain.BookSearchRequest{
			Keyword:       filter.Keyword,
			Genre:         filter.Genre,
			AvailableOnly: filter.AvailableOnly,
			DigitalOnly:   filter.DigitalOnly,
		})
	case filter.AvailableOnly:
		return a.api.AvailableBooks(ctx)
	case filter.DigitalOnly:
		return a.api.DigitalBooksCatalog(ctx)
	default:
		return a.api.Books(ctx)
	}
}

func (a *App) genresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genres of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			genres, err := a.api.Genres(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch genres")
			}
			for _, g := range genres {
				fmt.Fprintln(a.out, g)
			}
			return nil
		},
	}
}

func (a *App) bookCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "book <id>",
		Short: "Show one book and its digital copies",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("book id", func(cmd *cobra.Command, id int64) error {
			ctx := cmd.Context()

			book, err := a.api.Book(ctx, id)
			if err != nil {
				return a.fail(err, "Failed to fetch book details")
			}

			fmt.Fprintf(a.out, "%s\nby %s\n", book.Title, book.Author)
			if book.Genre != "" {
				fmt.Fprintf(a.out, "genre: %s\n", book.Genre)
			}
			fmt.Fprintf(a.out, "available: %d of %d\n", book.AvailableCopies, book.TotalCopies)

			if !book.HasDigitalCopy {
				return nil
			}
			files, err := a.api.DigitalBooksForBook(ctx, id)
			if err != nil {
				return a.fail(err, "Failed to fetch digital copies")
			}
			for _, f := range files {
				fmt.Fprintf(a.out, "digital: #%d %s %s\n", f.ID, f.FileFormat, f.FileName)
			}
			return nil
		}),
	}
}
