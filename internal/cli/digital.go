package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/segyhp/library-circulation/internal/domain"
)

func (a *App) digitalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digital",
		Short: "Electronic copies of books",
	}
	cmd.AddCommand(
		a.digitalListCommand(),
		a.digitalDownloadCommand(),
		a.digitalUploadCommand(),
		a.digitalDeleteCommand(),
	)
	return cmd
}

func (a *App) digitalListCommand() *cobra.Command {
	var bookID int64
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List digital copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				files []domain.DigitalBook
				err   error
			)
			switch {
			case bookID > 0:
				files, err = a.api.DigitalBooksForBook(ctx, bookID)
			case format != "":
				files, err = a.api.DigitalBooksByFormat(ctx, format)
			default:
				files, err = a.api.DigitalBooks(ctx)
			}
			if err != nil {
				return a.fail(err, "Failed to fetch digital books")
			}

			t := newTable(a.out, "ID", "BOOK", "TITLE", "FORMAT", "FILE", "SIZE")
			for _, f := range files {
				t.row(f.ID, f.BookID, f.BookTitle, f.FileFormat, f.FileName, f.SizeBytes)
			}
			return t.flush()
		},
	}
	cmd.Flags().Int64Var(&bookID, "book", 0, "only copies of this book")
	cmd.Flags().StringVar(&format, "format", "", "only this format (PDF, EPUB, MOBI)")

	return cmd
}

func (a *App) digitalDownloadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a digital copy",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("digital book id", func(cmd *cobra.Command, id int64) error {
			if _, err := a.currentSession(); err != nil {
				return err
			}

			if output == "-" {
				_, err := a.api.DownloadDigitalBook(cmd.Context(), id, a.out)
				return a.fail(err, "Failed to download book")
			}

			path := output
			if path == "" {
				path = fmt.Sprintf("digital-book-%d", id)
			}

			f, err := os.Create(path)
			if err != nil {
				return err
			}
			n, err := a.api.DownloadDigitalBook(cmd.Context(), id, f)
			closeErr := f.Close()
			if err != nil {
				_ = os.Remove(path)
				return a.fail(err, "Failed to download book")
			}
			if closeErr != nil {
				return closeErr
			}

			a.notify.Success("Downloaded %d bytes to %s", n, path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, - for stdout")

	return cmd
}

func (a *App) digitalUploadCommand() *cobra.Command {
	var bookID int64
	var format string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Attach a digital copy to a book (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.currentSession(); err != nil {
				return err
			}

			path := args[0]
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(path), ".")
			}
			normalized, ok := domain.NormalizeFormat(format)
			if !ok {
				return fmt.Errorf("unsupported format %q, use PDF, EPUB or MOBI", format)
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			uploaded, err := a.api.UploadDigitalBook(cmd.Context(), bookID, normalized, filepath.Base(path), f)
			if err != nil {
				return a.fail(err, "Failed to upload digital book")
			}
			a.notify.Success("Digital book added successfully! (#%d, %s)", uploaded.ID, uploaded.FileName)
			return nil
		},
	}
	cmd.Flags().Int64Var(&bookID, "book", 0, "book the file belongs to")
	cmd.Flags().StringVar(&format, "format", "", "PDF, EPUB or MOBI (default from the file extension)")
	_ = cmd.MarkFlagRequired("book")

	return cmd
}

func (a *App) digitalDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a digital copy (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("digital book id", func(cmd *cobra.Command, id int64) error {
			if err := a.api.DeleteDigitalBook(cmd.Context(), id); err != nil {
				return a.fail(err, "Failed to delete digital book")
			}
			a.notify.Success("Digital book deleted successfully!")
			return nil
		}),
	}
}

