package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the librarian command tree
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "librarian",
		Short:         "Browse the catalog, borrow and return books",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.sessions.Load(cmd.Context()); err != nil {
				// a broken store only means logging in again
				app.logger.Warn("could not restore session", "error", err)
			}
			return nil
		},
	}
	root.SetIn(app.in)
	root.SetOut(app.out)

	root.AddCommand(
		app.loginCommand(),
		app.signupCommand(),
		app.setupAdminCommand(),
		app.logoutCommand(),
		app.whoamiCommand(),
		app.booksCommand(),
		app.genresCommand(),
		app.bookCommand(),
		app.borrowCommand(),
		app.returnCommand(),
		app.renewCommand(),
		app.loansCommand(),
		app.loanCommand(),
		app.historyCommand(),
		app.wishlistCommand(),
		app.digitalCommand(),
		app.adminCommand(),
	)

	return root
}
