package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/ledger"
)

func (a *App) adminMemberCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "member <id>",
		Short: "Show one member",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("member id", func(cmd *cobra.Command, id int64) error {
			m, err := a.api.Member(cmd.Context(), id)
			if err != nil {
				return a.fail(err, "Failed to fetch member")
			}

			fmt.Fprintf(a.out, "#%d %s <%s>\n", m.ID, m.FullName, m.Email)
			if m.Username != "" {
				fmt.Fprintf(a.out, "username: %s\n", m.Username)
			}
			fmt.Fprintf(a.out, "joined: %s\n", m.CreatedAt.Format("2006-01-02"))
			return nil
		}),
	}
}

func (a *App) adminAddMemberCommand() *cobra.Command {
	var request domain.CreateMemberRequest

	cmd := &cobra.Command{
		Use:   "add-member",
		Short: "Create a member with a login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.api.CreateMember(cmd.Context(), request)
			if err != nil {
				return a.fail(err, "Failed to add member")
			}
			a.notify.Success("Member added successfully! (#%d)", m.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&request.Username, "username", "", "login name")
	cmd.Flags().StringVar(&request.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&request.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&request.Email, "email", "", "email address")
	for _, name := range []string{"username", "password", "name", "email"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func (a *App) adminUpdateMemberCommand() *cobra.Command {
	var fullName, email string

	cmd := &cobra.Command{
		Use:   "update-member <id>",
		Short: "Change a member's name or email",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("member id", func(cmd *cobra.Command, id int64) error {
			ctx := cmd.Context()

			// the server replaces both fields, unset flags keep the current value
			current, err := a.api.Member(ctx, id)
			if err != nil {
				return a.fail(err, "Failed to fetch member")
			}
			request := domain.UpdateMemberRequest{FullName: current.FullName, Email: current.Email}
			if cmd.Flags().Changed("name") {
				request.FullName = fullName
			}
			if cmd.Flags().Changed("email") {
				request.Email = email
			}

			if _, err := a.api.UpdateMember(ctx, id, request); err != nil {
				return a.fail(err, "Failed to update member")
			}
			a.notify.Success("Member updated successfully!")
			return nil
		}),
	}
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.MarkFlagsOneRequired("name", "email")

	return cmd
}

func (a *App) adminDeleteMemberCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-member <id>",
		Short: "Remove a member and their login",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("member id", func(cmd *cobra.Command, id int64) error {
			if err := a.api.DeleteMember(cmd.Context(), id); err != nil {
				return a.fail(err, "Failed to delete member")
			}
			a.notify.Success("Member deleted successfully!")
			return nil
		}),
	}
}

func (a *App) adminMemberLoansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "member-loans <memberId>",
		Short: "Every borrowing of one member",
		Args:  cobra.ExactArgs(1),
		RunE: idArg("member id", func(cmd *cobra.Command, memberID int64) error {
			borrowings, err := a.api.MemberBorrowings(cmd.Context(), memberID)
			if err != nil {
				return a.fail(err, "Failed to fetch borrowings")
			}
			if len(borrowings) == 0 {
				fmt.Fprintln(a.out, "No borrowings")
				return nil
			}

			entries := a.circulation.Estimator().ClassifyAll(borrowings)
			if err := writeLoans(a.out, entries, false); err != nil {
				return err
			}
			writeSummary(a.out, ledger.Summarize(entries))
			return nil
		}),
	}
}

func (a *App) adminUsersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List login accounts and their roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.api.Users(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch users")
			}

			t := newTable(a.out, "ID", "USERNAME", "ROLE", "CREATED")
			for _, u := range users {
				t.row(u.ID, u.Username, u.Role, u.CreatedAt.Format("2006-01-02"))
			}
			return t.flush()
		},
	}
}

func (a *App) adminAddAdminCommand() *cobra.Command {
	var request domain.CreateAdminRequest

	cmd := &cobra.Command{
		Use:   "add-admin",
		Short: "Create a staff login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.api.CreateAdmin(cmd.Context(), request)
			if err != nil {
				return a.fail(err, "Failed to add admin")
			}
			a.notify.Success("Admin %s created (#%d)", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&request.Username, "username", "", "login name")
	cmd.Flags().StringVar(&request.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (a *App) adminSetRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "set-role <userId> <USER|ADMIN>",
		Short:     "Change the role of a login",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{domain.RoleUser, domain.RoleAdmin},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			role := strings.ToUpper(args[1])
			if role != domain.RoleUser && role != domain.RoleAdmin {
				return fmt.Errorf("invalid role %q", args[1])
			}

			u, err := a.api.UpdateUserRole(cmd.Context(), id, role)
			if err != nil {
				return a.fail(err, "Failed to update role")
			}
			a.notify.Success("%s is now %s", u.Username, u.Role)
			return nil
		},
	}
}
