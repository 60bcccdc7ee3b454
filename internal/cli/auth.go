package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/session"
)

func (a *App) loginCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and keep the session for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := a.prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			jwt, err := a.api.Signin(cmd.Context(), args[0], password)
			if err != nil {
				return a.fail(err, "Login failed")
			}

			s := session.FromSignin(jwt)
			if err := a.sessions.Start(cmd.Context(), s); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			a.notify.Success("Logged in as %s (%s)", s.Username, s.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

func (a *App) signupCommand() *cobra.Command {
	var request domain.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a member account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			member, err := a.api.Signup(cmd.Context(), request)
			if err != nil {
				return a.fail(err, "Registration failed")
			}
			a.notify.Success("Registered %s (member #%d). You can now log in.", member.FullName, member.ID)
			return nil
		},
	}
	registrationFlags(cmd, &request.Username, &request.Password, &request.FullName, &request.Email)

	return cmd
}

func (a *App) setupAdminCommand() *cobra.Command {
	var request domain.AdminSetupRequest

	cmd := &cobra.Command{
		Use:   "setup-admin",
		Short: "Create the first administrator of a fresh installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.SetupAdmin(cmd.Context(), request); err != nil {
				return a.fail(err, "Admin setup failed")
			}
			a.notify.Success("Admin user created successfully!")
			return nil
		},
	}
	registrationFlags(cmd, &request.Username, &request.Password, &request.FullName, &request.Email)

	return cmd
}

func registrationFlags(cmd *cobra.Command, username, password, fullName, email *string) {
	cmd.Flags().StringVar(username, "username", "", "login name")
	cmd.Flags().StringVar(password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(fullName, "full-name", "", "full name")
	cmd.Flags().StringVar(email, "email", "", "email address")
	for _, name := range []string{"username", "password", "full-name", "email"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessions.Clear(cmd.Context()); err != nil {
				return err
			}
			a.notify.Success("Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.currentSession(); err != nil {
				return err
			}

			me, err := a.api.Me(cmd.Context())
			if err != nil {
				return a.fail(err, "Failed to fetch profile")
			}

			fmt.Fprintf(a.out, "%s (%s)\n", me.Username, me.Role)
			if me.Member != nil {
				fmt.Fprintf(a.out, "member #%d  %s <%s>\n", me.Member.ID, me.Member.FullName, me.Member.Email)
			}
			return nil
		},
	}
}

func (a *App) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no input")
	}
	return strings.TrimSpace(scanner.Text()), nil
}
