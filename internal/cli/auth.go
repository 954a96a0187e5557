package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/taskflow/internal/gateway"
	"github.com/BuzzLyutic/taskflow/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var creds session.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the TaskFlow API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.auth.Login(cmd.Context(), creds)
			if err != nil {
				return fmt.Errorf("login failed: %s", gateway.Message(err))
			}
			if err := a.session.Save(); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
			fmt.Fprintf(a.out, "✅ Logged in as %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var req session.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.auth.Signup(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("signup failed: %s", gateway.Message(err))
			}
			if err := a.session.Save(); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
			fmt.Fprintf(a.out, "✅ Welcome, %s! You are logged in.\n", u.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (at least 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.session.Active() {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout failed: %s", gateway.Message(err))
			}
			fmt.Fprintln(a.out, "👋 Logged out.")
			return nil
		},
	}
}
