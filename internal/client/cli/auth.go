package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/client/api"
	"github.com/spf13/cobra"
)

// promptEmail returns the flag value or asks for it.
func (a *App) promptEmail(email string) (string, error) {
	if email != "" {
		return email, nil
	}
	return GetSimpleText(a.in, "Enter email", a.errOut)
}

func (a *App) registerCmd() *cobra.Command {
	var email, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := a.promptEmail(email)
			if err != nil {
				return err
			}
			password, err := a.readSecret("Password")
			if err != nil {
				return err
			}
			confirm, err := a.readSecret("Repeat password")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}

			u, err := a.api.Register(cmd.Context(), api.RegisterRequest{
				Email:     email,
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Registered %s (id %s)\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := a.promptEmail(email)
			if err != nil {
				return err
			}
			password, err := a.readSecret("Password")
			if err != nil {
				return err
			}

			tok, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			err = SaveSession(a.config.TokenFile, &Session{
				Email:       email,
				AccessToken: tok.AccessToken,
				ExpiresAt:   tok.ExpiresAt,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Logged in as %s until %s\n", email, tok.ExpiresAt.Local().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ClearSession(a.config.TokenFile); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			u, err := a.api.Me(cmd.Context(), s.AccessToken)
			if err != nil {
				return err
			}

			name := u.Email
			if full := joinName(u.FirstName, u.LastName); full != "" {
				name = fmt.Sprintf("%s <%s>", full, u.Email)
			}
			fmt.Fprintf(a.out, "%s\nid: %s\nsince: %s\n", name, u.ID, u.CreatedAt.Local().Format(time.RFC3339))
			return nil
		},
	}
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
