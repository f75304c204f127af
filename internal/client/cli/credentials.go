package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/client/api"
	"github.com/spf13/cobra"
)

func (a *App) addCmd() *cobra.Command {
	var label, site string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a new credential",
		Long: `Store a new credential. The secret is read without echo, or from
standard input when it is not a terminal.

Examples:
  vaultctl add --label mail --site mail.example.com
  printf 'hunter2\n' | vaultctl add --label mail`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			secret, err := a.readSecret("Secret")
			if err != nil {
				return err
			}

			c, err := a.api.AddCredential(cmd.Context(), s.AccessToken, api.CredentialInput{
				Label:  label,
				Site:   site,
				Secret: secret,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "credential label")
	cmd.Flags().StringVar(&site, "site", "", "site or service the credential belongs to")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

func (a *App) listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored credentials without their secrets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			items, err := a.api.ListCredentials(cmd.Context(), s.AccessToken)
			if err != nil {
				return err
			}

			if asJSON {
				if items == nil {
					items = []api.Credential{}
				}
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			if len(items) == 0 {
				fmt.Fprintln(a.errOut, "No credentials stored")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLABEL\tSITE\tUPDATED")
			for _, c := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Label, c.Site, c.UpdatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	return cmd
}

func (a *App) getCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a credential's secret",
		Long: `Print the decrypted secret of a credential to stdout, without a
trailing newline, so the output can be piped.

Examples:
  vaultctl get 0b6f6d0e-6f0c-4c39-a2b5-0c2f8d2b0c61
  vaultctl get 0b6f6d0e-6f0c-4c39-a2b5-0c2f8d2b0c61 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			c, err := a.api.GetCredential(cmd.Context(), s.AccessToken, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(c)
			}
			fmt.Fprint(a.out, c.Secret)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	return cmd
}

func (a *App) updateCmd() *cobra.Command {
	var label, site string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a credential's secret and optionally its label or site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}

			current, err := a.api.GetCredential(cmd.Context(), s.AccessToken, args[0])
			if err != nil {
				return err
			}
			in := api.CredentialInput{Label: current.Label, Site: current.Site}
			if cmd.Flags().Changed("label") {
				in.Label = label
			}
			if cmd.Flags().Changed("site") {
				in.Site = site
			}

			in.Secret, err = a.readSecret("New secret")
			if err != nil {
				return err
			}

			if _, err := a.api.UpdateCredential(cmd.Context(), s.AccessToken, args[0], in); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Updated", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "new label")
	cmd.Flags().StringVar(&site, "site", "", "new site")
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a credential",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			if err := a.api.DeleteCredential(cmd.Context(), s.AccessToken, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Deleted", args[0])
			return nil
		},
	}
}
