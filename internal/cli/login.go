package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if password == "" {
				password = os.Getenv("BOCTL_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or BOCTL_PASSWORD) are required")
			}

			tokens, err := a.client().Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			a.cfg.Token = tokens.AccessToken
			if a.flags.branchID == "" {
				a.cfg.BranchID = tokens.User.BranchID
			}
			if err := a.cfg.Save(a.configPath); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s), branch %s\n", tokens.User.Email, tokens.User.Role, a.cfg.BranchID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	return cmd
}
