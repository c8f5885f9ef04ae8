// Package cli implements boctl, the back-office command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kiwari-pos/backoffice/internal/client"
)

type globalFlags struct {
	configPath string
	server     string
	token      string
	branchID   string
}

// app is what every subcommand needs after the config has been resolved.
type app struct {
	flags      *globalFlags
	cfg        *Config
	configPath string
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.Server, a.cfg.Token)
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

// NewRootCmd creates the root boctl command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "boctl",
		Short:         "Command-line client for the Kiwari back office",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				p, err := DefaultConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			cfg, err := LoadConfig(path)
			if err != nil {
				return err
			}
			if flags.server != "" {
				cfg.Server = flags.server
			}
			if flags.token != "" {
				cfg.Token = flags.token
			}
			if flags.branchID != "" {
				cfg.BranchID = flags.branchID
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, &app{flags: flags, cfg: cfg, configPath: path}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.config/boctl/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.server, "server", "", "API server URL")
	cmd.PersistentFlags().StringVar(&flags.token, "token", "", "Access token (overrides the config file)")
	cmd.PersistentFlags().StringVarP(&flags.branchID, "branch", "b", "", "Branch ID for branch-scoped resources")

	cmd.AddCommand(newLoginCmd(), newListCmd())
	return cmd
}

// Execute runs boctl and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		cmd.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
