// Package commands wires the openhire CLI: the API server plus the
// operational commands around it (migrations, readiness checkup, backup).
package commands

import (
	"github.com/spf13/cobra"

	"github.com/openhire/openhire/pkg/config"
)

// NewRootCommand builds the openhire command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "openhire",
		Short: "OpenHire job board API",
		Long: `OpenHire is a job board backend: accounts and authentication,
job postings with categories, applications with resume uploads, and
email notifications processed by a background worker.

Configuration is read from the environment (and an optional .env file).`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCheckupCommand(),
		newBackupCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			cmd.Printf("%s %s\n", cfg.App.Name, cfg.App.Version)
			return nil
		},
	}
}
