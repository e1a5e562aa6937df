package commands

import (
	"github.com/spf13/cobra"

	"github.com/openhire/openhire/migrations"
	"github.com/openhire/openhire/pkg/config"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.Load()
				if err := migrations.Up(cfg.Database.URL()); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.Load()
				if err := migrations.Down(cfg.Database.URL()); err != nil {
					return err
				}
				cmd.Println("rolled back one migration")
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.Load()
				version, dirty, err := migrations.Version(cfg.Database.URL())
				if err != nil {
					return err
				}
				if version == 0 {
					cmd.Println("no migrations applied")
					return nil
				}
				if dirty {
					cmd.Printf("version %d (dirty)\n", version)
					return nil
				}
				cmd.Printf("version %d\n", version)
				return nil
			},
		},
	)
	return cmd
}
