package commands

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/openhire/openhire/pkg/config"
	"github.com/openhire/openhire/pkg/logx"
)

func newBackupCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Dump the database with pg_dump",
		Long: `Backup runs pg_dump against the configured database in custom
format, suitable for pg_restore. Requires pg_dump on PATH.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			if output == "" {
				output = fmt.Sprintf("%s-%s.dump", cfg.Database.Name,
					time.Now().Format("20060102-150405"))
			}

			dump := exec.CommandContext(cmd.Context(), "pg_dump",
				"--format=custom",
				"--no-owner",
				"--host", cfg.Database.Host,
				"--port", fmt.Sprintf("%d", cfg.Database.Port),
				"--username", cfg.Database.User,
				"--dbname", cfg.Database.Name,
				"--file", output,
			)
			dump.Env = append(os.Environ(), "PGPASSWORD="+cfg.Database.Password)
			dump.Stdout = cmd.OutOrStdout()
			dump.Stderr = cmd.ErrOrStderr()

			logx.Infof("backing up %s to %s", cfg.Database.Name, output)
			if err := dump.Run(); err != nil {
				return fmt.Errorf("pg_dump: %w", err)
			}
			cmd.Printf("backup written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <dbname>-<timestamp>.dump)")
	return cmd
}
