package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/talatrivia-api/pkg/database"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.close()
			return database.MigrateDB(env.db, env.cfg.Database.MigrationsPath, env.log)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.close()
			return database.RollbackDB(env.db, env.cfg.Database.MigrationsPath, steps, env.log)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version and clear the dirty flag after a failed migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			env, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.close()
			return database.ForceVersion(env.db, env.cfg.Database.MigrationsPath, version, env.log)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.close()
			version, dirty, err := database.SchemaVersion(env.db, env.cfg.Database.MigrationsPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
			return nil
		},
	})
	return cmd
}
