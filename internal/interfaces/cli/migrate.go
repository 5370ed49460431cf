package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
)

// schemaMigrator is the subset of postgres.Migrator used by the CLI.
type schemaMigrator interface {
	Up() error
	Down(steps int) error
	Status() (postgres.MigrationStatus, error)
	Force(version int) error
	Close() error
}

type migratorFactory func(cfg *config.Config) (schemaMigrator, error)

func openMigrator(cfg *config.Config) (schemaMigrator, error) {
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, err
	}
	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	m, err := postgres.NewMigrator(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return m, nil
}

func newMigrateCmd(opts *RootOptions, open migratorFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	// run opens a migrator from the configuration and always closes it.
	run := func(fn func(cmd *cobra.Command, m schemaMigrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			m, err := open(cfg)
			if err != nil {
				return fmt.Errorf("open migrator: %w", err)
			}
			defer m.Close()
			return fn(cmd, m)
		}
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, m schemaMigrator) error {
			if err := m.Down(steps); err != nil {
				return err
			}
			return printStatus(cmd, opts, m)
		}),
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	var version int
	force := &cobra.Command{
		Use:   "force VERSION",
		Short: "Record VERSION as applied without running it",
		Long:  "Set the schema version and clear the dirty flag after a failed migration was repaired by hand.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 0 {
				return fmt.Errorf("invalid version %q", args[0])
			}
			version = v
			return nil
		},
		RunE: run(func(cmd *cobra.Command, m schemaMigrator) error {
			if err := m.Force(version); err != nil {
				return err
			}
			return printStatus(cmd, opts, m)
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, m schemaMigrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printStatus(cmd, opts, m)
			}),
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied schema version",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, m schemaMigrator) error {
				return printStatus(cmd, opts, m)
			}),
		},
		force,
	)
	return cmd
}

func printStatus(cmd *cobra.Command, opts *RootOptions, m schemaMigrator) error {
	st, err := m.Status()
	if err != nil {
		return err
	}
	if opts.OutputFormat != FormatText {
		return writeStructured(cmd.OutOrStdout(), opts.OutputFormat, st)
	}
	state := "clean"
	if st.Dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", st.Version, state)
	return nil
}
