package main

import (
	"strconv"
	"strings"

	"taskboard/config"
	"taskboard/internal/errors"
	"taskboard/internal/infra/persistence/migration"

	"github.com/spf13/cobra"
)

// databaseURL overrides migration.databaseURL from the config file.
var databaseURL string

// NewRootCmd creates the root command for the migration CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the taskboard database schema",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (defaults to migration.databaseURL)")

	cmd.AddCommand(NewUpCmd())
	cmd.AddCommand(NewDownCmd())
	cmd.AddCommand(NewStepsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// NewUpCmd creates the up subcommand.
func NewUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *migration.Migrator) error {
				cmd.Println("Applying migrations...")

				return m.Up()
			})
		},
	}
}

// NewDownCmd creates the down subcommand.
func NewDownCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errors.New("down drops every table; rerun with --yes to confirm")
			}

			return withMigrator(cmd, func(m *migration.Migrator) error {
				cmd.Println("Rolling back migrations...")

				return m.Down()
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm dropping all tables")

	return cmd
}

// NewStepsCmd creates the steps subcommand.
func NewStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations, or roll back when N is negative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseSteps(args[0])
			if err != nil {
				return err
			}

			return withMigrator(cmd, func(m *migration.Migrator) error {
				cmd.Printf("Migrating %d steps...\n", n)

				return m.Steps(n)
			})
		},
	}
}

// NewVersionCmd creates the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				cmd.Printf("version %d (dirty: %t)\n", version, dirty)

				return nil
			})
		},
	}
}

func parseSteps(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid step count %q", raw)
	}
	if n == 0 {
		return 0, errors.New("step count must not be zero")
	}

	return n, nil
}

func resolveDatabaseURL() (string, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return databaseURL, nil
	}

	cfg, err := config.New()
	if err != nil {
		return "", errors.Wrap(err, "load config")
	}
	if strings.TrimSpace(cfg.Migration.DatabaseURL) == "" {
		return "", errors.New("no database url: pass --database-url or set MIGRATION_DATABASEURL")
	}

	return cfg.Migration.DatabaseURL, nil
}

func withMigrator(cmd *cobra.Command, fn func(m *migration.Migrator) error) (err error) {
	dbURL, err := resolveDatabaseURL()
	if err != nil {
		return err
	}

	m, err := migration.NewMigrator(dbURL)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, m.Close())
	}()

	if err := fn(m); err != nil {
		return err
	}
	cmd.Println("Done")

	return nil
}
