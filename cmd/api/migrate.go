package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Afterburn3/StorySpotlight-Backend/core"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply all pending migrations against DATABASE_URL.
With --down every migration is rolled back, dropping all tables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := core.Load()
			if err != nil {
				return err
			}
			if down {
				return rollbackMigrations(cmd, cfg.DatabaseURL)
			}
			if err := applyMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back every migration")
	return cmd
}

func applyMigrations(databaseURL string) (err error) {
	m, err := core.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		return oops.Code("MIGRATION_DIRTY").With("version", version).Errorf("database is dirty at version %d", version)
	}
	return nil
}

func rollbackMigrations(cmd *cobra.Command, databaseURL string) (err error) {
	m, err := core.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := m.Down(); err != nil {
		return err
	}
	cmd.Println("Migrations rolled back")
	return nil
}
