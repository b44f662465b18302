package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/songcart/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase writes a config file from the template when none exists, then initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); os.IsNotExist(err) {
			r.logger.Info("config file not found, creating from template", "path", r.configPath)
			if err := shared.CreateConfigFile(r.configPath); err != nil {
				r.logger.Warn("failed to create config file, using defaults", "error", err)
			} else if err := r.loadConfig(); err != nil {
				return err
			}
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if _, err := r.connect(); err != nil {
		return err
	}

	version, err := shared.MigrationVersion(r.db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s (schema version %d)\n", r.config.Database.Path, version)
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	version, err := shared.MigrationVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	return r.writePlain("✓ Rolled back to schema version %d\n", version)
}

// SetupStatus reports the schema version and whether the store answers.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.connect()
	if err != nil {
		return err
	}

	version, err := shared.MigrationVersion(r.db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	if err := engine.Ping(ctx); err != nil {
		return err
	}

	r.writePlainHeader("songcart status")
	r.writePlain("Database: %s\n", r.config.Database.Path)
	r.writePlain("Schema version: %d\n", version)
	r.writePlain("Default genre: %s\n", r.config.Catalog.DefaultGenre)
	return nil
}
