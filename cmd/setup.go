package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/shared"
)

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the embedded template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	applied, err := shared.Migrate(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, m := range applied {
		r.writePlain("applied %04d_%s\n", m.Version, m.Name)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("Database ready at %s (%d new migrations)\n", config.Database.Path, len(applied))
}

// SetupStatus prints every migration and whether it has been applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return err
	}

	for _, s := range states {
		status := "pending"
		if s.Applied {
			status = "applied " + s.AppliedAt.Format(time.RFC3339)
		}
		r.writePlain("%04d_%-24s %s\n", s.Version, s.Name, status)
	}
	return nil
}

// SetupRollback reverts the most recent migration, or with --to every migration newer than
// the given version.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var reverted []shared.Migration
	if cmd.IsSet("to") {
		reverted, err = shared.RollbackTo(db, int(cmd.Int("to")))
	} else {
		var m shared.Migration
		if m, err = shared.RollbackMigration(db); err == nil {
			reverted = append(reverted, m)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	for _, m := range reverted {
		r.logger.Info("rolled back migration", "version", m.Version, "name", m.Name)
		r.writePlain("reverted %04d_%s\n", m.Version, m.Name)
	}
	return nil
}

// openDatabase opens the configured database with migrations applied.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", config.Database.Path, err)
	}
	return db, nil
}
