// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/skillbridge/authd/internal/store"
)

// newMigrateCmd creates the migrate subcommand with its up/down/version
// actions.
func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  `Apply, roll back, or inspect schema migrations on the PostgreSQL database.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := migrateUp(cfg.DatabaseURL); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations (destructive)",
		Long:  `Roll back every migration, dropping all auth tables and their data.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			m, err := store.NewMigrator(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer closeMigrator(m)

			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Migrations rolled back")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			m, err := store.NewMigrator(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer closeMigrator(m)

			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if version == 0 {
				cmd.Println("No migrations applied")
				return nil
			}
			if dirty {
				cmd.Printf("Version: %d (dirty)\n", version)
				return nil
			}
			cmd.Printf("Version: %d\n", version)
			return nil
		},
	})

	return cmd
}

func migrateUp(databaseURL string) error {
	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(m)
	return m.Up()
}

func closeMigrator(m *store.Migrator) {
	if err := m.Close(); err != nil {
		slog.Warn("error closing migrator", "error", err)
	}
}
