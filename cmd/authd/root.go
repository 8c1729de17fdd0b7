// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/skillbridge/authd/internal/config"
)

// NewRootCmd creates the root command for the authd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authd",
		Short: "authd - credential and session service for the SkillBridge marketplace",
		Long: `authd manages accounts, credentials, and sessions for the SkillBridge
freelance marketplace: registration for clients and freelancers, login,
logout, and session validation over a single HTTP endpoint.`,
	}

	cmd.PersistentFlags().String("config", "", "config file path (default: "+config.DefaultPath()+")")
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	cmd.PersistentFlags().String("log-format", config.Default().LogFormat, "log format (json or text)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// loadConfig resolves the config file path from flags and loads the full
// configuration with flag overrides applied.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path, cmd.Flags())
}
