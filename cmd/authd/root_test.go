// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "authd", cmd.Use)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.Contains(t, names, "status")
}

func TestRootCmd_Help(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "serve")
	assert.Contains(t, out.String(), "migrate")
}

func TestServeCmd_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"serve"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")
}

func TestMigrateUpCmd_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"migrate", "up"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")
}
