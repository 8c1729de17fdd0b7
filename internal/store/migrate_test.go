// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMigrate implements migrateIface for unit tests.
type fakeMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	srcErr     error
	dbErr      error
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}
func (f *fakeMigrate) Close() (error, error) { return f.srcErr, f.dbErr }

func TestMigratorUp(t *testing.T) {
	t.Run("succeeds", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		assert.NoError(t, m.Up())
	})

	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
		assert.NoError(t, m.Up())
	})

	t.Run("failure is wrapped", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: errors.New("boom")}}
		err := m.Up()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestMigratorDown(t *testing.T) {
	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{downErr: migrate.ErrNoChange}}
		assert.NoError(t, m.Down())
	})

	t.Run("failure is wrapped", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{downErr: errors.New("boom")}}
		assert.Error(t, m.Down())
	})
}

func TestMigratorVersion(t *testing.T) {
	t.Run("returns current version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 1}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(1), version)
		assert.False(t, dirty)
	})

	t.Run("nil version means zero", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("dirty state is reported", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 1, dirty: true}}
		_, dirty, err := m.Version()
		require.NoError(t, err)
		assert.True(t, dirty)
	})
}

func TestMigratorClose(t *testing.T) {
	t.Run("succeeds", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		assert.NoError(t, m.Close())
	})

	t.Run("combines source and database errors", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{srcErr: errors.New("src"), dbErr: errors.New("db")}}
		err := m.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "src")
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("reports source error alone", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{srcErr: errors.New("src")}}
		assert.Error(t, m.Close())
	})
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	// Every up migration has a matching down migration.
	files := make(map[string]bool, len(entries))
	for _, e := range entries {
		files[e.Name()] = true
	}
	for name := range files {
		if after, ok := cutSuffix(name, ".up.sql"); ok {
			assert.True(t, files[after+".down.sql"], "missing down migration for %s", name)
		}
	}
}

func cutSuffix(s, suffix string) (string, bool) {
	if len(s) < len(suffix) || s[len(s)-len(suffix):] != suffix {
		return s, false
	}
	return s[:len(s)-len(suffix)], true
}
