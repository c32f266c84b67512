// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package store

import (
	"errors"
	"io/fs"
	"regexp"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnotes/quill/pkg/errutil"
)

// fakeMigrate records calls and returns scripted results.
type fakeMigrate struct {
	upErr      error
	downErr    error
	stepsErr   error
	stepsGot   int
	version    uint
	dirty      bool
	versionErr error
	forceErr   error
	forceGot   int
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Steps(n int) error {
	f.stepsGot = n
	return f.stepsErr
}
func (f *fakeMigrate) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Force(v int) error {
	f.forceGot = v
	return f.forceErr
}
func (f *fakeMigrate) Close() (error, error) { return nil, nil }

func TestMigrator_Up(t *testing.T) {
	tests := []struct {
		name    string
		upErr   error
		wantErr bool
	}{
		{"applies pending migrations", nil, false},
		{"no change is not an error", migrate.ErrNoChange, false},
		{"real failure propagates", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &fakeMigrate{upErr: tt.upErr}}
			err := m.Up()
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMigrator_Down_NoChange(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{downErr: migrate.ErrNoChange}}
	require.NoError(t, m.Down())
}

func TestMigrator_Steps(t *testing.T) {
	fake := &fakeMigrate{}
	m := &Migrator{m: fake}
	require.NoError(t, m.Steps(-2))
	assert.Equal(t, -2, fake.stepsGot)
}

func TestMigrator_Version_NilVersionIsClean(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestMigrator_Version_Dirty(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{version: 1, dirty: true}}
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.True(t, dirty)
}

func TestMigrator_Force_RejectsNegative(t *testing.T) {
	fake := &fakeMigrate{}
	m := &Migrator{m: fake}
	err := m.Force(-1)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INVALID_VERSION")
	assert.Zero(t, fake.forceGot)
}

// The embedded migrations must pair up/down files and follow the
// NNNNNN_name.(up|down).sql naming golang-migrate requires.
func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}_[a-z0-9_]+\.(up|down)\.sql$`)

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		require.True(t, pattern.MatchString(name), "unexpected migration file %q", name)
		base := pattern.FindStringSubmatch(name)[1]
		if base == "up" {
			ups[name[:len(name)-len(".up.sql")]] = true
		} else {
			downs[name[:len(name)-len(".down.sql")]] = true
		}
	}
	assert.Equal(t, ups, downs, "every up migration needs a matching down migration")
}
