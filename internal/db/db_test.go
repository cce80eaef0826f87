package db

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, migrate bool) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	var (
		d   *DB
		err error
	)
	if migrate {
		d, err = Open(path)
	} else {
		d, err = OpenDB(path)
	}
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func tableExists(t *testing.T, d *DB, name string) bool {
	t.Helper()
	var n int
	err := d.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

// TestPragmasApplied verifies that essential PRAGMAs are set on all databases
func TestPragmasApplied(t *testing.T) {
	d := openTemp(t, false)

	var journalMode string
	require.NoError(t, d.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, d.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)

	var synchronous int
	require.NoError(t, d.QueryRow("PRAGMA synchronous").Scan(&synchronous))
	assert.Equal(t, 1, synchronous, "NORMAL")

	var tempStore int
	require.NoError(t, d.QueryRow("PRAGMA temp_store").Scan(&tempStore))
	assert.Equal(t, 2, tempStore, "MEMORY")

	var foreignKeys int
	require.NoError(t, d.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestOpen_MigratesToLatest(t *testing.T) {
	d := openTemp(t, true)

	latest, err := LatestMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(3), latest)

	version, dirty, err := d.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.False(t, dirty)

	for _, table := range []string{"filter_runs", "filter_events", "filter_tower_words", "filter_projections"} {
		assert.True(t, tableExists(t, d, table), table)
	}

	// Running again is a no-op.
	require.NoError(t, d.MigrateUp())
}

func TestMigrateDownAndTo(t *testing.T) {
	d := openTemp(t, true)

	require.NoError(t, d.MigrateDown())
	version, _, err := d.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, tableExists(t, d, "filter_projections"))
	assert.True(t, tableExists(t, d, "filter_events"))

	require.NoError(t, d.MigrateTo(1))
	assert.False(t, tableExists(t, d, "filter_events"))
	assert.True(t, tableExists(t, d, "filter_runs"))

	require.NoError(t, d.MigrateTo(3))
	assert.True(t, tableExists(t, d, "filter_projections"))
}

func TestMigrateVersion_Fresh(t *testing.T) {
	d := openTemp(t, false)
	version, dirty, err := d.MigrateVersion()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestRunMigrateCommand(t *testing.T) {
	d := openTemp(t, false)

	var out bytes.Buffer
	require.NoError(t, RunMigrateCommand(&out, d, []string{"status"}))
	assert.Contains(t, out.String(), "Database is 3 version(s) behind")

	out.Reset()
	require.NoError(t, RunMigrateCommand(&out, d, []string{"up"}))
	assert.Contains(t, out.String(), "Current version: 3 (dirty: false)")

	out.Reset()
	require.NoError(t, RunMigrateCommand(&out, d, []string{"version", "2"}))
	assert.Contains(t, out.String(), "Current version: 2")

	out.Reset()
	require.NoError(t, RunMigrateCommand(&out, d, []string{"force", "3"}))
	assert.Contains(t, out.String(), "Current version: 3")

	out.Reset()
	require.NoError(t, RunMigrateCommand(&out, d, []string{"help"}))
	assert.Contains(t, out.String(), "Database Migration Commands")
}

func TestRunMigrateCommand_Usage(t *testing.T) {
	d := openTemp(t, false)
	var out bytes.Buffer

	for _, args := range [][]string{nil, {"sideways"}, {"version"}, {"force", "x"}, {"version", "-1"}} {
		err := RunMigrateCommand(&out, d, args)
		assert.True(t, errors.Is(err, ErrUsage), "args %v: %v", args, err)
	}
}
