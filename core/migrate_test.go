package core

import (
	"errors"
	"io/fs"
	"regexp"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMigrate struct {
	upErr          error
	downErr        error
	versionVal     uint
	dirty          bool
	versionErr     error
	closeSourceErr error
	closeDBErr     error
}

func (m *mockMigrate) Up() error                    { return m.upErr }
func (m *mockMigrate) Down() error                  { return m.downErr }
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDBErr }

func TestMigrator_Up(t *testing.T) {
	require.NoError(t, (&Migrator{m: &mockMigrate{}}).Up())
	require.NoError(t, (&Migrator{m: &mockMigrate{upErr: migrate.ErrNoChange}}).Up(), "no change is success")
	assert.Error(t, (&Migrator{m: &mockMigrate{upErr: errors.New("boom")}}).Up())
}

func TestMigrator_Down(t *testing.T) {
	require.NoError(t, (&Migrator{m: &mockMigrate{downErr: migrate.ErrNoChange}}).Down())
	assert.Error(t, (&Migrator{m: &mockMigrate{downErr: errors.New("boom")}}).Down())
}

func TestMigrator_Version(t *testing.T) {
	v, dirty, err := (&Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}).Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	v, dirty, err = (&Migrator{m: &mockMigrate{versionVal: 1, dirty: true}}).Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.True(t, dirty)

	_, _, err = (&Migrator{m: &mockMigrate{versionErr: errors.New("boom")}}).Version()
	assert.Error(t, err)
}

func TestMigrator_Close(t *testing.T) {
	require.NoError(t, (&Migrator{m: &mockMigrate{}}).Close())
	assert.Error(t, (&Migrator{m: &mockMigrate{closeDBErr: errors.New("db")}}).Close())
	assert.Error(t, (&Migrator{m: &mockMigrate{closeSourceErr: errors.New("src")}}).Close())
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db", migrateURL("postgres://u:p@h:5432/db"))
	assert.Equal(t, "pgx5://u:p@h:5432/db", migrateURL("postgresql://u:p@h:5432/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/db")
	assert.Error(t, err)
}

func TestMigrationsFS_Pairs(t *testing.T) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	pattern := regexp.MustCompile(`^migrations/\d{6}_[a-z0-9_]+\.(up|down)\.sql$`)
	ups, downs := 0, 0
	for _, n := range names {
		m := pattern.FindStringSubmatch(n)
		require.NotNil(t, m, "unexpected migration file %s", n)
		if m[1] == "up" {
			ups++
		} else {
			downs++
		}
	}
	assert.Equal(t, ups, downs, "every up migration has a down")

	up, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CONSTRAINT users_email_key UNIQUE (email)")
	assert.Contains(t, string(up), "CONSTRAINT users_username_key UNIQUE (username)")
}
