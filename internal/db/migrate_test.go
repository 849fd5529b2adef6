package db

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	upErr    error
	closeErr error
	closed   bool
}

func (f *fakeMigrator) Up() error { return f.upErr }

func (f *fakeMigrator) Close() (error, error) {
	f.closed = true
	return nil, f.closeErr
}

func engineFor(m *fakeMigrator) MigrationEngine {
	return func(string) (Migrator, error) { return m, nil }
}

func TestMigrateUp_NoChangeIsSuccess(t *testing.T) {
	m := &fakeMigrator{upErr: migrate.ErrNoChange}

	require.NoError(t, MigrateUp("postgres://ignored", engineFor(m)))
	assert.True(t, m.closed)
}

func TestMigrateUp_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	m := &fakeMigrator{upErr: boom}

	err := MigrateUp("postgres://ignored", engineFor(m))
	require.ErrorIs(t, err, boom)
	assert.True(t, m.closed)
}

func TestMigrateUp_CloseError(t *testing.T) {
	closeErr := errors.New("close failed")
	m := &fakeMigrator{closeErr: closeErr}

	err := MigrateUp("postgres://ignored", engineFor(m))
	require.ErrorIs(t, err, closeErr)
}

func TestMigrateUp_EngineError(t *testing.T) {
	engineErr := errors.New("no db")

	err := MigrateUp("postgres://ignored", func(string) (Migrator, error) { return nil, engineErr })
	require.ErrorIs(t, err, engineErr)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
