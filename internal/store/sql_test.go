package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-forecaster/internal/store"
	"github.com/OldStager01/energy-forecaster/pkg/database"
)

func TestSQLStore_SQLite(t *testing.T) {
	db, err := database.New(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "forecaster.db"),
	})
	require.NoError(t, err)

	require.NoError(t, database.NewMigrator(db).Run(context.Background()))

	s := store.NewSQLStore(db)
	defer s.Close()

	runStoreContract(t, s)
}

func TestSQLStore_SchemaVersionAndStats(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "forecaster.db"),
	})
	require.NoError(t, err)

	migrator := database.NewMigrator(db)
	assert.ErrorIs(t, migrator.Verify(ctx), database.ErrSchemaMissing)

	require.NoError(t, migrator.Run(ctx))
	require.NoError(t, migrator.Verify(ctx))

	s := store.NewSQLStore(db)
	defer s.Close()

	version, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^3\.\d+\.\d+`, version)

	require.NoError(t, s.Ping(ctx))
	assert.Equal(t, 1, s.Stats().MaxOpenConnections)
}
