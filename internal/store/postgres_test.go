//go:build database

package store_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/OldStager01/energy-forecaster/internal/store"
	"github.com/OldStager01/energy-forecaster/pkg/database"
)

func TestSQLStore_Postgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "forecaster",
			"POSTGRES_PASSWORD": "secret",
			"POSTGRES_DB":       "forecaster",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pg.Terminate(ctx) }()

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	db, err := database.New(database.Config{
		Driver:         database.DriverPostgres,
		Host:           host,
		Port:           portNum,
		Name:           "forecaster",
		User:           "forecaster",
		Password:       "secret",
		MaxConnections: 5,
	})
	require.NoError(t, err)

	require.NoError(t, database.NewMigrator(db).Run(ctx))

	s := store.NewSQLStore(db)
	defer s.Close()

	runStoreContract(t, s)
}
