//go:build integration

package repositories

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"weather-archive/pkg/logger"
)

func TestPostgresRepository_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("weather"),
		postgres.WithUsername("weather"),
		postgres.WithPassword("weather"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	l := logger.New(logger.Options{AppName: "test", Level: "error"}, io.Discard)
	require.NoError(t, MigratePostgres(dsn, l))

	pool, err := OpenPostgres(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewPostgresRepository(pool, moscow)

	for day := 1; day <= 15; day++ {
		rec := sampleRecord(2024, 3, day, float64(day))
		require.NoError(t, repo.Create(ctx, &rec))
	}
	outside := sampleRecord(2024, 4, 1, 99)
	require.NoError(t, repo.Create(ctx, &outside))

	records, total, err := repo.FilterByYearAndMonth(ctx, 2024, 3, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, records, 5)
	assert.Equal(t, 11.0, *records[0].Temperature)
	assert.Equal(t, 15*time.Hour, *records[0].Time)
	assert.Equal(t, "2024-03-11T00:00:00+03:00", records[0].Date.Format(time.RFC3339))

	got, err := repo.Get(ctx, outside.ID)
	require.NoError(t, err)
	assert.Equal(t, "снег", *got.WeatherPhenomena)

	require.NoError(t, repo.Delete(ctx, outside.ID))
	_, err = repo.Get(ctx, outside.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
