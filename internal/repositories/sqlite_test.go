package repositories

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-archive/internal/models"
	"weather-archive/pkg/logger"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l := logger.New(logger.Options{AppName: "test", Level: "error"}, io.Discard)
	require.NoError(t, MigrateSQLite(db, l))
	// A second run finds nothing to apply.
	require.NoError(t, MigrateSQLite(db, l))

	return NewSQLiteRepository(db, moscow)
}

func TestSQLiteRepository_CRUD(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	rec := sampleRecord(2023, 1, 15, -12.4)
	require.NoError(t, repo.Create(ctx, &rec))
	require.NotZero(t, rec.ID)

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(*rec.Date))
	assert.Equal(t, moscow, got.Date.Location())
	assert.Equal(t, 15*time.Hour, *got.Time)
	assert.Equal(t, -12.4, *got.Temperature)
	assert.Equal(t, "снег", *got.WeatherPhenomena)

	got.Temperature = ptr(-20.0)
	got.WeatherPhenomena = nil
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, -20.0, *updated.Temperature)
	assert.Nil(t, updated.WeatherPhenomena)

	all, err := repo.Select(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, rec.ID))
	_, err = repo.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &models.WeatherRecord{ID: 999}), ErrNotFound)
}

func TestSQLiteRepository_AbsentFields(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	rec := models.WeatherRecord{}
	require.NoError(t, repo.Create(ctx, &rec))

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Date)
	assert.Nil(t, got.Time)
	assert.Nil(t, got.Temperature)
	assert.Nil(t, got.WindDirection)
}

func TestSQLiteRepository_FilterByYearAndMonth(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	for day := 1; day <= 12; day++ {
		rec := sampleRecord(2023, 3, day, float64(day))
		require.NoError(t, repo.Create(ctx, &rec))
	}
	for _, rec := range []models.WeatherRecord{
		sampleRecord(2023, 2, 28, 100),
		sampleRecord(2023, 4, 1, 200),
		{Temperature: ptr(300.0)},
	} {
		require.NoError(t, repo.Create(ctx, &rec))
	}

	records, total, err := repo.FilterByYearAndMonth(ctx, 2023, 3, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, records, 5)
	assert.Equal(t, 6.0, *records[0].Temperature)
	assert.Equal(t, 10.0, *records[4].Temperature)
	assert.Equal(t, "2023-03-06T00:00:00+03:00", records[0].Date.Format(time.RFC3339))

	records, total, err = repo.FilterByYearAndMonth(ctx, 2023, 3, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Len(t, records, 2)

	records, total, err = repo.FilterByYearAndMonth(ctx, 2023, 5, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSQLiteRepository_Ping(t *testing.T) {
	repo := newTestSQLite(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestMigrateSQLite_RecoversDirtyState(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()
	l := logger.New(logger.Options{AppName: "test", Level: "error"}, io.Discard)

	// A migration that failed halfway leaves version 1 marked dirty.
	_, err := repo.db.ExecContext(ctx, `UPDATE schema_migrations SET dirty = 1`)
	require.NoError(t, err)

	require.NoError(t, MigrateSQLite(repo.db, l))

	var version int
	var dirty bool
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations`).Scan(&version, &dirty))
	assert.Equal(t, 1, version)
	assert.False(t, dirty)

	rec := sampleRecord(2023, 3, 1, 4.2)
	require.NoError(t, repo.Create(ctx, &rec))
	assert.NotZero(t, rec.ID)
}

func newMockSQLite(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db, moscow), mock
}

func TestSQLiteRepository_StorageErrors(t *testing.T) {
	ctx := context.Background()
	diskErr := errors.New("disk I/O error")

	t.Run("create", func(t *testing.T) {
		repo, mock := newMockSQLite(t)
		mock.ExpectExec("INSERT INTO weather_records").WillReturnError(diskErr)

		rec := sampleRecord(2023, 1, 1, 1)
		err := repo.Create(ctx, &rec)

		var serr *StorageError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "create", serr.Op)
		assert.ErrorIs(t, err, diskErr)
		assert.Zero(t, rec.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count", func(t *testing.T) {
		repo, mock := newMockSQLite(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM weather_records`).WillReturnError(diskErr)

		_, _, err := repo.FilterByYearAndMonth(ctx, 2023, 1, 1, 10)

		var serr *StorageError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "count", serr.Op)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filter", func(t *testing.T) {
		repo, mock := newMockSQLite(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM weather_records`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`SELECT id, observation_date`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), int64(10), int64(20)).
			WillReturnError(diskErr)

		_, _, err := repo.FilterByYearAndMonth(ctx, 2023, 1, 3, 10)

		var serr *StorageError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "filter", serr.Op)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt date", func(t *testing.T) {
		repo, mock := newMockSQLite(t)
		columns := []string{"id", "observation_date", "observation_time", "temperature", "relative_humidity",
			"dew_point", "atmospheric_pressure", "wind_direction", "wind_speed", "cloudiness",
			"cloud_base_height", "visibility", "weather_phenomena"}
		mock.ExpectQuery(`SELECT id, observation_date`).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(1, "15/01/2023", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))

		_, err := repo.Select(ctx)

		var serr *StorageError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "select", serr.Op)
	})

	t.Run("get missing", func(t *testing.T) {
		repo, mock := newMockSQLite(t)
		mock.ExpectQuery(`SELECT id, observation_date`).WithArgs(int64(5)).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, 5)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}
