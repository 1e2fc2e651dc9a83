package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"weather-archive/internal/models"
)

const pgColumns = `id, observation_date, EXTRACT(EPOCH FROM observation_time)::bigint,
	temperature, relative_humidity, dew_point, atmospheric_pressure, wind_direction,
	wind_speed, cloudiness, cloud_base_height, visibility, weather_phenomena`

// PgxPool is the subset of *pgxpool.Pool used by PostgresRepository.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type PostgresRepository struct {
	pool PgxPool
	loc  *time.Location
}

// NewPostgresRepository returns a repository whose month filters and returned
// dates use loc.
func NewPostgresRepository(pool PgxPool, loc *time.Location) *PostgresRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PostgresRepository{pool: pool, loc: loc}
}

// OpenPostgres creates a connection pool and verifies connectivity.
func OpenPostgres(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, storageErr("parse url", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, storageErr("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storageErr("ping", err)
	}
	return pool, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.WeatherRecord) error {
	const query = `
		INSERT INTO weather_records (observation_date, observation_time, temperature, relative_humidity,
			dew_point, atmospheric_pressure, wind_direction, wind_speed, cloudiness, cloud_base_height,
			visibility, weather_phenomena)
		VALUES ($1, $2::bigint * INTERVAL '1 second', $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		utcDate(rec.Date),
		durationSeconds(rec.Time),
		rec.Temperature,
		rec.RelativeHumidity,
		rec.DewPoint,
		rec.AtmosphericPressure,
		rec.WindDirection,
		rec.WindSpeed,
		rec.Cloudiness,
		rec.CloudBaseHeight,
		rec.Visibility,
		rec.WeatherPhenomena,
	).Scan(&id)
	if err != nil {
		return storageErr("create", err)
	}
	rec.ID = id
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.WeatherRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pgColumns+` FROM weather_records WHERE id = $1`, id)
	rec, err := scanPgRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storageErr("get", ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("get", err)
	}
	rec = rec.InLocation(r.loc)
	return &rec, nil
}

func (r *PostgresRepository) Select(ctx context.Context) ([]models.WeatherRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+pgColumns+` FROM weather_records ORDER BY id`)
	if err != nil {
		return nil, storageErr("select", err)
	}
	records, err := r.collect(rows)
	if err != nil {
		return nil, storageErr("select", err)
	}
	return records, nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec *models.WeatherRecord) error {
	const query = `
		UPDATE weather_records SET
			observation_date = $2,
			observation_time = $3::bigint * INTERVAL '1 second',
			temperature = $4,
			relative_humidity = $5,
			dew_point = $6,
			atmospheric_pressure = $7,
			wind_direction = $8,
			wind_speed = $9,
			cloudiness = $10,
			cloud_base_height = $11,
			visibility = $12,
			weather_phenomena = $13
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		rec.ID,
		utcDate(rec.Date),
		durationSeconds(rec.Time),
		rec.Temperature,
		rec.RelativeHumidity,
		rec.DewPoint,
		rec.AtmosphericPressure,
		rec.WindDirection,
		rec.WindSpeed,
		rec.Cloudiness,
		rec.CloudBaseHeight,
		rec.Visibility,
		rec.WeatherPhenomena,
	)
	if err != nil {
		return storageErr("update", err)
	}
	if tag.RowsAffected() == 0 {
		return storageErr("update", ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM weather_records WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return storageErr("delete", ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) FilterByYearAndMonth(ctx context.Context, year, month, page, pageSize int) ([]models.WeatherRecord, int, error) {
	from, to := models.MonthRange(year, month, r.loc)

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM weather_records WHERE observation_date >= $1 AND observation_date < $2`,
		from.UTC(), to.UTC(),
	).Scan(&total)
	if err != nil {
		return nil, 0, storageErr("count", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+pgColumns+` FROM weather_records
		WHERE observation_date >= $1 AND observation_date < $2
		ORDER BY id LIMIT $3 OFFSET $4`,
		from.UTC(), to.UTC(), pageSize, offset(page, pageSize),
	)
	if err != nil {
		return nil, 0, storageErr("filter", err)
	}
	records, err := r.collect(rows)
	if err != nil {
		return nil, 0, storageErr("filter", err)
	}
	return records, int(total), nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return storageErr("ping", r.pool.Ping(ctx))
}

func (r *PostgresRepository) collect(rows pgx.Rows) ([]models.WeatherRecord, error) {
	defer rows.Close()
	records := []models.WeatherRecord{}
	for rows.Next() {
		rec, err := scanPgRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec.InLocation(r.loc))
	}
	return records, rows.Err()
}

func scanPgRecord(row pgx.Row) (models.WeatherRecord, error) {
	var rec models.WeatherRecord
	var seconds *int64
	err := row.Scan(
		&rec.ID,
		&rec.Date,
		&seconds,
		&rec.Temperature,
		&rec.RelativeHumidity,
		&rec.DewPoint,
		&rec.AtmosphericPressure,
		&rec.WindDirection,
		&rec.WindSpeed,
		&rec.Cloudiness,
		&rec.CloudBaseHeight,
		&rec.Visibility,
		&rec.WeatherPhenomena,
	)
	rec.Time = secondsDuration(seconds)
	return rec, err
}

func utcDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
