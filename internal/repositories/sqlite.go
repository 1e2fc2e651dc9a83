package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"weather-archive/internal/models"
)

// Dates are stored as UTC RFC 3339 text so that lexical order matches time order.
const sqliteTimeLayout = time.RFC3339

const sqliteColumns = `id, observation_date, observation_time, temperature, relative_humidity,
	dew_point, atmospheric_pressure, wind_direction, wind_speed, cloudiness, cloud_base_height,
	visibility, weather_phenomena`

type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
}

func NewSQLiteRepository(db *sql.DB, loc *time.Location) *SQLiteRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &SQLiteRepository{db: db, loc: loc}
}

// OpenSQLite opens a file-backed database, creating its directory if needed.
func OpenSQLite(path string, maxOpenConns int) (*sql.DB, error) {
	dsn := path
	if !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		dsn = "file:" + path
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_busy_timeout=5000&_journal_mode=WAL"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageErr("open", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, storageErr("ping", err)
	}
	return db, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, rec *models.WeatherRecord) error {
	const query = `
		INSERT INTO weather_records (observation_date, observation_time, temperature, relative_humidity,
			dew_point, atmospheric_pressure, wind_direction, wind_speed, cloudiness, cloud_base_height,
			visibility, weather_phenomena)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, r.args(rec)...)
	if err != nil {
		return storageErr("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storageErr("create", err)
	}
	rec.ID = id
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.WeatherRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM weather_records WHERE id = ?`, id)
	rec, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr("get", ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("get", err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) Select(ctx context.Context) ([]models.WeatherRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM weather_records ORDER BY id`)
	if err != nil {
		return nil, storageErr("select", err)
	}
	records, err := r.collect(rows)
	if err != nil {
		return nil, storageErr("select", err)
	}
	return records, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, rec *models.WeatherRecord) error {
	const query = `
		UPDATE weather_records SET observation_date = ?, observation_time = ?, temperature = ?,
			relative_humidity = ?, dew_point = ?, atmospheric_pressure = ?, wind_direction = ?,
			wind_speed = ?, cloudiness = ?, cloud_base_height = ?, visibility = ?, weather_phenomena = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, append(r.args(rec), rec.ID)...)
	if err != nil {
		return storageErr("update", err)
	}
	return affectedOne("update", res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM weather_records WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete", err)
	}
	return affectedOne("delete", res)
}

func (r *SQLiteRepository) FilterByYearAndMonth(ctx context.Context, year, month, page, pageSize int) ([]models.WeatherRecord, int, error) {
	from, to := models.MonthRange(year, month, r.loc)
	fromStr := from.UTC().Format(sqliteTimeLayout)
	toStr := to.UTC().Format(sqliteTimeLayout)

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM weather_records WHERE observation_date >= ? AND observation_date < ?`,
		fromStr, toStr,
	).Scan(&total)
	if err != nil {
		return nil, 0, storageErr("count", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM weather_records
		WHERE observation_date >= ? AND observation_date < ?
		ORDER BY id LIMIT ? OFFSET ?`,
		fromStr, toStr, pageSize, offset(page, pageSize),
	)
	if err != nil {
		return nil, 0, storageErr("filter", err)
	}
	records, err := r.collect(rows)
	if err != nil {
		return nil, 0, storageErr("filter", err)
	}
	return records, total, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return storageErr("ping", r.db.PingContext(ctx))
}

func (r *SQLiteRepository) args(rec *models.WeatherRecord) []any {
	var date any
	if rec.Date != nil {
		date = rec.Date.UTC().Format(sqliteTimeLayout)
	}
	return []any{
		date,
		nullable(durationSeconds(rec.Time)),
		nullable(rec.Temperature),
		nullable(rec.RelativeHumidity),
		nullable(rec.DewPoint),
		nullable(rec.AtmosphericPressure),
		nullable(rec.WindDirection),
		nullable(rec.WindSpeed),
		nullable(rec.Cloudiness),
		nullable(rec.CloudBaseHeight),
		nullable(rec.Visibility),
		nullable(rec.WeatherPhenomena),
	}
}

func (r *SQLiteRepository) collect(rows *sql.Rows) ([]models.WeatherRecord, error) {
	defer func() { _ = rows.Close() }()
	records := []models.WeatherRecord{}
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scan(row rowScanner) (models.WeatherRecord, error) {
	var (
		rec     models.WeatherRecord
		date    sql.NullString
		seconds sql.NullInt64
	)
	err := row.Scan(
		&rec.ID,
		&date,
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
	if err != nil {
		return models.WeatherRecord{}, err
	}
	if date.Valid {
		t, err := time.Parse(sqliteTimeLayout, date.String)
		if err != nil {
			return models.WeatherRecord{}, fmt.Errorf("parse date %q: %w", date.String, err)
		}
		local := t.In(r.loc)
		rec.Date = &local
	}
	if seconds.Valid {
		rec.Time = secondsDuration(&seconds.Int64)
	}
	return rec, nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func affectedOne(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if n == 0 {
		return storageErr(op, ErrNotFound)
	}
	return nil
}
