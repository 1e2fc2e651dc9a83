package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weather-archive/internal/models"
)

var ErrNotFound = errors.New("record not found")

// StorageError wraps any failure reported by the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// WeatherRepository persists weather records. Create assigns the record ID.
type WeatherRepository interface {
	Create(ctx context.Context, rec *models.WeatherRecord) error
	Get(ctx context.Context, id int64) (*models.WeatherRecord, error)
	Select(ctx context.Context) ([]models.WeatherRecord, error)
	Update(ctx context.Context, rec *models.WeatherRecord) error
	Delete(ctx context.Context, id int64) error

	// FilterByYearAndMonth returns one page of records dated within the month,
	// ordered by ID, and the number of matching records ignoring pagination.
	// page is 1-based; page and pageSize are not validated.
	FilterByYearAndMonth(ctx context.Context, year, month, page, pageSize int) ([]models.WeatherRecord, int, error)

	Ping(ctx context.Context) error
}

func offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

func durationSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	s := int64(*d / time.Second)
	return &s
}

func secondsDuration(s *int64) *time.Duration {
	if s == nil {
		return nil
	}
	d := time.Duration(*s) * time.Second
	return &d
}
