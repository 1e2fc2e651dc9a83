package weather

import (
	"context"

	"github.com/pkg/errors"

	"weather-archive/internal/models"
)

// FilterWeatherDataByYearAndMonth returns one page of records dated within the
// given month of the service zone and the total number of matches. page and
// pageSize are passed to storage as is.
func (s *WeatherService) FilterWeatherDataByYearAndMonth(ctx context.Context, year, month, page, pageSize int) ([]models.WeatherRecord, int, error) {
	start := s.clock.Now()
	records, total, err := s.repo.FilterByYearAndMonth(ctx, year, month, page, pageSize)
	s.metrics.QueryDuration.Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.QueriesTotal.WithLabelValues("error").Inc()
		s.l.Error(err, map[string]any{"year": year, "month": month, "page": page, "pageSize": pageSize})
		return nil, 0, errors.Wrapf(err, "filter weather data %04d-%02d", year, month)
	}
	s.metrics.QueriesTotal.WithLabelValues("ok").Inc()

	for i := range records {
		records[i] = records[i].InLocation(s.loc)
	}
	return records, total, nil
}

// WeatherPage wraps FilterWeatherDataByYearAndMonth with paging metadata.
func (s *WeatherService) WeatherPage(ctx context.Context, year, month, page, pageSize int) (models.Page, error) {
	records, total, err := s.FilterWeatherDataByYearAndMonth(ctx, year, month, page, pageSize)
	if err != nil {
		return models.Page{}, err
	}
	return models.NewPage(records, year, month, page, pageSize, total), nil
}
