package weather

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"weather-archive/internal/archive"
	"weather-archive/internal/repositories"
	"weather-archive/pkg/logger"
	"weather-archive/pkg/observe"
)

// WeatherService ingests observation workbooks and serves stored records.
type WeatherService struct {
	repo     repositories.WeatherRepository
	loc      *time.Location
	archiver archive.Archiver
	metrics  *observe.Metrics
	clock    clockwork.Clock
	l        *logger.Logger
}

type Option func(*WeatherService)

func WithArchiver(a archive.Archiver) Option {
	return func(s *WeatherService) {
		if a != nil {
			s.archiver = a
		}
	}
}

func WithMetrics(m *observe.Metrics) Option {
	return func(s *WeatherService) { s.metrics = m }
}

func WithClock(c clockwork.Clock) Option {
	return func(s *WeatherService) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewWeatherService creates a service whose dates are interpreted in loc,
// the observation source's local zone.
func NewWeatherService(repo repositories.WeatherRepository, loc *time.Location, l *logger.Logger, opts ...Option) *WeatherService {
	if loc == nil {
		loc = time.UTC
	}
	s := &WeatherService{
		repo:     repo,
		loc:      loc,
		archiver: archive.Nop{},
		metrics:  observe.NewUnregisteredMetrics(),
		clock:    clockwork.NewRealClock(),
		l:        l,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.NewUnregisteredMetrics()
	}
	return s
}

func (s *WeatherService) Location() *time.Location {
	return s.loc
}

// Ping reports whether the storage is reachable.
func (s *WeatherService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
