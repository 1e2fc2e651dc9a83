package weather_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-archive/internal/models"
	"weather-archive/internal/repositories"
	"weather-archive/internal/services/weather"
	"weather-archive/internal/spreadsheet"
	"weather-archive/internal/spreadsheet/spreadsheettest"
	"weather-archive/pkg/logger"
	"weather-archive/pkg/observe"
)

var moscow = time.FixedZone("MSK", 3*3600)

// MockRepository implements WeatherRepository for testing
type MockRepository struct {
	records     []models.WeatherRecord
	failOn      int // 1-based Create call that fails; 0 never fails
	createCalls int
	filterErr   error
	filterCalls int
}

func (m *MockRepository) Create(_ context.Context, rec *models.WeatherRecord) error {
	m.createCalls++
	if m.failOn > 0 && m.createCalls == m.failOn {
		return &repositories.StorageError{Op: "create", Err: errors.New("connection reset")}
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	return nil
}

func (m *MockRepository) Get(_ context.Context, id int64) (*models.WeatherRecord, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *MockRepository) Select(context.Context) ([]models.WeatherRecord, error) {
	return m.records, nil
}

func (m *MockRepository) Update(context.Context, *models.WeatherRecord) error { return nil }

func (m *MockRepository) Delete(context.Context, int64) error { return nil }

func (m *MockRepository) FilterByYearAndMonth(_ context.Context, _, _, _, _ int) ([]models.WeatherRecord, int, error) {
	m.filterCalls++
	if m.filterErr != nil {
		return nil, 0, m.filterErr
	}
	return m.records, len(m.records), nil
}

func (m *MockRepository) Ping(context.Context) error { return nil }

type recordingArchiver struct {
	names []string
	err   error
}

func (a *recordingArchiver) Archive(_ context.Context, batchID string, index int, name string, _ []byte) (string, error) {
	a.names = append(a.names, name)
	if a.err != nil {
		return "", a.err
	}
	return batchID + "/" + name, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{AppName: "test-app", Level: "error"}, io.Discard)
}

func newSQLiteService(t *testing.T) *weather.WeatherService {
	t.Helper()
	db, err := repositories.OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repositories.MigrateSQLite(db, testLogger()))

	return weather.NewWeatherService(repositories.NewSQLiteRepository(db, moscow), moscow, testLogger())
}

func upload(name string, data []byte) weather.Upload {
	return weather.Upload{Name: name, Body: bytes.NewReader(data)}
}

func TestUploadWeatherData_RoundTrip(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()
	rows := append(spreadsheettest.Header(), spreadsheettest.DataRow("15.01.2023", "03:00", -12.4))
	data := spreadsheettest.Build(t, spreadsheettest.Sheet{Name: "Jan", Rows: rows})

	res := service.UploadWeatherData(ctx, []weather.Upload{upload("jan.xlsx", data)})
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, 1, res.Parsed)
	assert.Equal(t, 1, res.Persisted)
	assert.NotEmpty(t, res.BatchID)

	records, total, err := service.FilterWeatherDataByYearAndMonth(ctx, 2023, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)

	rec := records[0]
	require.NotNil(t, rec.Date)
	assert.True(t, rec.Date.Equal(time.Date(2023, 1, 15, 0, 0, 0, 0, moscow)))
	assert.Equal(t, "2023-01-15 00:00", rec.Date.Format("2006-01-02 15:04"))
	require.NotNil(t, rec.Time)
	assert.Equal(t, 3*time.Hour, *rec.Time)
	assert.Equal(t, -12.4, *rec.Temperature)
	assert.Equal(t, 81.0, *rec.RelativeHumidity)
	assert.Equal(t, -15.1, *rec.DewPoint)
	assert.Equal(t, 748.0, *rec.AtmosphericPressure)
	assert.Equal(t, "СЗ", *rec.WindDirection)
	assert.Equal(t, 3.0, *rec.WindSpeed)
	assert.Equal(t, 100.0, *rec.Cloudiness)
	assert.Equal(t, 800.0, *rec.CloudBaseHeight)
	assert.Equal(t, 10.0, *rec.Visibility)
	assert.Equal(t, "снег", *rec.WeatherPhenomena)
}

func TestFilterWeatherDataByYearAndMonth_Pagination(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()

	res := service.UploadWeatherData(ctx, []weather.Upload{
		upload("march.xlsx", spreadsheettest.Month(t, "03.2024", 15)),
		upload("april.xlsx", spreadsheettest.Month(t, "04.2024", 3)),
	})
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, 18, res.Persisted)

	records, total, err := service.FilterWeatherDataByYearAndMonth(ctx, 2024, 3, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, records, 5)
	assert.Equal(t, 11.0, *records[0].Temperature)
	assert.Equal(t, 15.0, *records[4].Temperature)

	page, err := service.WeatherPage(ctx, 2024, 3, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Records, 10)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	assert.False(t, page.HasPreviousPage)
}

func TestFilterWeatherDataByYearAndMonth_NoMatches(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()
	require.True(t, service.UploadWeatherData(ctx, []weather.Upload{
		upload("may.xlsx", spreadsheettest.Month(t, "05.2022", 2)),
	}).OK())

	for _, tc := range []struct{ page, size int }{{1, 10}, {3, 1}, {1, 100}} {
		records, total, err := service.FilterWeatherDataByYearAndMonth(ctx, 2022, 6, tc.page, tc.size)
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, 0, total)
	}
}

func TestFilterWeatherDataByYearAndMonth_MonthBoundaryInLocalZone(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()
	rows := append(spreadsheettest.Header(),
		spreadsheettest.DataRow("31.01.2023", "23:00", 1),
		spreadsheettest.DataRow("01.02.2023", "00:00", 2),
	)
	res := service.UploadWeatherData(ctx, []weather.Upload{
		upload("edge.xlsx", spreadsheettest.Build(t, spreadsheettest.Sheet{Name: "Edge", Rows: rows})),
	})
	require.True(t, res.OK(), res.Error)

	records, total, err := service.FilterWeatherDataByYearAndMonth(ctx, 2023, 2, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, 2.0, *records[0].Temperature)
}

func TestUploadWeatherData_TwiceCreatesDistinctRecords(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()
	data := spreadsheettest.Month(t, "07.2021", 1)

	require.True(t, service.UploadWeatherData(ctx, []weather.Upload{upload("a.xlsx", data)}).OK())
	require.True(t, service.UploadWeatherData(ctx, []weather.Upload{upload("a.xlsx", data)}).OK())

	records, total, err := service.FilterWeatherDataByYearAndMonth(ctx, 2021, 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestUploadWeatherData_MalformedFilePersistsNothing(t *testing.T) {
	repo := &MockRepository{}
	service := weather.NewWeatherService(repo, moscow, testLogger())

	res := service.UploadWeatherData(context.Background(), []weather.Upload{
		upload("good.xlsx", spreadsheettest.Month(t, "01.2020", 2)),
		upload("bad.xlsx", []byte("definitely not a workbook")),
	})

	assert.False(t, res.OK())
	assert.Equal(t, 0, repo.createCalls)
	assert.Equal(t, 0, res.Persisted)
	require.Len(t, res.Files, 2)
	assert.NoError(t, res.Files[0].Err)
	assert.Equal(t, 2, res.Files[0].Records)
	assert.ErrorIs(t, res.Files[1].Err, spreadsheet.ErrMalformedWorkbook)
	assert.ErrorIs(t, res.Err, spreadsheet.ErrMalformedWorkbook)
	assert.Contains(t, res.Error, "bad.xlsx")
}

func TestUploadWeatherData_ParseErrorPersistsNothing(t *testing.T) {
	repo := &MockRepository{}
	service := weather.NewWeatherService(repo, moscow, testLogger())
	rows := append(spreadsheettest.Header(),
		spreadsheettest.DataRow("01.01.2020", "12:00", 1),
		spreadsheettest.DataRow("2020-01-02", "12:00", 2),
	)

	res := service.UploadWeatherData(context.Background(), []weather.Upload{
		upload("iso.xlsx", spreadsheettest.Build(t, spreadsheettest.Sheet{Name: "S", Rows: rows})),
	})

	assert.False(t, res.OK())
	assert.Equal(t, 0, repo.createCalls)
	var perr *spreadsheet.ParseError
	require.ErrorAs(t, res.Err, &perr)
	assert.Equal(t, "2020-01-02", perr.Value)
}

func TestUploadWeatherData_StorageFailureLeavesPartialWrites(t *testing.T) {
	repo := &MockRepository{failOn: 2}
	service := weather.NewWeatherService(repo, moscow, testLogger())

	res := service.UploadWeatherData(context.Background(), []weather.Upload{
		upload("three.xlsx", spreadsheettest.Month(t, "02.2019", 3)),
	})

	assert.False(t, res.OK())
	assert.Equal(t, 3, res.Parsed)
	assert.Equal(t, 1, res.Persisted)
	assert.Len(t, repo.records, 1)
	assert.Equal(t, 2, repo.createCalls)
	var serr *repositories.StorageError
	require.ErrorAs(t, res.Err, &serr)
	assert.Equal(t, "create", serr.Op)
	assert.NoError(t, res.Files[0].Err)
}

func TestUploadWeatherData_NoFiles(t *testing.T) {
	repo := &MockRepository{}
	service := weather.NewWeatherService(repo, moscow, testLogger())

	res := service.UploadWeatherData(context.Background(), nil)

	assert.True(t, res.OK())
	assert.Empty(t, res.Files)
	assert.Equal(t, 0, repo.createCalls)
}

func TestUploadWeatherData_ArchivesEveryUpload(t *testing.T) {
	archiver := &recordingArchiver{err: errors.New("bucket unavailable")}
	service := weather.NewWeatherService(&MockRepository{}, moscow, testLogger(), weather.WithArchiver(archiver))

	res := service.UploadWeatherData(context.Background(), []weather.Upload{
		upload("one.xlsx", spreadsheettest.Month(t, "01.2020", 1)),
		upload("two.xlsx", []byte("junk")),
	})

	assert.Equal(t, []string{"one.xlsx", "two.xlsx"}, archiver.names)
	assert.NoError(t, res.Files[0].Err)
	assert.Error(t, res.Files[1].Err)
}

func TestUploadWeatherData_Metrics(t *testing.T) {
	metrics := observe.NewUnregisteredMetrics()
	repo := &MockRepository{failOn: 3}
	service := weather.NewWeatherService(repo, moscow, testLogger(), weather.WithMetrics(metrics))

	service.UploadWeatherData(context.Background(), []weather.Upload{
		upload("four.xlsx", spreadsheettest.Month(t, "01.2020", 4)),
	})

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.RecordsParsed))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RecordsPersisted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StorageErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UploadsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FilesTotal.WithLabelValues("parsed")))
}

func TestFilterWeatherDataByYearAndMonth_StorageErrorPropagates(t *testing.T) {
	repo := &MockRepository{filterErr: &repositories.StorageError{Op: "filter", Err: errors.New("timeout")}}
	service := weather.NewWeatherService(repo, moscow, testLogger())

	records, total, err := service.FilterWeatherDataByYearAndMonth(context.Background(), 2023, 1, 1, 10)

	assert.Nil(t, records)
	assert.Equal(t, 0, total)
	var serr *repositories.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "filter", serr.Op)

	_, err = service.WeatherPage(context.Background(), 2023, 1, 1, 10)
	assert.Error(t, err)
}

func TestFilterWeatherDataByYearAndMonth_ReturnsLocalDates(t *testing.T) {
	utc := time.Date(2023, 1, 14, 21, 0, 0, 0, time.UTC)
	repo := &MockRepository{records: []models.WeatherRecord{{ID: 1, Date: &utc}}}
	service := weather.NewWeatherService(repo, moscow, testLogger())

	records, _, err := service.FilterWeatherDataByYearAndMonth(context.Background(), 2023, 1, 1, 10)

	require.NoError(t, err)
	assert.Equal(t, "2023-01-15T00:00:00+03:00", records[0].Date.Format(time.RFC3339))
	assert.Equal(t, 1, repo.filterCalls)
}
