package weather

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"weather-archive/internal/models"
	"weather-archive/internal/spreadsheet"
)

// Upload is one uploaded workbook.
type Upload struct {
	Name string
	Body io.Reader
}

// UploadWeatherData parses every upload in order and then persists the
// accumulated records one by one. Nothing is persisted when any upload fails
// to parse. Persistence stops at the first storage error; records written
// before it stay in storage.
func (s *WeatherService) UploadWeatherData(ctx context.Context, uploads []Upload) *models.UploadResult {
	start := s.clock.Now()
	res := &models.UploadResult{
		BatchID: uuid.NewString(),
		Files:   make([]models.FileOutcome, 0, len(uploads)),
	}
	defer s.observeUpload(res, start)

	s.l.Info("ingestion started", map[string]any{"batch": res.BatchID, "files": len(uploads)})

	var records []models.WeatherRecord
	for i, u := range uploads {
		recs, err := s.parseUpload(ctx, res.BatchID, i, u)
		outcome := models.FileOutcome{Name: u.Name, Records: len(recs)}
		if err != nil {
			outcome.Err = err
			outcome.Error = err.Error()
			res.Fail(errors.Wrapf(err, "file %q", u.Name))
			s.metrics.FilesTotal.WithLabelValues("malformed").Inc()
			s.l.Warning("failed to parse upload", map[string]any{"batch": res.BatchID, "file": u.Name, "err": err.Error()})
		} else {
			s.metrics.FilesTotal.WithLabelValues("parsed").Inc()
		}
		res.Files = append(res.Files, outcome)
		records = append(records, recs...)
	}
	res.Parsed = len(records)
	s.metrics.RecordsParsed.Add(float64(len(records)))

	if res.Err != nil {
		return res
	}

	for i := range records {
		if err := s.repo.Create(ctx, &records[i]); err != nil {
			s.metrics.StorageErrors.Inc()
			res.Fail(errors.Wrapf(err, "persist record %d of %d", i+1, len(records)))
			s.l.Error(err, map[string]any{"batch": res.BatchID, "persisted": res.Persisted, "parsed": res.Parsed})
			break
		}
		res.Persisted++
	}
	s.metrics.RecordsPersisted.Add(float64(res.Persisted))

	return res
}

func (s *WeatherService) parseUpload(ctx context.Context, batchID string, index int, u Upload) (records []models.WeatherRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = errors.Wrap(spreadsheet.ErrMalformedWorkbook, fmt.Sprint("panic while reading workbook: ", r))
		}
	}()

	if u.Body == nil {
		return nil, errors.Wrap(spreadsheet.ErrMalformedWorkbook, "empty upload")
	}
	data, err := io.ReadAll(u.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}

	if key, err := s.archiver.Archive(ctx, batchID, index, u.Name, data); err != nil {
		s.l.Warning("failed to archive upload", map[string]any{"batch": batchID, "file": u.Name, "err": err.Error()})
	} else if key != "" {
		s.l.Debug("upload archived", map[string]any{"batch": batchID, "file": u.Name, "key": key})
	}

	wb, err := spreadsheet.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.Close() }()

	return wb.Records(s.loc)
}

func (s *WeatherService) observeUpload(res *models.UploadResult, start time.Time) {
	elapsed := s.clock.Since(start)
	s.metrics.IngestDuration.Observe(elapsed.Seconds())

	fields := map[string]any{
		"batch":     res.BatchID,
		"files":     len(res.Files),
		"parsed":    res.Parsed,
		"persisted": res.Persisted,
		"elapsed":   elapsed.String(),
	}
	if res.OK() {
		s.metrics.UploadsTotal.WithLabelValues("ok").Inc()
		s.l.Info("ingestion completed", fields)
		return
	}
	s.metrics.UploadsTotal.WithLabelValues("failed").Inc()
	fields["err"] = res.Error
	s.l.Warning("ingestion failed", fields)
}
