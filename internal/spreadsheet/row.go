package spreadsheet

import (
	"errors"
	"time"

	"weather-archive/internal/models"
)

// Fixed column positions of a data row.
const (
	ColDate = iota
	ColTime
	ColTemperature
	ColRelativeHumidity
	ColDewPoint
	ColAtmosphericPressure
	ColWindDirection
	ColWindSpeed
	ColCloudiness
	ColCloudBaseHeight
	ColVisibility
	ColWeatherPhenomena

	ColumnCount
)

// Row is one workbook row; positions past the end are absent cells.
type Row []*Cell

func (r Row) Cell(i int) *Cell {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// MapRow converts a data row into a record. The column order is fixed and not
// validated against the header.
func MapRow(row Row, loc *time.Location) (models.WeatherRecord, error) {
	date, err := DateValue(row.Cell(ColDate), loc)
	if err != nil {
		return models.WeatherRecord{}, withColumn(err, "date")
	}
	clock, err := TimeValue(row.Cell(ColTime))
	if err != nil {
		return models.WeatherRecord{}, withColumn(err, "time")
	}

	return models.WeatherRecord{
		Date:                date,
		Time:                clock,
		Temperature:         NumericValue(row.Cell(ColTemperature)),
		RelativeHumidity:    NumericValue(row.Cell(ColRelativeHumidity)),
		DewPoint:            NumericValue(row.Cell(ColDewPoint)),
		AtmosphericPressure: NumericValue(row.Cell(ColAtmosphericPressure)),
		WindDirection:       StringValue(row.Cell(ColWindDirection)),
		WindSpeed:           NumericValue(row.Cell(ColWindSpeed)),
		Cloudiness:          NumericValue(row.Cell(ColCloudiness)),
		CloudBaseHeight:     NumericValue(row.Cell(ColCloudBaseHeight)),
		Visibility:          NumericValue(row.Cell(ColVisibility)),
		WeatherPhenomena:    StringValue(row.Cell(ColWeatherPhenomena)),
	}, nil
}

func withColumn(err error, column string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Column = column
	}
	return err
}
