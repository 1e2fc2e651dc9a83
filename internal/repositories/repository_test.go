package repositories

import (
	"time"

	"weather-archive/internal/models"
)

var moscow = time.FixedZone("MSK", 3*3600)

func ptr[T any](v T) *T { return &v }

// sampleRecord returns a fully populated record dated day.month.year in moscow.
func sampleRecord(year, month, day int, temp float64) models.WeatherRecord {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, moscow).UTC()
	return models.WeatherRecord{
		Date:                &date,
		Time:                ptr(15 * time.Hour),
		Temperature:         ptr(temp),
		RelativeHumidity:    ptr(81.0),
		DewPoint:            ptr(-15.1),
		AtmosphericPressure: ptr(748.0),
		WindDirection:       ptr("СЗ"),
		WindSpeed:           ptr(3.0),
		Cloudiness:          ptr(100.0),
		CloudBaseHeight:     ptr(800.0),
		Visibility:          ptr(10.0),
		WeatherPhenomena:    ptr("снег"),
	}
}
