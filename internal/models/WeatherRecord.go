package models

import "time"

// WeatherRecord is a single observation row. Every field except ID may be nil,
// meaning the value was not recorded in the source workbook.
type WeatherRecord struct {
	ID                  int64          `json:"id" example:"42"`
	Date                *time.Time     `json:"date" example:"2023-01-15T00:00:00+03:00"`
	Time                *time.Duration `json:"time" swaggertype:"integer" example:"37800000000000"`
	Temperature         *float64       `json:"temperature" example:"-12.4"`
	RelativeHumidity    *float64       `json:"relative_humidity" example:"81"`
	DewPoint            *float64       `json:"dew_point" example:"-15.1"`
	AtmosphericPressure *float64       `json:"atmospheric_pressure" example:"748"`
	WindDirection       *string        `json:"wind_direction" example:"СЗ"`
	WindSpeed           *float64       `json:"wind_speed" example:"3"`
	Cloudiness          *float64       `json:"cloudiness" example:"100"`
	CloudBaseHeight     *float64       `json:"cloud_base_height" example:"800"`
	Visibility          *float64       `json:"visibility" example:"10"`
	WeatherPhenomena    *string        `json:"weather_phenomena" example:"снег"`
}

// InLocation returns a copy of the record with its date shown as wall clock time in loc.
func (r WeatherRecord) InLocation(loc *time.Location) WeatherRecord {
	if r.Date != nil && loc != nil {
		local := r.Date.In(loc)
		r.Date = &local
	}
	return r
}

// MonthRange returns the half-open interval [from, to) covering the given
// calendar month in loc.
func MonthRange(year, month int, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	to = from.AddDate(0, 1, 0)
	return from, to
}
