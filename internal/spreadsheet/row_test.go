package spreadsheet

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullRow() Row {
	return Row{
		TextCell("15.01.2023"),
		TextCell("03:00"),
		NumberCell(-12.4),
		NumberCell(81),
		NumberCell(-15.1),
		NumberCell(748),
		TextCell("СЗ"),
		NumberCell(3),
		NumberCell(100),
		NumberCell(800),
		NumberCell(10),
		TextCell("снег"),
	}
}

func TestMapRow(t *testing.T) {
	rec, err := MapRow(fullRow(), moscow)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, moscow).UTC(), *rec.Date)
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
	assert.Zero(t, rec.ID)
}

func TestMapRow_ShortRow(t *testing.T) {
	rec, err := MapRow(Row{TextCell("15.01.2023"), nil, NumberCell(1)}, moscow)
	require.NoError(t, err)

	assert.NotNil(t, rec.Date)
	assert.Nil(t, rec.Time)
	assert.Equal(t, 1.0, *rec.Temperature)
	assert.Nil(t, rec.RelativeHumidity)
	assert.Nil(t, rec.WeatherPhenomena)
}

func TestMapRow_TextInNumericColumn(t *testing.T) {
	row := fullRow()
	row[ColTemperature] = TextCell("-12.4")
	row[ColWindDirection] = NumberCell(270)

	rec, err := MapRow(row, moscow)
	require.NoError(t, err)

	assert.Nil(t, rec.Temperature)
	assert.Nil(t, rec.WindDirection)
}

func TestMapRow_MalformedDate(t *testing.T) {
	row := fullRow()
	row[ColDate] = TextCell("15/01/2023")

	_, err := MapRow(row, moscow)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "date", pe.Column)
}

func TestMapRow_MalformedTime(t *testing.T) {
	row := fullRow()
	row[ColTime] = TextCell("3 pm")

	_, err := MapRow(row, moscow)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "time", pe.Column)
}
