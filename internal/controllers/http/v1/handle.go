package http

import (
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"weather-archive/internal/models"
	"weather-archive/internal/services/weather"
)

const (
	uploadField     = "files"
	defaultPageSize = 10
	maxPageSize     = 100
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Missing required parameter: year"`
}

// UploadWeatherData godoc
// @Summary Upload weather archive workbooks
// @Description Parses one or more .xlsx observation workbooks and stores every data row.
// @Description Nothing is stored when any workbook cannot be parsed. A storage failure stops the upload and keeps the rows written before it.
// @Tags Weather
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Workbooks (repeat the field for several files)"
// @Success 200 {object} models.UploadResult "All rows stored"
// @Failure 400 {object} ErrorResponse "No non-empty files in the request"
// @Failure 422 {object} models.UploadResult "A workbook is malformed or has an unparseable date or time"
// @Failure 500 {object} models.UploadResult "Storage failure"
// @Router /api/v1/weather/upload [post]
// @Example {curl} Example usage:
//
//	curl -X POST -F "files=@moscow_2010.xlsx" -F "files=@moscow_2011.xlsx" "http://localhost:8080/api/v1/weather/upload"
func (r *routes) handleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Expected a multipart/form-data body",
		})
	}

	headers := form.File[uploadField]
	if len(headers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required form field: " + uploadField,
		})
	}

	uploads := make([]weather.Upload, 0, len(headers))
	for _, fh := range headers {
		// Browsers send an empty part when no file was picked.
		if fh.Size == 0 {
			r.l.Debug("skipping empty upload", map[string]any{"file": fh.Filename})
			continue
		}
		f, err := fh.Open()
		if err != nil {
			r.l.Error(err, map[string]any{"file": fh.Filename})
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: fmt.Sprintf("Cannot read uploaded file %q", fh.Filename),
			})
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		uploads = append(uploads, weather.Upload{Name: fh.Filename, Body: f})
	}
	if len(uploads) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "All uploaded files are empty",
		})
	}

	res := r.service.UploadWeatherData(c.UserContext(), uploads)
	return c.Status(uploadStatus(res)).JSON(res)
}

func uploadStatus(res *models.UploadResult) int {
	if res.OK() {
		return fiber.StatusOK
	}
	for _, f := range res.Files {
		if f.Err != nil {
			return fiber.StatusUnprocessableEntity
		}
	}
	return fiber.StatusInternalServerError
}

// GetWeatherArchive godoc
// @Summary Get archived observations for a month
// @Description Returns one page of observations dated within the given year and month, ordered by id.
// @Tags Weather
// @Produce json
// @Param year query integer true "Year" minimum(1) maximum(9999) example(2023)
// @Param month query integer true "Month" minimum(1) maximum(12) example(1)
// @Param page query integer false "Page number (default: 1)" minimum(1) example(1)
// @Param page_size query integer false "Page size (1-100, default: 10)" minimum(1) maximum(100) example(10)
// @Success 200 {object} models.Page "Successful response"
// @Failure 400 {object} ErrorResponse "Bad request - invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/weather [get]
// @Example {curl} Example usage:
//
//	curl -X GET "http://localhost:8080/api/v1/weather?year=2023&month=1&page=2&page_size=20"
func (r *routes) handleWeatherQuery(c *fiber.Ctx) error {
	year, perr := intParam(c, "year", 0, 1, 9999)
	if perr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(perr)
	}
	month, perr := intParam(c, "month", 0, 1, 12)
	if perr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(perr)
	}
	page, perr := intParam(c, "page", 1, 1, 0)
	if perr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(perr)
	}
	pageSize, perr := intParam(c, "page_size", defaultPageSize, 1, maxPageSize)
	if perr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(perr)
	}

	result, err := r.service.WeatherPage(c.UserContext(), year, month, page, pageSize)
	if err != nil {
		r.l.Error(err, map[string]any{
			"year":     year,
			"month":    month,
			"page":     page,
			"pageSize": pageSize,
		})

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to fetch weather data",
		})
	}

	return c.JSON(result)
}

// intParam reads an integer query parameter. A zero def makes it required and
// a zero max leaves it unbounded above.
func intParam(c *fiber.Ctx, name string, def, min, max int) (int, *ErrorResponse) {
	raw := c.Query(name)
	if raw == "" {
		if def == 0 {
			return 0, &ErrorResponse{Error: "Missing required parameter: " + name}
		}
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrorResponse{Error: fmt.Sprintf("Invalid %s format", name)}
	}
	if max > 0 && (v < min || v > max) {
		return 0, &ErrorResponse{Error: fmt.Sprintf("%s must be between %d and %d", name, min, max)}
	}
	if v < min {
		return 0, &ErrorResponse{Error: fmt.Sprintf("%s must be at least %d", name, min)}
	}
	return v, nil
}
