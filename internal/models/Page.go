package models

// Page is one page of records matching a year/month filter.
type Page struct {
	Records         []WeatherRecord `json:"records"`
	Year            int             `json:"year" example:"2023"`
	Month           int             `json:"month" example:"1"`
	Page            int             `json:"page" example:"1"`
	PageSize        int             `json:"page_size" example:"10"`
	TotalRecords    int             `json:"total_records" example:"248"`
	TotalPages      int             `json:"total_pages" example:"25"`
	HasPreviousPage bool            `json:"has_previous_page" example:"false"`
	HasNextPage     bool            `json:"has_next_page" example:"true"`
}

func NewPage(records []WeatherRecord, year, month, page, pageSize, total int) Page {
	if records == nil {
		records = []WeatherRecord{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page{
		Records:         records,
		Year:            year,
		Month:           month,
		Page:            page,
		PageSize:        pageSize,
		TotalRecords:    total,
		TotalPages:      totalPages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < totalPages,
	}
}
