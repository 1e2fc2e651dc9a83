package models

// FileOutcome describes what happened to a single uploaded workbook.
type FileOutcome struct {
	Name    string `json:"name" example:"january.xlsx"`
	Records int    `json:"records" example:"248"`
	Err     error  `json:"-"`
	Error   string `json:"error,omitempty" example:"malformed workbook"`
}

// UploadResult is the outcome of one ingestion call.
type UploadResult struct {
	BatchID   string        `json:"batch_id" example:"9b2d6f7e-3c55-4a3f-bb0a-5f1c2a0e8d41"`
	Files     []FileOutcome `json:"files"`
	Parsed    int           `json:"parsed" example:"248"`
	Persisted int           `json:"persisted" example:"248"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
}

// OK reports whether every file was parsed and every parsed record was persisted.
func (r *UploadResult) OK() bool {
	if r == nil || r.Err != nil {
		return false
	}
	for _, f := range r.Files {
		if f.Err != nil {
			return false
		}
	}
	return r.Persisted == r.Parsed
}

// Fail records err as the result's error if none was recorded before.
func (r *UploadResult) Fail(err error) {
	if err == nil || r.Err != nil {
		return
	}
	r.Err = err
	r.Error = err.Error()
}
