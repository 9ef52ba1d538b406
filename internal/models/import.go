package models

// MaxImportErrors caps the error list on an import result. Processing stops
// recording new row errors once the cap is reached; rows left unprocessed are
// counted in NotAttempted instead of being silently dropped.
const MaxImportErrors = 100

// ColumnEntry maps one source column to a canonical target field.
// TargetField is empty when the column could not be mapped.
type ColumnEntry struct {
	SourceIndex  int    `json:"source_index"`
	SourceHeader string `json:"source_header"`
	TargetField  string `json:"target_field"`
	AutoDetected bool   `json:"auto_detected"`
}

// ColumnMapping is the ordered source-column to target-field mapping for one
// import.
type ColumnMapping struct {
	Columns []ColumnEntry `json:"columns"`
}

// FieldValues projects a raw row through the mapping into target-field values.
// Unmapped columns are dropped; missing cells read as empty.
func (m ColumnMapping) FieldValues(row []string) map[string]string {
	values := make(map[string]string, len(m.Columns))
	for _, col := range m.Columns {
		if col.TargetField == "" {
			continue
		}
		if col.SourceIndex >= 0 && col.SourceIndex < len(row) {
			values[col.TargetField] = row[col.SourceIndex]
		}
	}
	return values
}

// Conflicts reports target fields claimed by more than one source column.
// The mapper never resolves these itself; the caller has to arbitrate.
func (m ColumnMapping) Conflicts() map[string][]int {
	byTarget := make(map[string][]int)
	for _, col := range m.Columns {
		if col.TargetField != "" {
			byTarget[col.TargetField] = append(byTarget[col.TargetField], col.SourceIndex)
		}
	}
	conflicts := make(map[string][]int)
	for field, sources := range byTarget {
		if len(sources) > 1 {
			conflicts[field] = sources
		}
	}
	return conflicts
}

// DuplicateMatch is one existing-record candidate for an imported row.
type DuplicateMatch struct {
	RecordID    int    `json:"record_id"`
	NaturalKey  string `json:"natural_key"`
	DisplayName string `json:"display_name"`
	MatchType   string `json:"match_type"` // exact_ref, similar_name, similar_description
	Confidence  int    `json:"confidence"` // 0-100
	Action      string `json:"action"`     // update, review
}

// DuplicatePreviewRow is the per-row output of the duplicate preview. Rows
// without any match are omitted from the preview entirely.
type DuplicatePreviewRow struct {
	RowNumber    int              `json:"row_number"`
	ImportedRef  string           `json:"imported_ref"`
	ImportedName string           `json:"imported_name"`
	Matches      []DuplicateMatch `json:"matches"`
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Total        int      `json:"total"`
	Created      int      `json:"created"`
	Updated      int      `json:"updated"`
	Skipped      int      `json:"skipped"`
	NotAttempted int      `json:"not_attempted"`
	Errors       []string `json:"errors"`
}

// Import progress states exposed to pollers.
const (
	ProgressQueued     = "queued"
	ProgressProcessing = "processing"
	ProgressCompleted  = "completed"
	ProgressFailed     = "failed"
	ProgressUnknown    = "unknown"
)

// ImportProgress is the live status record kept in the progress store for a
// bounded polling window after the job finishes.
type ImportProgress struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
	Error     string `json:"error,omitempty"`
	OutputRef string `json:"output_ref,omitempty"`
}
