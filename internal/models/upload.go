package models

import "time"

// UploadSession tracks one uploaded file from receipt through import.
type UploadSession struct {
	ID           int       `db:"id" json:"id"`
	SessionCode  string    `db:"session_code" json:"session_code"`
	UserID       int       `db:"user_id" json:"user_id"`
	EntityType   string    `db:"entity_type" json:"entity_type"`
	Filename     string    `db:"filename" json:"filename"`
	FilePath     string    `db:"file_path" json:"file_path"`
	TotalRows    int       `db:"total_rows" json:"total_rows"`
	Status       string    `db:"status" json:"status"` // uploaded, queued, processing, completed, failed
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
