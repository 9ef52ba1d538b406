package models

import "time"

// Notification carries a completed import's result summary to the user who
// started it.
type Notification struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	JobID     string    `db:"job_id" json:"job_id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"` // serialized ImportResult
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
