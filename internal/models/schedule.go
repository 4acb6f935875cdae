package models

import "time"

// ScheduleDocument is an uploaded monthly calendar/roster file. It has no
// retention limit.
type ScheduleDocument struct {
	ID        string    `db:"id" json:"id"`
	Title     *string   `db:"title" json:"title,omitempty"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
