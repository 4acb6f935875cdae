package models

import "time"

// ActivityFileType distinguishes gallery media kinds.
type ActivityFileType string

const (
	ActivityFileImage ActivityFileType = "image"
	ActivityFileVideo ActivityFileType = "video"
)

// Activity is a gallery post subject to the 7-day retention window.
type Activity struct {
	ID          string           `db:"id" json:"id"`
	FileURL     string           `db:"file_url" json:"file_url"`
	FileType    ActivityFileType `db:"file_type" json:"file_type"`
	Description *string          `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
