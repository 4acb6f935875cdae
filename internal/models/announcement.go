package models

import "time"

// Announcement is the single latest-wins notice shown to all users.
// At most one row exists at any time.
type Announcement struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
