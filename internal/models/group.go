package models

import "time"

// Group represents a classroom/cohort owning students and teacher assignments.
type Group struct {
	ID string `db:"id" json:"id"`
	// Name like "Maternal A".
	Name         string    `db:"name" json:"nombre"`
	ScheduleText *string   `db:"schedule_text" json:"horario,omitempty"`
	HomeroomName *string   `db:"homeroom_teacher" json:"profesor,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GroupTeacher is the join row between a group and an assigned teacher.
type GroupTeacher struct {
	ID        string    `db:"id" json:"id"`
	GroupID   string    `db:"group_id" json:"group_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AssignedTeacher is a user joined through group_teachers.
type AssignedTeacher struct {
	ID       string `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}
