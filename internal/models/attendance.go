package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a single per-student outcome for one date.
// One row per (student, date); a re-submission updates the status.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	GroupID   string           `db:"group_id" json:"group_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceHistoryRow extends a record with student and group names.
type AttendanceHistoryRow struct {
	ID          string           `db:"id" json:"id"`
	Date        time.Time        `db:"date" json:"date"`
	Status      AttendanceStatus `db:"status" json:"status"`
	StudentName string           `db:"student_name" json:"student_name"`
	GroupName   string           `db:"group_name" json:"group_name"`
}
