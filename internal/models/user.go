package models

import "time"

// UserRole represents the lifecycle of an account in the approval flow.
type UserRole string

const (
	RolePending UserRole = "pending"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RolePending, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
