package models

import "time"

// Student belongs to at most one group. Detached students keep a NULL
// group reference after their group is deleted.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"nombre_completo"`
	Age       *int      `db:"age" json:"edad,omitempty"`
	GroupID   *string   `db:"group_id" json:"grupo_id,omitempty"`
	PhotoURL  *string   `db:"photo_url" json:"foto_perfil,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
