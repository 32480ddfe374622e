package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole separates students from the admins who triage complaints.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// User represents an account in the system. Admins form the roster the
// workload distributor assigns complaints across; their current load is
// always recomputed from the complaint table, never stored here.
type User struct {
	ID       string   `gorm:"primaryKey" json:"id"`
	FullName string   `gorm:"type:text;not null" json:"full_name"`
	Email    string   `gorm:"uniqueIndex" json:"email"`
	Role     UserRole `gorm:"type:text;not null;index" json:"role"`
}

// BeforeCreate is a GORM hook which generates a new UUID for the user
// if the ID has not been set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
