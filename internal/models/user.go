package models

import (
	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleApprover   Role = "approver"
	RoleUser       Role = "user"
)

// CanModerate reports whether the role may approve, reject or directly
// publish events.
func (r Role) CanModerate() bool {
	return r == RoleApprover || r == RoleAdmin || r == RoleSuperadmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleApprover, RoleUser:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	// SSOSubject links a campus single-sign-on identity to this account.
	SSOSubject string `gorm:"index" json:"-"`
	Role       Role   `gorm:"size:32;default:user" json:"role"`
	// Category is the audience group (e.g. student, staff, faculty) matched
	// against an event's allowed-category list.
	Category string `gorm:"size:64" json:"category"`
	// Active is written explicitly on every create: a gorm default tag on a
	// plain bool would drop false values from the INSERT.
	Active bool `json:"active"`
}
