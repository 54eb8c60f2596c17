package models

import (
	"gorm.io/gorm"
)

// User roles mirror the workspace permission model.
// role: admin, member, developer
type User struct {
	gorm.Model
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" gorm:"uniqueIndex"`
	Password  string `json:"-"`
	Role      string `json:"role" gorm:"type:varchar(20);default:member;index"`
	// Status is the user-chosen profile status (online, busy, offline).
	// Live connectivity is tracked in Redis and overlaid on reads.
	Status string `json:"status" gorm:"type:varchar(10);default:offline"`
}

// FullName is the display name used for channel messages and mentions.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ValidRole reports whether role is one of the assignable user roles.
func ValidRole(role string) bool {
	switch role {
	case "member", "admin", "developer":
		return true
	}
	return false
}
