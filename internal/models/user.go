// Package models contains data structures for the application's domain models.
package models

import "time"

// UserRole defines the access level of a user account.
type UserRole string

const (
	// RoleAdmin can manage any travel request in the system.
	RoleAdmin UserRole = "admin"
	// RoleUser can manage only their own travel requests.
	RoleUser UserRole = "user"
)

// User represents an account in the Traveldesk application.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
