// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// AdminUser represents an operator of the admin dashboard.
// It contains authentication credentials for admin endpoints.
type AdminUser struct {
	// ID is the unique identifier for the admin user.
	ID uint `gorm:"primaryKey"`

	// Email is the admin's email address used for authentication.
	// It must be unique across all admin users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the hashed password for the admin user.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// CreatedAt is the timestamp when the admin user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the admin user was last updated.
	UpdatedAt time.Time
}
