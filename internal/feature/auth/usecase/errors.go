// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when an admin user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create an admin user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrCompanyNotFound is returned when no company matches the presented API key.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrNoCredits is returned when a company attempts a scan with zero credits remaining.
	ErrNoCredits = errors.New("no credits remaining")
)
