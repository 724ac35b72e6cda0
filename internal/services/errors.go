package services

import "errors"

// Sentinel errors translated by handlers into flash messages / HTTP statuses.
var (
	ErrNotFound          = errors.New("record not found")
	ErrNotAvailable      = errors.New("donation no longer available")
	ErrNotClaimed        = errors.New("donation is not claimed")
	ErrNotPending        = errors.New("request is not pending")
	ErrNotOwner          = errors.New("actor does not own the record")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	// ErrInvalidCredentials covers unknown login, wrong password and wrong
	// role alike, so a failed login never reveals which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials or user type")
)
