package services

import "errors"

// Service errors
var (
	// Snapshot errors
	ErrNotLoaded    = errors.New("analytics snapshot not loaded")
	ErrUserNotFound = errors.New("user not found")

	// Source errors
	ErrSourceNotConfigured = errors.New("data source not configured")
	ErrUnknownSourceMode   = errors.New("unknown source mode")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
