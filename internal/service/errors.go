package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrStatusNotFound is returned when a pipeline status is not found
	ErrStatusNotFound = errors.New("pipeline status not found")

	// ErrMarketColorNotFound is returned when a market color is not found
	ErrMarketColorNotFound = errors.New("market color not found")

	// ErrInvalidTransferAction is returned when a transfer action is not recognized
	ErrInvalidTransferAction = errors.New("invalid transfer action")

	// ErrInvalidDate is returned when a submitted date cannot be parsed
	ErrInvalidDate = errors.New("invalid date")
)
