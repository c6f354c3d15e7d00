package models

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when an account with the same
	// (owner, platform, handle) is already linked
	ErrAlreadyExists = errors.New("account already connected")

	// ErrInvalidPlatform is returned for an unknown platform identifier
	ErrInvalidPlatform = errors.New("invalid platform")

	// ErrUnsupportedPlatform is returned when a platform has no adapter
	// or verifier registered for the requested operation
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrMediaRequired is returned when content is missing media that the
	// target platform requires (e.g. Instagram)
	ErrMediaRequired = errors.New("media is required for this platform")

	// ErrAuthContextMissing is returned when an operation requires an
	// authenticated owner and none is present
	ErrAuthContextMissing = errors.New("no authenticated user")

	// ErrOperationInFlight is returned when a link flow operation is
	// submitted while another is still pending
	ErrOperationInFlight = errors.New("another operation is in progress")

	// ErrInvalidUUID is returned when a UUID is invalid
	ErrInvalidUUID = errors.New("invalid UUID")
)
