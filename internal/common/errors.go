package common

import "errors"

// Error kinds. Callers match them with errors.Is; operations wrap them with
// the offending detail.
var (
	// ErrConfiguration is fatal at startup: a missing credential or store identifier.
	ErrConfiguration = errors.New("configuration error")

	// ErrStoreUnavailable means the backing store could not be reached.
	// Nothing is retried automatically.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned for a missing table, column or row.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers per-field input problems.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate is returned when an entry already exists for a user and date.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrAuthFailure never says whether the username or the password was wrong.
	ErrAuthFailure = errors.New("invalid credentials")

	// ErrSessionInvalid is returned for unknown, revoked or expired sessions.
	ErrSessionInvalid = errors.New("session invalid")
)

// Credential errors.
var (
	ErrIncorrectPassword = errors.New("incorrect current password")
	ErrPasswordMismatch  = errors.New("new passwords do not match")
	ErrEmptyPassword     = errors.New("new password cannot be empty")
	ErrSamePassword      = errors.New("new password cannot be the same as the current password")
)

// Preference errors.
var (
	ErrEmptyUsername     = errors.New("username cannot be empty")
	ErrUsernameUnchanged = errors.New("username is already the same")
	ErrUsernameExists    = errors.New("username exists")
	ErrInvalidShift      = errors.New("invalid shift")
	ErrInvalidArea       = errors.New("invalid area code")
)
