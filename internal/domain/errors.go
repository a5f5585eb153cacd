package domain

import "errors"

// Sentinel errors wrapped by domain and service code via fmt.Errorf("%w: ...").
// Handlers map them onto HTTP statuses in one place.
var (
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a lost write race (e.g. concurrent reassignment).
	ErrConflict = errors.New("conflict")

	// ErrDuplicateNotice marks a notice rejected by the suppression window.
	ErrDuplicateNotice = errors.New("duplicate notice")

	// ErrDuplicateAcknowledgement marks a second acknowledgement attempt on a notice.
	ErrDuplicateAcknowledgement = errors.New("duplicate acknowledgement")

	// ErrInvalidState marks a transition not allowed from the current notice status.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidDateRange marks an acknowledgement date outside [generation date, now].
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrAllocationConflict marks a sequence allocation that lost its write
	// race on every attempt within the retry budget. Callers may retry once.
	ErrAllocationConflict = errors.New("allocation conflict")

	// ErrExternalDependency marks a storage or collaborator timeout/unavailability.
	ErrExternalDependency = errors.New("external dependency failure")
)
