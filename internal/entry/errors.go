package entry

import "errors"

// Domain errors for the entry package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, entry.ErrEntryNotFound) {
//	    // handle not found case
//	}
var (
	// ErrEntryNotFound is returned when an entry ID or identity does not exist.
	ErrEntryNotFound = errors.New("entry: not found")

	// ErrEntryExists is returned when creating an entry whose identity is
	// already provisioned.
	ErrEntryExists = errors.New("entry: already exists")

	// ErrInvalidEntry is returned when entry validation fails.
	ErrInvalidEntry = errors.New("entry: invalid")
)
