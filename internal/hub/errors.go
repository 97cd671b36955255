package hub

import "errors"

// Domain errors for the hub package.
var (
	// ErrUnknownAction is returned when an action key is not in the vocabulary.
	ErrUnknownAction = errors.New("hub: unknown action")
)
