package provisioning

import "errors"

// Validation and abort codes surfaced to the caller. The renderer maps
// these to translated messages; the flow only ever emits the codes.
const (
	CodeInvalidHost       = "invalid_host"
	CodeInvalidPort       = "invalid_port"
	CodeRequired          = "required"
	CodeCannotConnect     = "cannot_connect"
	CodeAlreadyConfigured = "already_configured"
	CodeNoDoorsSelected   = "no_doors_selected"
	CodeInvalidImport     = "invalid_import"

	// CodeDoorsImported is informational, not an error: the terminal
	// reason of a bulk import, carrying created/skipped counts.
	CodeDoorsImported = "doors_imported"
)

// Domain errors for the provisioning package.
var (
	// ErrFlowNotFound is returned when a flow ID does not exist or has expired.
	ErrFlowNotFound = errors.New("provisioning: flow not found")

	// ErrStepMismatch is returned when a submission targets a step the
	// flow is not currently on.
	ErrStepMismatch = errors.New("provisioning: unexpected step")

	// ErrInvalidMode is returned when mode selection carries an unknown mode.
	ErrInvalidMode = errors.New("provisioning: invalid mode")
)
