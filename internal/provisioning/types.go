package provisioning

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/onoffautomations/doorcore/internal/discovery"
	"github.com/onoffautomations/doorcore/internal/entry"
)

// StepID identifies one state of the provisioning flow.
type StepID string

// Flow states. The transition graph is:
//
//	mode_select → {manual | database}
//	database    → select_doors
//	manual / select_doors → terminal (created / aborted)
//
// Reconfigure flows reuse the manual step against an existing entry.
const (
	StepModeSelect  StepID = "mode_select"
	StepManual      StepID = "manual"
	StepDatabase    StepID = "database"
	StepSelectDoors StepID = "select_doors"
)

// stepDone marks a session that reached a terminal transition. A
// submission racing the terminal one fails its step check against it
// instead of re-running the terminal side effects.
const stepDone StepID = "done"

// Mode is the provisioning mode chosen at the first step.
type Mode string

// Provisioning modes.
const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// Field describes one form field for the UI renderer.
//
// The flow never renders anything itself; it hands the UI a list of fields
// with defaults (previously entered values survive a failed validation,
// secrets do not) and per-field error codes.
type Field struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // string, integer, password, boolean, select
	Required bool     `json:"required"`
	Secret   bool     `json:"secret,omitempty"`
	Label    string   `json:"label,omitempty"`
	Default  any      `json:"default,omitempty"`
	Options  []Option `json:"options,omitempty"`
}

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Step is a form to render: the flow's way of asking for input.
type Step struct {
	FlowID string  `json:"flow_id"`
	Step   StepID  `json:"step"`
	Fields []Field `json:"fields"`

	// Errors maps field names to error codes ("base" for step-level errors).
	Errors map[string]string `json:"errors,omitempty"`

	// Placeholders carries informational values for the renderer
	// (e.g. door_count on the selection step).
	Placeholders map[string]string `json:"placeholders,omitempty"`
}

// ResultType discriminates flow responses.
type ResultType string

// Result types.
const (
	// ResultForm means the flow wants (more) input: render Step.
	ResultForm ResultType = "form"

	// ResultCreated means a single entry was created (manual path).
	ResultCreated ResultType = "created"

	// ResultUpdated means an existing entry was reconfigured in place.
	ResultUpdated ResultType = "updated"

	// ResultAborted means the flow terminated with a reason code.
	// Bulk import always terminates this way, carrying its counts.
	ResultAborted ResultType = "aborted"
)

// Result is the outcome of starting a flow or submitting a step.
type Result struct {
	Type ResultType `json:"type"`

	Step  *Step        `json:"step,omitempty"`
	Entry *entry.Entry `json:"entry,omitempty"`

	// Reason is the abort reason code (already_configured,
	// no_doors_selected, doors_imported).
	Reason string `json:"reason,omitempty"`

	// Created and Skipped are the bulk import counts.
	Created int `json:"created,omitempty"`
	Skipped int `json:"skipped,omitempty"`

	// Errors are per-door failures during bulk import.
	Errors []ImportError `json:"errors,omitempty"`
}

// ImportError records one door that could not be imported.
type ImportError struct {
	DoorID  string `json:"door_id"`
	Message string `json:"message"`
}

// ManualInput is the submission for the manual (and reconfigure) step.
type ManualInput struct {
	HubIP    string     `json:"hub_ip"`
	HubPort  PortNumber `json:"hub_port"`
	DoorID   string     `json:"door_id"`
	DoorName string     `json:"door_name"`
}

// DatabaseInput is the submission for the database step.
type DatabaseInput struct {
	HubIP      string     `json:"hub_ip"`
	DBHost     string     `json:"db_host"`
	DBPort     PortNumber `json:"db_port"`
	DBName     string     `json:"db_name"`
	DBUser     string     `json:"db_user"`
	DBPassword string     `json:"db_password"`
}

// ModeInput is the submission for the mode selection step.
type ModeInput struct {
	Mode string `json:"mode"`
}

// SelectionInput is the submission for the door selection step.
//
// Doors is keyed by door_id. ImportAll, when true, supersedes the per-door
// toggles.
type SelectionInput struct {
	ImportAll bool            `json:"import_all_doors"`
	Doors     map[string]bool `json:"doors"`
}

// PortNumber decodes a port that may arrive as a JSON number or string.
//
// Malformed values are not a decode error; they surface later as the
// invalid_port validation code so the form re-renders instead of the
// request failing.
type PortNumber struct {
	Value   int
	Set     bool
	Invalid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PortNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		p.Value = n
		p.Set = true
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		n, convErr := strconv.Atoi(strings.TrimSpace(str))
		if convErr != nil {
			p.Set = true
			p.Invalid = true
			return nil
		}
		p.Value = n
		p.Set = true
		return nil
	}

	p.Set = true
	p.Invalid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p PortNumber) MarshalJSON() ([]byte, error) {
	if !p.Set || p.Invalid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Session is the ephemeral state of one flow instance.
//
// A session is exclusively owned by the flow that created it and is
// discarded on completion, abort, or expiry. Database credentials pass
// through validation into discovery calls but are never stored here.
type Session struct {
	// mu serialises submissions addressed to this flow. Concurrent
	// flows never contend; a duplicate submission of one step waits
	// here and then fails its step check.
	mu sync.Mutex

	ID      string
	Current StepID

	// Auto path state.
	HubIP    string
	HubPort  int
	Doors    []discovery.Door
	doorByID map[string]discovery.Door

	// ReconfigureEntryID is non-empty when this flow reconfigures an
	// existing entry instead of creating new ones.
	ReconfigureEntryID string

	CreatedAt time.Time
	ExpiresAt time.Time
}
