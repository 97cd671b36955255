package hub

import (
	"fmt"
	"net/url"
)

// Action is one of the four named door commands.
//
// Every action maps to a fixed pair of boolean path segments on the hub's
// admin URL. The mapping is static and shared by all doors.
type Action string

// The door action vocabulary.
const (
	// ActionOpenUntilNext opens the door until the next schedule boundary.
	ActionOpenUntilNext Action = "open_until_next"

	// ActionCloseBackToSchedule closes the door and returns it to schedule.
	ActionCloseBackToSchedule Action = "close_back_to_schedule"

	// ActionOpenOneEntry opens the door for a single entry.
	ActionOpenOneEntry Action = "open_one_entry"

	// ActionCloseIfSingleOpen closes the door if it was opened for one entry.
	ActionCloseIfSingleOpen Action = "close_if_single_open"
)

// actionFlags is the (openFlag, closeFlag) pair appended to the command URL.
type actionFlags struct {
	open  bool
	close bool
}

// actionTable maps each action to its boolean flag pair.
var actionTable = map[Action]actionFlags{
	ActionOpenUntilNext:       {open: true, close: false},
	ActionCloseBackToSchedule: {open: true, close: true},
	ActionOpenOneEntry:        {open: false, close: false},
	ActionCloseIfSingleOpen:   {open: false, close: true},
}

// actionLabels maps each action to its display label.
var actionLabels = map[Action]string{
	ActionOpenUntilNext:       "Open till next schedule",
	ActionCloseBackToSchedule: "Close back to schedule",
	ActionOpenOneEntry:        "Open for 1 entry",
	ActionCloseIfSingleOpen:   "Close if open for 1 entry",
}

// actionOrder fixes the presentation order of actions.
var actionOrder = []Action{
	ActionOpenUntilNext,
	ActionCloseBackToSchedule,
	ActionOpenOneEntry,
	ActionCloseIfSingleOpen,
}

// ActionInfo describes one action for UI rendering.
type ActionInfo struct {
	Key   Action `json:"key"`
	Label string `json:"label"`
}

// Actions returns the four door actions in presentation order.
func Actions() []ActionInfo {
	infos := make([]ActionInfo, 0, len(actionOrder))
	for _, a := range actionOrder {
		infos = append(infos, ActionInfo{Key: a, Label: actionLabels[a]})
	}
	return infos
}

// ParseAction validates an action key.
//
// Returns:
//   - Action: The parsed action
//   - error: ErrUnknownAction if the key is not in the vocabulary
func ParseAction(key string) (Action, error) {
	a := Action(key)
	if _, ok := actionTable[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, key)
	}
	return a, nil
}

// Endpoint identifies the HTTP hub controlling one or more doors.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CommandURL builds the hub command URL for a door action.
//
// Format: http://{host}:{port}/admin/Door/{door_id}/{openFlag}/{closeFlag}
// with the flags rendered as the literal strings "true"/"false".
func CommandURL(ep Endpoint, doorID string, action Action) string {
	flags := actionTable[action]
	return fmt.Sprintf("http://%s:%d/admin/Door/%s/%t/%t",
		ep.Host, ep.Port, url.PathEscape(doorID), flags.open, flags.close)
}
