package entry

import (
	"fmt"
	"time"
)

// Entry is a persisted configuration record identifying one door on one hub.
//
// An entry is the unit the provisioning flow produces: one per door, whether
// entered manually or imported from database discovery. The identity key
// deduplicates entries across flows.
type Entry struct {
	// ID is the entry's internal identifier (UUID).
	ID string `json:"id"`

	// Identity is the deduplication key "hub_ip:hub_port:door_id".
	// Globally unique across all entries.
	Identity string `json:"identity"`

	// Title is the display title, set from the door name at creation.
	Title string `json:"title"`

	// HubIP is the hub host (IP literal or hostname).
	HubIP string `json:"hub_ip"`

	// HubPort is the hub web service port.
	HubPort int `json:"hub_port"`

	// DoorID is the opaque door key on the hub (Oid in the hub database).
	DoorID string `json:"door_id"`

	// DoorName is the door's display name.
	DoorName string `json:"door_name"`

	// OutputPort is the hub output port hint from discovery (0 if unknown).
	OutputPort int `json:"output_port"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity derives the deduplication key for a door on a hub.
//
// The key is exact-match only; no normalisation beyond what validation
// already applied (trimmed host, integer port).
func Identity(hubIP string, hubPort int, doorID string) string {
	return fmt.Sprintf("%s:%d:%s", hubIP, hubPort, doorID)
}

// ComputeIdentity refreshes the entry's Identity from its current fields.
// Call after changing HubIP, HubPort, or DoorID (e.g., reconfigure).
func (e *Entry) ComputeIdentity() {
	e.Identity = Identity(e.HubIP, e.HubPort, e.DoorID)
}
