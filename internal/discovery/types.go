package discovery

// Credentials are the transient database connection details for one
// discovery call. They are never persisted and never logged; only the
// host appears in log attributes.
type Credentials struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// Door is one door row from the hub database.
type Door struct {
	// DoorID is the opaque external key (Oid column).
	DoorID string `json:"door_id"`

	// DoorName is the display name (Description column).
	DoorName string `json:"door_name"`

	// OutputPort is the hub output port hint, 0 when absent or NULL.
	OutputPort int `json:"output_port"`
}
