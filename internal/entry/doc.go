// Package entry persists provisioned door entries.
//
// Each entry records one door on one hub: the hub endpoint, the door's
// opaque key and display name, and the derived identity
// "hub_ip:hub_port:door_id" that prevents double provisioning. The
// provisioning flow is the only writer; action dispatch only reads.
package entry
