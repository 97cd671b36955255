// Package mqtt provides the optional MQTT event announcer for Door Core.
//
// When enabled, entry lifecycle events and action results are published
// to a broker so external automations can react without polling the API.
// Door Core only publishes; it never subscribes.
//
// Topics:
//   - doorcore/event/entry/created, doorcore/event/entry/updated
//   - doorcore/event/action/result
//   - doorcore/system/status (retained online/offline, with LWT)
//
// All announcements are best effort. A broker outage never affects entry
// provisioning or action dispatch.
package mqtt
