package mqtt

import (
	"encoding/json"
	"strings"

	"github.com/onoffautomations/doorcore/internal/infrastructure/logging"
)

// Announcer adapts the MQTT client to the Broadcast interface used by the
// provisioning flow and the action dispatcher.
//
// Announcements are best effort: a disconnected broker or failed publish
// is logged and dropped, never surfaced to the operation that produced
// the event.
type Announcer struct {
	client *Client
	logger *logging.Logger
}

// NewAnnouncer wraps a connected client as a broadcast target.
func NewAnnouncer(client *Client, logger *logging.Logger) *Announcer {
	return &Announcer{client: client, logger: logger}
}

// Broadcast publishes an event payload to the channel's topic.
//
// Channel names use dot notation (entry.created, action.result); the
// first segment becomes the topic category.
func (a *Announcer) Broadcast(channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("mqtt announce: marshal failed", "channel", channel, "error", err)
		return
	}

	category, name, ok := strings.Cut(channel, ".")
	if !ok {
		name = category
		category = "misc"
	}

	topic := Topics{}.Event(category, name)
	if err := a.client.Publish(topic, data, byte(a.client.cfg.QoS), false); err != nil {
		a.logger.Warn("mqtt announce: publish failed", "topic", topic, "error", err)
	}
}
