package mqtt

import "fmt"

// Topic prefixes for Door Core announcements.
//
// Event topics use the scheme: doorcore/event/{channel} where channel is
// the internal broadcast channel name with dots replaced by slashes
// (entry.created becomes doorcore/event/entry/created).
const (
	// TopicPrefixEvent is the base for all event topics.
	TopicPrefixEvent = "doorcore/event"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "doorcore/system"
)

// Topics provides builders for Door Core MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// Event returns the topic for a broadcast channel.
//
// Example: Event("entry", "created") returns "doorcore/event/entry/created"
func (Topics) Event(category, name string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixEvent, category, name)
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: doorcore/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
