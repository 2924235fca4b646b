package mqtt

import "fmt"

// Topic prefixes for the Spoolbridge event relay.
//
// All topics use the scheme: spoolbridge/{category}/{name}
const (
	// TopicPrefix is the base for all Spoolbridge topics.
	TopicPrefix = "spoolbridge"

	// TopicPrefixEvents is the base for synchronization event topics.
	TopicPrefixEvents = "spoolbridge/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "spoolbridge/system"
)

// Topics provides builders for Spoolbridge MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	usageTopic := topics.Event("usage")
//	// Returns: "spoolbridge/events/usage"
type Topics struct{}

// Event returns the topic for a synchronization event type.
//
// Example: spoolbridge/events/usage
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvents, eventType)
}

// SystemStatus returns the system status topic carrying online/offline
// payloads and the LWT.
//
// Example: spoolbridge/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllEvents returns a pattern matching every synchronization event.
//
// Pattern: spoolbridge/events/+
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/+", TopicPrefixEvents)
}

// AllTopics returns a pattern matching all Spoolbridge topics.
//
// Pattern: spoolbridge/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
