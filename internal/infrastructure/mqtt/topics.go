package mqtt

import "fmt"

// TopicPrefix is the root of every moodpd topic.
const TopicPrefix = "moodpd"

// Topics provides builders for moodpd MQTT topics.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.LampState("kitchen")
//	// Returns: "moodpd/state/kitchen"
type Topics struct{}

// LampState returns the retained topic holding the lamp's last commanded state.
//
// Example: moodpd/state/00
func (Topics) LampState(lampID string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, lampID)
}

// LampEvent returns the topic for non-retained lamp events such as rejected packets.
//
// Example: moodpd/event/00/rejected
func (Topics) LampEvent(lampID, event string) string {
	return fmt.Sprintf("%s/event/%s/%s", TopicPrefix, lampID, event)
}

// Status returns the retained online/offline topic, also used for the LWT.
//
// Example: moodpd/status/00
func (Topics) Status(lampID string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefix, lampID)
}

// AllLampStates returns a wildcard matching every lamp's state topic.
func (Topics) AllLampStates() string {
	return TopicPrefix + "/state/+"
}
