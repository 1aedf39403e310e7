package engine

import "strings"

const (
	SubtypeCardInput     = "card_input"
	SubtypeCodeInput     = "code_input"
	SubtypeEgressRequest = "egress_request"
)

// ParseTopic splits an inbound subject into its door key and event subtype.
// Door-qualified subjects look like {base}/{door_key}/{subtype}; bare
// subtypes carry no door key and fall back to the configured default door at
// resolution time.
func ParseTopic(base, topic string) (doorKey, subtype string) {
	prefix := base + "/"
	if !strings.HasPrefix(topic, prefix) {
		return "", topic
	}
	parts := strings.Split(topic, "/")
	doorKey = parts[1]
	subtype = strings.Join(parts[2:], "/")
	return doorKey, subtype
}
