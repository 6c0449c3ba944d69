package enums

import "fmt"

// MessageType tags a chat line as user text, an image reference, or a
// system-generated notice.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeSystem MessageType = "system"
)

var validMessageTypes = []MessageType{
	MessageTypeText,
	MessageTypeImage,
	MessageTypeSystem,
}

// String implements fmt.Stringer.
func (t MessageType) String() string {
	return string(t)
}

// IsValid reports whether the value matches a known MessageType.
func (t MessageType) IsValid() bool {
	for _, candidate := range validMessageTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMessageType converts raw input into a MessageType.
func ParseMessageType(value string) (MessageType, error) {
	for _, candidate := range validMessageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message type %q", value)
}
