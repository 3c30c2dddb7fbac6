package utils

const (
	// EventChannelPrefix prefixes every pub/sub channel carrying protocol notifications.
	EventChannelPrefix = "surety:"
	// EventStream is the stream holding every protocol notification in order.
	EventStream = "surety:events"
)

// GetEventChannel returns the pub/sub channel for a notification kind, e.g. "surety:oracle.request".
func GetEventChannel(kind string) string {
	return EventChannelPrefix + kind
}
