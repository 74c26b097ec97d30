package node

// Event is a notification kind produced in interrupt context.
// It is a plain value so it can be copied out of the edge callback.
type Event uint8

const (
	// EventButtonPressed is emitted on every rising edge of the button line.
	EventButtonPressed Event = iota

	// eventMax bounds the enumeration; it is never emitted.
	eventMax
)

// Valid reports whether e is a known event kind.
func (e Event) Valid() bool {
	return e < eventMax
}

func (e Event) String() string {
	switch e {
	case EventButtonPressed:
		return "button_pressed"
	default:
		return "unknown"
	}
}
