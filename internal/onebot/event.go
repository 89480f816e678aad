package onebot

import "encoding/json"

// Kind identifies an event variant.
type Kind int

const (
	KindLifecycle Kind = iota
	KindHeartbeat
	KindPrivateMessage
	KindGroupMessage
)

func (k Kind) String() string {
	switch k {
	case KindLifecycle:
		return "lifecycle"
	case KindHeartbeat:
		return "heartbeat"
	case KindPrivateMessage:
		return "private_message"
	case KindGroupMessage:
		return "group_message"
	default:
		return "unknown"
	}
}

// Lifecycle sub types.
const (
	LifecycleEnable  = "enable"
	LifecycleDisable = "disable"
	LifecycleConnect = "connect"
)

// Payload is the wire form of an event: the merged template and overrides.
type Payload map[string]any

// Event is an unsolicited frame pushed to the remote controller. Each variant
// serializes to its payload at the wire boundary.
type Event interface {
	json.Marshaler
	Kind() Kind
	Payload() Payload
}

// LifecycleEvent is a meta_event of type lifecycle.
type LifecycleEvent struct {
	payload Payload
}

func (e LifecycleEvent) Kind() Kind { return KindLifecycle }
func (e LifecycleEvent) Payload() Payload { return e.payload }
func (e LifecycleEvent) MarshalJSON() ([]byte, error) { return json.Marshal(e.payload) }

// SubType returns enable, disable or connect.
func (e LifecycleEvent) SubType() string {
	s, _ := e.payload["sub_type"].(string)
	return s
}

// HeartbeatEvent is a meta_event of type heartbeat.
type HeartbeatEvent struct {
	payload Payload
}

func (e HeartbeatEvent) Kind() Kind { return KindHeartbeat }
func (e HeartbeatEvent) Payload() Payload { return e.payload }
func (e HeartbeatEvent) MarshalJSON() ([]byte, error) { return json.Marshal(e.payload) }

// IntervalMs returns the advertised heartbeat interval in milliseconds.
func (e HeartbeatEvent) IntervalMs() int64 {
	n, _ := asID(e.payload["interval"])
	return n
}

// MessageEvent is a private or group message observed on the desktop client.
type MessageEvent struct {
	kind    Kind
	payload Payload
}

func (e MessageEvent) Kind() Kind { return e.kind }
func (e MessageEvent) Payload() Payload { return e.payload }
func (e MessageEvent) MarshalJSON() ([]byte, error) { return json.Marshal(e.payload) }

// MessageID returns the receive id assigned by the ingestion pipeline.
func (e MessageEvent) MessageID() int64 {
	n, _ := asID(e.payload["message_id"])
	return n
}

// RawMessage returns the plain text of the message.
func (e MessageEvent) RawMessage() string {
	s, _ := e.payload["raw_message"].(string)
	return s
}
