package onebot

import "time"

// Normalizer builds protocol-compliant events from partial data. Every kind
// has a template with all required fields set to safe defaults; overrides are
// deep-merged on top of a fresh copy of it.
type Normalizer struct {
	selfID int64
	now    func() time.Time
}

// NewNormalizer creates a Normalizer stamping events with selfID.
func NewNormalizer(selfID int64) *Normalizer {
	return &Normalizer{selfID: selfID, now: time.Now}
}

// WithClock returns a copy of n that reads the current time from now.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	return &Normalizer{selfID: n.selfID, now: now}
}

// SelfID returns the bot identity stamped on events.
func (n *Normalizer) SelfID() int64 {
	return n.selfID
}

// Template returns a fresh canonical payload for kind.
func (n *Normalizer) Template(kind Kind) Payload {
	base := Payload{
		"time":    n.now().Unix(),
		"self_id": n.selfID,
	}
	switch kind {
	case KindLifecycle:
		base["post_type"] = "meta_event"
		base["meta_event_type"] = "lifecycle"
		base["sub_type"] = LifecycleEnable
	case KindHeartbeat:
		base["post_type"] = "meta_event"
		base["meta_event_type"] = "heartbeat"
		base["status"] = map[string]any{"good": true, "online": true}
		base["interval"] = int64(0)
	case KindPrivateMessage:
		base["post_type"] = "message"
		base["message_type"] = "private"
		base["sub_type"] = "friend"
		base["message_id"] = int64(0)
		base["user_id"] = int64(0)
		base["message"] = []Segment{}
		base["raw_message"] = ""
		base["font"] = 26
		base["sender"] = map[string]any{
			"user_id":  int64(0),
			"nickname": "",
			"sex":      "unknown",
			"age":      0,
		}
	case KindGroupMessage:
		base["post_type"] = "message"
		base["message_type"] = "group"
		base["sub_type"] = "normal"
		base["message_id"] = int64(0)
		base["group_id"] = int64(0)
		base["user_id"] = int64(0)
		base["anonymous"] = nil
		base["message"] = []Segment{}
		base["raw_message"] = ""
		base["font"] = 26
		base["sender"] = map[string]any{
			"user_id":  int64(0),
			"nickname": "",
			"card":     "",
			"sex":      "unknown",
			"age":      0,
			"area":     "unknown",
			"level":    "",
			"role":     "",
			"title":    "",
		}
	}
	return base
}

// Normalize merges overrides into the template for kind and returns the
// matching event variant. overrides is not modified.
func (n *Normalizer) Normalize(kind Kind, overrides Payload) Event {
	payload := Payload(Merge(n.Template(kind), overrides))
	switch kind {
	case KindLifecycle:
		return LifecycleEvent{payload: payload}
	case KindHeartbeat:
		return HeartbeatEvent{payload: payload}
	default:
		return MessageEvent{kind: kind, payload: payload}
	}
}

// Lifecycle builds a lifecycle event with the given sub type.
func (n *Normalizer) Lifecycle(subType string) Event {
	return n.Normalize(KindLifecycle, Payload{"sub_type": subType})
}

// Heartbeat builds a heartbeat event advertising interval.
func (n *Normalizer) Heartbeat(interval time.Duration) Event {
	return n.Normalize(KindHeartbeat, Payload{"interval": interval.Milliseconds()})
}

// Merge returns base with overrides applied key by key. When both sides hold
// a mapping under the same key they are merged recursively; otherwise the
// override replaces the base value. Neither argument is modified and the
// result shares no mappings with overrides.
func Merge(base, overrides map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		ov, isMap := asMap(v)
		if !isMap {
			out[k] = v
			continue
		}
		if bv, ok := asMap(out[k]); ok {
			out[k] = Merge(bv, ov)
		} else {
			out[k] = Merge(nil, ov)
		}
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Payload:
		return t, true
	default:
		return nil, false
	}
}
