package onebot

import (
	"fmt"
	"strings"
)

// Segment types understood by the bridge.
const (
	SegmentText  = "text"
	SegmentJSON  = "json"
	SegmentAt    = "at"
	SegmentImage = "image"
	SegmentFile  = "file"
)

// Segment is one typed piece of a composite message.
type Segment struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// TextSegment returns a text segment.
func TextSegment(text string) Segment {
	return Segment{Type: SegmentText, Data: map[string]any{"text": text}}
}

// AtSegment returns a mention of the given user id.
func AtSegment(userID int64) Segment {
	return Segment{Type: SegmentAt, Data: map[string]any{"qq": userID}}
}

// Field returns data[key] rendered as a string. Numbers are formatted in
// decimal so ids round-trip.
func (s Segment) Field(key string) (string, bool) {
	v, ok := s.Data[key]
	if !ok || v == nil {
		return "", false
	}
	return asString(v)
}

// ParseMessage converts the "message" param into a segment list. It accepts
// an array of {type, data} objects or a plain string, which becomes a single
// text segment.
func ParseMessage(v any) ([]Segment, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		return []Segment{TextSegment(t)}, nil
	case []Segment:
		return t, nil
	case []any:
		segs := make([]Segment, 0, len(t))
		for i, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("segment %d: not an object", i)
			}
			typ, ok := obj["type"].(string)
			if !ok || typ == "" {
				return nil, fmt.Errorf("segment %d: missing type", i)
			}
			data := map[string]any{}
			if raw, ok := obj["data"]; ok && raw != nil {
				d, ok := raw.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("segment %d: data is not an object", i)
				}
				data = d
			}
			segs = append(segs, Segment{Type: typ, Data: data})
		}
		return segs, nil
	default:
		return nil, fmt.Errorf("unsupported message value %T", v)
	}
}
