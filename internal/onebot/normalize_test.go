package onebot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNormalizer() *Normalizer {
	at := time.Unix(1700000000, 0)
	return NewNormalizer(1950154414).WithClock(func() time.Time { return at })
}

func TestNormalize_EmptyOverridesYieldTemplate(t *testing.T) {
	n := fixedNormalizer()
	for _, kind := range []Kind{KindLifecycle, KindHeartbeat, KindPrivateMessage, KindGroupMessage} {
		ev := n.Normalize(kind, Payload{})
		assert.Equal(t, n.Template(kind), ev.Payload(), kind.String())
		assert.Equal(t, kind, ev.Kind())
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n := fixedNormalizer()
	overrides := Payload{
		"message_id": int64(100000001),
		"sender":     map[string]any{"nickname": "A"},
	}

	first := n.Normalize(KindGroupMessage, overrides)
	second := n.Normalize(KindGroupMessage, overrides)
	assert.Equal(t, first.Payload(), second.Payload())
	assert.Equal(t, Payload{
		"message_id": int64(100000001),
		"sender":     map[string]any{"nickname": "A"},
	}, overrides, "overrides must not be mutated")
}

func TestMerge_NestedMappingsMerge(t *testing.T) {
	base := map[string]any{"sender": map[string]any{"user_id": 0, "nickname": ""}}
	got := Merge(base, map[string]any{"sender": map[string]any{"nickname": "A"}})
	assert.Equal(t, map[string]any{"sender": map[string]any{"user_id": 0, "nickname": "A"}}, got)
	assert.Equal(t, "", base["sender"].(map[string]any)["nickname"], "base must not be mutated")
}

func TestMerge_ScalarReplacesMapping(t *testing.T) {
	base := map[string]any{"sender": map[string]any{"user_id": 0, "nickname": ""}}
	got := Merge(base, map[string]any{"sender": "A"})
	assert.Equal(t, map[string]any{"sender": "A"}, got)

	got = Merge(map[string]any{"sender": "A"}, map[string]any{"sender": map[string]any{"nickname": "B"}})
	assert.Equal(t, map[string]any{"sender": map[string]any{"nickname": "B"}}, got)
}

func TestMerge_ResultDoesNotAliasOverrides(t *testing.T) {
	inner := map[string]any{"nickname": "A"}
	got := Merge(nil, map[string]any{"sender": inner})
	got["sender"].(map[string]any)["nickname"] = "changed"
	assert.Equal(t, "A", inner["nickname"])
}

func TestLifecycleAndHeartbeatStamps(t *testing.T) {
	n := fixedNormalizer()

	lc := n.Lifecycle(LifecycleConnect)
	out, err := json.Marshal(lc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"time":1700000000,"self_id":1950154414,"post_type":"meta_event","meta_event_type":"lifecycle","sub_type":"connect"}`, string(out))
	assert.Equal(t, LifecycleConnect, lc.(LifecycleEvent).SubType())

	hb := n.Heartbeat(20 * time.Second)
	out, err = json.Marshal(hb)
	require.NoError(t, err)
	assert.JSONEq(t, `{"time":1700000000,"self_id":1950154414,"post_type":"meta_event","meta_event_type":"heartbeat","status":{"good":true,"online":true},"interval":20000}`, string(out))
	assert.Equal(t, int64(20000), hb.(HeartbeatEvent).IntervalMs())
}

func TestGroupMessageWireShape(t *testing.T) {
	n := fixedNormalizer()
	ev := n.Normalize(KindGroupMessage, Payload{
		"message_id":  int64(100000007),
		"group_id":    int64(1033991906),
		"message":     []Segment{TextSegment("hi")},
		"raw_message": "hi",
		"sender":      map[string]any{"nickname": "Alice", "role": "member"},
	})

	out, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "message", decoded["post_type"])
	assert.Equal(t, "group", decoded["message_type"])
	assert.Equal(t, float64(26), decoded["font"])
	sender := decoded["sender"].(map[string]any)
	assert.Equal(t, "Alice", sender["nickname"])
	assert.Equal(t, "unknown", sender["area"])
	assert.Equal(t, int64(100000007), ev.(MessageEvent).MessageID())
	assert.Equal(t, "hi", ev.(MessageEvent).RawMessage())
}
