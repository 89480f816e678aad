package action

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobot-dev/autobot/internal/compose"
	"github.com/autobot-dev/autobot/internal/directory"
	"github.com/autobot-dev/autobot/internal/ids"
	"github.com/autobot-dev/autobot/internal/injector"
	"github.com/autobot-dev/autobot/internal/onebot"
)

type recordingInjector struct {
	cmds []injector.Command
	err  error
}

func (r *recordingInjector) Execute(_ context.Context, cmd injector.Command) error {
	r.cmds = append(r.cmds, cmd)
	if cmd.Op == injector.OpSubmit {
		return r.err
	}
	return nil
}

type fixture struct {
	reg *Registry
	inj *recordingInjector
	seq *ids.Sequences
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir, err := directory.New([]directory.Entry{
		{ID: 123, Name: "Team", Type: directory.Group},
		{ID: 456, Name: "Alice", Type: directory.Private},
	})
	require.NoError(t, err)

	inj := &recordingInjector{}
	seq := ids.NewSeeded(41, 100_000_000)
	sender := compose.NewSender(compose.SenderOptions{
		Directory: dir,
		Injector:  inj,
		SendIDs:   seq.Send,
		Logger:    logger,
	})
	reg := NewRegistry(Options{
		Sender:     sender,
		Directory:  dir,
		SelfID:     10001,
		SelfName:   "bot",
		AppName:    "autobot",
		AppVersion: "dev",
		Logger:     logger,
	})
	return &fixture{reg: reg, inj: inj, seq: seq}
}

func (f *fixture) dispatch(t *testing.T, frame string) map[string]any {
	t.Helper()
	req, err := onebot.DecodeRequest([]byte(frame))
	require.NoError(t, err)
	resp := f.reg.Dispatch(context.Background(), req)

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestDispatch_SendGroupMsg(t *testing.T) {
	f := newFixture(t)
	out := f.dispatch(t, `{"action":"send_group_msg","params":{"group_id":123,"message":[{"type":"text","data":{"text":"hi"}}]},"echo":"e1"}`)

	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, float64(0), out["retcode"])
	assert.Equal(t, "e1", out["echo"])
	assert.Equal(t, map[string]any{"message_id": float64(42)}, out["data"])
	assert.Equal(t, []injector.Command{
		injector.Open("Team"),
		injector.Focus(),
		injector.InputText("hi"),
		injector.Submit(),
		injector.Reset(),
	}, f.inj.cmds)
}

func TestDispatch_SendMsgInfersType(t *testing.T) {
	f := newFixture(t)

	out := f.dispatch(t, `{"action":"send_msg","params":{"user_id":"456","message":"yo"},"echo":1}`)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, float64(1), out["echo"])
	assert.Equal(t, injector.Open("Alice"), f.inj.cmds[0])

	f.inj.cmds = nil
	out = f.dispatch(t, `{"action":"send_msg","params":{"group_id":123,"user_id":456,"message":[{"type":"at","data":{"qq":"456"}}]}}`)
	assert.Equal(t, "ok", out["status"])
	assert.Contains(t, f.inj.cmds, injector.InputAt("Alice"))
}

func TestDispatch_BadRequests(t *testing.T) {
	f := newFixture(t)
	frames := map[string]string{
		"no type":        `{"action":"send_msg","params":{"message":"x"}}`,
		"bad type":       `{"action":"send_msg","params":{"message_type":"channel","group_id":1,"message":"x"}}`,
		"no target":      `{"action":"send_group_msg","params":{"message":"x"}}`,
		"zero target":    `{"action":"send_private_msg","params":{"user_id":0,"message":"x"}}`,
		"empty message":  `{"action":"send_group_msg","params":{"group_id":123,"message":[]}}`,
		"broken segment": `{"action":"send_group_msg","params":{"group_id":123,"message":[{"data":{}}]}}`,
	}
	for name, frame := range frames {
		t.Run(name, func(t *testing.T) {
			out := f.dispatch(t, frame)
			assert.Equal(t, "failed", out["status"])
			assert.Equal(t, float64(onebot.RetcodeBadRequest), out["retcode"])
		})
	}
	assert.Empty(t, f.inj.cmds)
	assert.Equal(t, int64(41), f.seq.Send.Current())
}

func TestDispatch_SendFailure(t *testing.T) {
	f := newFixture(t)
	f.inj.err = errors.New("window not found")

	out := f.dispatch(t, `{"action":"send_private_msg","params":{"user_id":456,"message":"x"},"echo":"e2"}`)
	assert.Equal(t, "failed", out["status"])
	assert.Equal(t, float64(onebot.RetcodeSendFailed), out["retcode"])
	assert.Equal(t, "e2", out["echo"])
	assert.Contains(t, out["message"], "window not found")
	assert.Equal(t, injector.Reset(), f.inj.cmds[len(f.inj.cmds)-1])
}

func TestDispatch_Unsupported(t *testing.T) {
	f := newFixture(t)
	out := f.dispatch(t, `{"action":"delete_msg","params":{"message_id":1},"echo":"e3"}`)
	assert.Equal(t, "failed", out["status"])
	assert.Equal(t, float64(onebot.RetcodeUnsupported), out["retcode"])
	assert.Equal(t, "e3", out["echo"])
}

func TestDispatch_PanicIsInternalError(t *testing.T) {
	f := newFixture(t)
	f.reg.Register("explode", func(context.Context, onebot.Params) onebot.Result { panic("boom") })

	out := f.dispatch(t, `{"action":"explode","echo":"e4"}`)
	assert.Equal(t, "failed", out["status"])
	assert.Equal(t, float64(onebot.RetcodeInternal), out["retcode"])
	assert.Equal(t, "e4", out["echo"])
}

func TestDispatch_ReadOnlyActions(t *testing.T) {
	f := newFixture(t)

	status := f.dispatch(t, `{"action":"get_status"}`)
	assert.Equal(t, map[string]any{"online": true, "good": true, "stat": map[string]any{}}, status["data"])
	assert.Equal(t, "", status["echo"])

	img := f.dispatch(t, `{"action":"can_send_image"}`)
	assert.Equal(t, map[string]any{"yes": true}, img["data"])

	login := f.dispatch(t, `{"action":"get_login_info"}`)
	assert.Equal(t, map[string]any{"user_id": float64(10001), "nickname": "bot"}, login["data"])

	groups := f.dispatch(t, `{"action":"get_group_list"}`)
	require.Len(t, groups["data"], 1)
	assert.Equal(t, "Team", groups["data"].([]any)[0].(map[string]any)["group_name"])

	friends := f.dispatch(t, `{"action":"get_friend_list"}`)
	require.Len(t, friends["data"], 1)
	assert.Equal(t, float64(456), friends["data"].([]any)[0].(map[string]any)["user_id"])

	version := f.dispatch(t, `{"action":"get_version_info"}`)
	assert.Equal(t, "v11", version["data"].(map[string]any)["protocol_version"])
}

func TestNames(t *testing.T) {
	f := newFixture(t)
	names := f.reg.Names()
	assert.Contains(t, names, "send_msg")
	assert.Contains(t, names, "get_status")
	assert.IsIncreasing(t, names)
}
