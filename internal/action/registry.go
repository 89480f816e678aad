// Package action maps OneBot action names to handlers and turns handler
// results into response envelopes.
package action

import (
	"context"
	"log/slog"
	"sort"

	"github.com/autobot-dev/autobot/internal/directory"
	"github.com/autobot-dev/autobot/internal/onebot"
)

// Handler serves one action. It never sets the response status; the
// registry derives it from the returned retcode.
type Handler func(ctx context.Context, params onebot.Params) onebot.Result

// MessageSender delivers a segment list to a chat and returns the new
// message id.
type MessageSender interface {
	Send(ctx context.Context, chatType directory.ChatType, target int64, segs []onebot.Segment) (int64, error)
}

// Options configures the built-in handlers.
type Options struct {
	Sender     MessageSender
	Directory  *directory.Directory
	SelfID     int64
	SelfName   string
	AppName    string
	AppVersion string
	Logger     *slog.Logger
}

// Registry is the static action table of a session.
type Registry struct {
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewRegistry builds the table of built-in actions.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		handlers: make(map[string]Handler),
		logger:   opts.Logger,
	}
	b := &builtins{opts: opts}

	r.Register("send_msg", b.sendMsg)
	r.Register("send_private_msg", b.sendPrivateMsg)
	r.Register("send_group_msg", b.sendGroupMsg)
	r.Register("get_status", getStatus)
	r.Register("can_send_image", canSendImage)
	r.Register("can_send_record", canSendRecord)
	r.Register("get_login_info", b.getLoginInfo)
	r.Register("get_version_info", b.getVersionInfo)
	r.Register("get_friend_list", b.getFriendList)
	r.Register("get_group_list", b.getGroupList)
	return r
}

// Register adds or replaces the handler for name.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Names returns the registered action names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler for req and wraps its result together with the
// request echo. Unknown actions get RetcodeUnsupported and a panicking
// handler gets RetcodeInternal.
func (r *Registry) Dispatch(ctx context.Context, req onebot.ActionRequest) (resp onebot.ActionResponse) {
	h, ok := r.handlers[req.Action]
	if !ok {
		resp = onebot.NewResponse(onebot.Failed(onebot.RetcodeUnsupported, "unsupported action %q", req.Action), req.Echo)
		r.logger.Warn("unsupported action", "action", req.Action, "retcode", resp.Retcode)
		return resp
	}

	defer func() {
		if p := recover(); p != nil {
			resp = onebot.NewResponse(onebot.Failed(onebot.RetcodeInternal, "internal error"), req.Echo)
			r.logger.Error("action handler panicked", "action", req.Action, "panic", p)
		}
	}()

	resp = onebot.NewResponse(h(ctx, req.Params), req.Echo)
	if !resp.OK() {
		r.logger.Warn("action failed", "action", req.Action, "retcode", resp.Retcode, "message", resp.Message)
	} else {
		r.logger.Debug("action served", "action", req.Action)
	}
	return resp
}
