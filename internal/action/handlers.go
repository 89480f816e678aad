package action

import (
	"context"

	"github.com/autobot-dev/autobot/internal/directory"
	"github.com/autobot-dev/autobot/internal/onebot"
)

const protocolVersion = "v11"

type builtins struct {
	opts Options
}

func (b *builtins) sendMsg(ctx context.Context, p onebot.Params) onebot.Result {
	var chatType directory.ChatType
	switch mt := p.String("message_type"); {
	case mt != "":
		t, err := directory.ParseChatType(mt)
		if err != nil {
			return onebot.Failed(onebot.RetcodeBadRequest, "invalid message_type %q", mt)
		}
		chatType = t
	case p.Has("group_id"):
		chatType = directory.Group
	case p.Has("user_id"):
		chatType = directory.Private
	default:
		return onebot.Failed(onebot.RetcodeBadRequest, "message_type cannot be inferred")
	}
	return b.send(ctx, chatType, p)
}

func (b *builtins) sendPrivateMsg(ctx context.Context, p onebot.Params) onebot.Result {
	return b.send(ctx, directory.Private, p)
}

func (b *builtins) sendGroupMsg(ctx context.Context, p onebot.Params) onebot.Result {
	return b.send(ctx, directory.Group, p)
}

func (b *builtins) send(ctx context.Context, chatType directory.ChatType, p onebot.Params) onebot.Result {
	key := "user_id"
	if chatType == directory.Group {
		key = "group_id"
	}
	target, ok := p.ID(key)
	if !ok {
		return onebot.Failed(onebot.RetcodeBadRequest, "missing or invalid %s", key)
	}

	segs, err := onebot.ParseMessage(p["message"])
	if err != nil {
		return onebot.Failed(onebot.RetcodeBadRequest, "invalid message: %v", err)
	}
	if len(segs) == 0 {
		return onebot.Failed(onebot.RetcodeBadRequest, "empty message")
	}

	id, err := b.opts.Sender.Send(ctx, chatType, target, segs)
	if err != nil {
		return onebot.Failed(onebot.RetcodeSendFailed, "send failed: %v", err)
	}
	return onebot.Result{Data: map[string]any{"message_id": id}}
}

func getStatus(context.Context, onebot.Params) onebot.Result {
	return onebot.Result{Data: map[string]any{
		"online": true,
		"good":   true,
		"stat":   map[string]any{},
	}}
}

func canSendImage(context.Context, onebot.Params) onebot.Result {
	return onebot.Result{Data: map[string]any{"yes": true}}
}

func canSendRecord(context.Context, onebot.Params) onebot.Result {
	return onebot.Result{Data: map[string]any{"yes": false}}
}

func (b *builtins) getLoginInfo(context.Context, onebot.Params) onebot.Result {
	return onebot.Result{Data: map[string]any{
		"user_id":  b.opts.SelfID,
		"nickname": b.opts.SelfName,
	}}
}

func (b *builtins) getVersionInfo(context.Context, onebot.Params) onebot.Result {
	return onebot.Result{Data: map[string]any{
		"app_name":         b.opts.AppName,
		"app_version":      b.opts.AppVersion,
		"protocol_version": protocolVersion,
	}}
}

func (b *builtins) getFriendList(context.Context, onebot.Params) onebot.Result {
	entries := b.opts.Directory.Entries(directory.Private)
	friends := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		friends = append(friends, map[string]any{
			"user_id":  e.ID,
			"nickname": e.Name,
			"remark":   e.Name,
		})
	}
	return onebot.Result{Data: friends}
}

func (b *builtins) getGroupList(context.Context, onebot.Params) onebot.Result {
	entries := b.opts.Directory.Entries(directory.Group)
	groups := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		groups = append(groups, map[string]any{
			"group_id":         e.ID,
			"group_name":       e.Name,
			"member_count":     0,
			"max_member_count": 0,
		})
	}
	return onebot.Result{Data: groups}
}
