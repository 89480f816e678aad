package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/autobot-dev/autobot/internal/directory"
	"github.com/autobot-dev/autobot/internal/ids"
	"github.com/autobot-dev/autobot/internal/injector"
	"github.com/autobot-dev/autobot/internal/onebot"
)

// ErrNothingToSend is returned when a message composes to no commands.
var ErrNothingToSend = errors.New("message has no sendable content")

// Sender delivers composed messages to a chat through an injector.
type Sender struct {
	compositor *Compositor
	inj        injector.Injector
	dir        *directory.Directory
	sendIDs    *ids.Counter
	throttle   *Throttle
	logger     *slog.Logger
}

// SenderOptions configures a Sender.
type SenderOptions struct {
	Directory *directory.Directory
	Injector  injector.Injector
	SendIDs   *ids.Counter
	Throttle  *Throttle
	Logger    *slog.Logger
}

// NewSender creates a Sender.
func NewSender(opts SenderOptions) *Sender {
	return &Sender{
		compositor: NewCompositor(opts.Directory, opts.Logger),
		inj:        opts.Injector,
		dir:        opts.Directory,
		sendIDs:    opts.SendIDs,
		throttle:   opts.Throttle,
		logger:     opts.Logger,
	}
}

// Send opens the target chat, types the message and submits it, returning
// the new send id. A Reset command is always issued afterwards, whether or
// not the send succeeded.
func (s *Sender) Send(ctx context.Context, chatType directory.ChatType, target int64, segs []onebot.Segment) (int64, error) {
	if err := s.throttle.Wait(ctx, target); err != nil {
		return 0, err
	}

	defer func() {
		if err := s.inj.Execute(context.WithoutCancel(ctx), injector.Reset()); err != nil {
			s.logger.Warn("reset after send failed", "target", target, "error", err)
		}
	}()

	cmds, err := s.compositor.Compose(chatType, segs)
	if err != nil {
		return 0, err
	}
	if len(cmds) == 0 {
		return 0, ErrNothingToSend
	}

	script := make([]injector.Command, 0, len(cmds)+2)
	script = append(script, injector.Open(s.chatName(target)), injector.Focus())
	script = append(script, cmds...)

	if err := injector.Run(ctx, s.inj, script); err != nil {
		return 0, fmt.Errorf("send to %d: %w", target, err)
	}

	id := s.sendIDs.Next()
	s.logger.Debug("message sent", "target", target, "chatType", string(chatType), "messageID", id, "commands", len(script))
	return id, nil
}

func (s *Sender) chatName(id int64) string {
	if name, ok := s.dir.NameByID(id); ok {
		return name
	}
	return strconv.FormatInt(id, 10)
}
