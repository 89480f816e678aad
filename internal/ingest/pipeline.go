// Package ingest turns raw desktop notifications into message events.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/autobot-dev/autobot/internal/directory"
	"github.com/autobot-dev/autobot/internal/ids"
	"github.com/autobot-dev/autobot/internal/onebot"
)

// ErrMalformedRecord is returned for group records that carry no
// "nickname：content" separator.
var ErrMalformedRecord = errors.New("malformed notification record")

const (
	mentionMarker     = "[有人@我] "
	contentSeparator  = "："
	placeholderPrefix = "你有"
	placeholderSuffix = "条新通知"
	unknownSenderID   = 0
	groupSenderRole   = "member"
)

// Record is one raw notification: the chat it was shown for and its single
// line of content.
type Record struct {
	ChatName string
	Content  string
}

// Publisher receives forwarded events.
type Publisher interface {
	Push(onebot.Event) error
}

// Options configures a Pipeline.
type Options struct {
	Directory   *directory.Directory
	Normalizer  *onebot.Normalizer
	ReceiveIDs  *ids.Counter
	Publisher   Publisher
	SelfName    string
	RepeatCount int
	Logger      *slog.Logger
}

type dedupKey struct {
	chat    string
	content string
}

// Pipeline deduplicates, classifies and normalizes records. It is owned by
// a single goroutine and is not safe for concurrent use.
type Pipeline struct {
	opts Options
	seen map[dedupKey]int
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{opts: opts, seen: make(map[dedupKey]int)}
}

// Run reads records from src until it is exhausted or ctx is done, pushing
// every forwarded event to the publisher. Malformed records are logged and
// skipped.
func (p *Pipeline) Run(ctx context.Context, src RecordSource) error {
	for {
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			p.opts.Logger.Info("notification source exhausted")
			return nil
		}
		if err != nil {
			return err
		}

		ev, err := p.Handle(rec)
		if err != nil {
			p.opts.Logger.Warn("notification dropped", "chat", rec.ChatName, "content", rec.Content, "error", err)
			continue
		}
		if ev == nil {
			continue
		}
		if err := p.opts.Publisher.Push(ev); err != nil {
			return fmt.Errorf("publish event: %w", err)
		}
	}
}

// Handle processes one record. It returns a nil event when the record is
// filtered out or swallowed as a repeat.
func (p *Pipeline) Handle(rec Record) (onebot.Event, error) {
	chat := strings.TrimSpace(rec.ChatName)
	content := rec.Content

	if isPlaceholder(content) {
		p.opts.Logger.Debug("placeholder notification filtered", "chat", chat, "content", content)
		return nil, nil
	}
	if p.isRepeat(chat, content) {
		p.opts.Logger.Debug("repeated notification swallowed", "chat", chat, "content", content)
		return nil, nil
	}

	chatType, ok := p.opts.Directory.TypeByName(chat)
	if !ok {
		chatType = directory.Group
	}

	var (
		kind      onebot.Kind
		overrides onebot.Payload
	)
	switch chatType {
	case directory.Private:
		kind = onebot.KindPrivateMessage
		overrides = p.privateOverrides(chat, content)
	default:
		kind = onebot.KindGroupMessage
		o, err := p.groupOverrides(chat, content)
		if err != nil {
			return nil, err
		}
		overrides = o
	}

	overrides["message_id"] = p.opts.ReceiveIDs.Next()
	ev := p.opts.Normalizer.Normalize(kind, overrides)
	p.opts.Logger.Info("message received", "kind", kind.String(), "chat", chat, "messageID", overrides["message_id"])
	return ev, nil
}

// isRepeat counts the (chat, content) pair and reports whether this
// occurrence completes a repeat burst and must be dropped.
func (p *Pipeline) isRepeat(chat, content string) bool {
	if p.opts.RepeatCount <= 1 {
		return false
	}
	key := dedupKey{chat: chat, content: content}
	p.seen[key]++
	if p.seen[key] >= p.opts.RepeatCount {
		delete(p.seen, key)
		return true
	}
	return false
}

func (p *Pipeline) groupOverrides(chat, content string) (onebot.Payload, error) {
	var segs []onebot.Segment
	if rest, ok := strings.CutPrefix(content, mentionMarker); ok {
		content = rest
		if p.opts.SelfName != "" {
			content = strings.ReplaceAll(content, "@"+p.opts.SelfName+" ", "")
		}
		segs = append(segs, onebot.AtSegment(p.opts.Normalizer.SelfID()))
	}

	nickname, raw, ok := strings.Cut(content, contentSeparator)
	if !ok {
		return nil, fmt.Errorf("%w: no separator in %q", ErrMalformedRecord, content)
	}
	nickname = strings.TrimSpace(nickname)
	senderID := p.idByName(nickname)
	segs = append(segs, onebot.TextSegment(raw))

	return onebot.Payload{
		"group_id":    p.idByName(chat),
		"user_id":     senderID,
		"message":     segs,
		"raw_message": raw,
		"sender": onebot.Payload{
			"user_id":  senderID,
			"nickname": nickname,
			"role":     groupSenderRole,
		},
	}, nil
}

func (p *Pipeline) privateOverrides(chat, content string) onebot.Payload {
	userID := p.idByName(chat)
	return onebot.Payload{
		"user_id":     userID,
		"message":     []onebot.Segment{onebot.TextSegment(content)},
		"raw_message": content,
		"sender": onebot.Payload{
			"user_id":  userID,
			"nickname": chat,
		},
	}
}

func (p *Pipeline) idByName(name string) int64 {
	if id, ok := p.opts.Directory.IDByName(name); ok {
		return id
	}
	return unknownSenderID
}

func isPlaceholder(content string) bool {
	return strings.HasPrefix(content, placeholderPrefix) && strings.HasSuffix(content, placeholderSuffix)
}
