// Package compose turns outbound OneBot messages into ordered input-command
// scripts and executes them through an injector.
package compose

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/autobot-dev/autobot/internal/directory"
	"github.com/autobot-dev/autobot/internal/injector"
	"github.com/autobot-dev/autobot/internal/onebot"
)

// ErrSegment is wrapped by every error raised while resolving a segment.
var ErrSegment = errors.New("invalid segment")

// mentionAll is the qq value OneBot uses for "@everyone".
const mentionAll = "all"

// Compositor converts segment lists into input commands.
type Compositor struct {
	dir    *directory.Directory
	logger *slog.Logger
}

// NewCompositor creates a Compositor resolving mentions through dir.
func NewCompositor(dir *directory.Directory, logger *slog.Logger) *Compositor {
	return &Compositor{dir: dir, logger: logger}
}

// Compose returns the commands that type segs into the open chat.
//
// Consecutive text and json segments are trimmed and buffered into a single
// InputText; any other recognized segment flushes the buffer first. Each
// file is followed by a Focus since sending a file leaves the input box.
// Submit is appended only when at least one command was produced, so a
// message made only of unsupported segments composes to nothing. Unknown
// segment types are skipped; a malformed recognized segment aborts.
func (c *Compositor) Compose(chatType directory.ChatType, segs []onebot.Segment) ([]injector.Command, error) {
	var (
		cmds []injector.Command
		text strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			cmds = append(cmds, injector.InputText(text.String()))
			text.Reset()
		}
	}

	for i, seg := range segs {
		switch seg.Type {
		case onebot.SegmentText, onebot.SegmentJSON:
			key := "text"
			if seg.Type == onebot.SegmentJSON {
				key = "data"
			}
			s, ok := seg.Field(key)
			if !ok {
				return nil, segmentErr(i, seg, "missing data.%s", key)
			}
			text.WriteString(strings.TrimSpace(s))

		case onebot.SegmentAt:
			flush()
			if chatType != directory.Group {
				continue
			}
			qq, ok := seg.Field("qq")
			if !ok {
				return nil, segmentErr(i, seg, "missing data.qq")
			}
			name, err := c.mentionName(qq)
			if err != nil {
				return nil, segmentErr(i, seg, "%v", err)
			}
			cmds = append(cmds, injector.InputAt(name))

		case onebot.SegmentImage:
			flush()
			src, ok := seg.Field("file")
			if !ok || src == "" {
				return nil, segmentErr(i, seg, "missing data.file")
			}
			cmds = append(cmds, injector.InputImage(src))

		case onebot.SegmentFile:
			flush()
			src, ok := seg.Field("file")
			if !ok || src == "" {
				return nil, segmentErr(i, seg, "missing data.file")
			}
			name, _ := seg.Field("name")
			cmds = append(cmds, injector.InputFile(src, name), injector.Focus())

		default:
			c.logger.Warn("unsupported segment skipped", "index", i, "type", seg.Type)
		}
	}
	flush()

	if len(cmds) > 0 {
		cmds = append(cmds, injector.Submit())
	}
	return cmds, nil
}

func (c *Compositor) mentionName(qq string) (string, error) {
	qq = strings.TrimSpace(qq)
	if qq == mentionAll {
		return mentionAll, nil
	}
	id, err := strconv.ParseInt(qq, 10, 64)
	if err != nil {
		return "", fmt.Errorf("bad qq %q", qq)
	}
	if name, ok := c.dir.NameByID(id); ok {
		return name, nil
	}
	return qq, nil
}

func segmentErr(i int, seg onebot.Segment, format string, args ...any) error {
	return fmt.Errorf("%w: segment %d (%s): %s", ErrSegment, i, seg.Type, fmt.Sprintf(format, args...))
}
