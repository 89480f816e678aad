package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// RecordSource yields raw notification records. Next returns io.EOF once
// the source is exhausted.
type RecordSource interface {
	Next(ctx context.Context) (Record, error)
}

type lineResult struct {
	line string
	err  error
}

// LineSource reads records as pairs of non-empty lines: the chat name
// followed by the content. With Quoted set only the text between the first
// pair of double quotes on each line is used, and lines without quotes are
// ignored.
type LineSource struct {
	lines    chan lineResult
	stop     chan struct{}
	stopOnce sync.Once
	quoted   bool
	logger   *slog.Logger
}

// NewLineSource starts reading r in the background.
func NewLineSource(r io.Reader, quoted bool, logger *slog.Logger) *LineSource {
	s := &LineSource{
		lines:  make(chan lineResult),
		stop:   make(chan struct{}),
		quoted: quoted,
		logger: logger,
	}
	go s.scan(r)
	return s
}

func (s *LineSource) scan(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	defer close(s.lines)
	for sc.Scan() {
		if !s.send(lineResult{line: sc.Text()}) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.send(lineResult{err: err})
	}
}

func (s *LineSource) send(res lineResult) bool {
	select {
	case s.lines <- res:
		return true
	case <-s.stop:
		return false
	}
}

// Close stops the background reader. It does not close the underlying
// reader.
func (s *LineSource) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// Next blocks until two usable lines have been read.
func (s *LineSource) Next(ctx context.Context) (Record, error) {
	var buf [2]string
	n := 0
	for n < 2 {
		var res lineResult
		var ok bool
		select {
		case <-ctx.Done():
			return Record{}, ctx.Err()
		case res, ok = <-s.lines:
		}
		if !ok {
			return Record{}, io.EOF
		}
		if res.err != nil {
			return Record{}, res.err
		}

		line, usable := s.extract(res.line)
		if !usable {
			continue
		}
		buf[n] = line
		n++
	}
	return Record{ChatName: buf[0], Content: buf[1]}, nil
}

func (s *LineSource) extract(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	if !s.quoted {
		return line, true
	}
	_, rest, ok := strings.Cut(line, `"`)
	if !ok {
		s.logger.Debug("unquoted line ignored", "line", line)
		return "", false
	}
	inner, _, _ := strings.Cut(rest, `"`)
	if strings.TrimSpace(inner) == "" {
		return "", false
	}
	return inner, true
}

// CommandSource runs a shell command and reads records from its stdout.
type CommandSource struct {
	*LineSource
	cmd  *exec.Cmd
	once sync.Once
	err  error
}

// StartCommandSource starts `sh -c command`. The process is killed when ctx
// is done.
func StartCommandSource(ctx context.Context, command string, quoted bool, logger *slog.Logger) (*CommandSource, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("notify command stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start notify command: %w", err)
	}
	logger.Info("notification command started", "pid", cmd.Process.Pid)
	return &CommandSource{
		LineSource: NewLineSource(stdout, quoted, logger),
		cmd:        cmd,
	}, nil
}

// Close kills the command if it is still running and waits for it.
func (c *CommandSource) Close() error {
	c.once.Do(func() {
		_ = c.LineSource.Close()
		if c.cmd.ProcessState == nil {
			_ = c.cmd.Process.Kill()
		}
		c.err = c.cmd.Wait()
	})
	return c.err
}
