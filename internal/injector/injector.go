package injector

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Injector executes input commands against the target application. A
// returned error means the command did not take effect.
type Injector interface {
	Execute(ctx context.Context, cmd Command) error
}

// Run executes cmds in order and stops at the first failure.
func Run(ctx context.Context, inj Injector, cmds []Command) error {
	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := inj.Execute(ctx, cmd); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, cmd.Op, err)
		}
	}
	return nil
}

// LogInjector is a dry-run injector that only logs each command.
type LogInjector struct {
	logger *slog.Logger
}

// NewLogInjector creates a LogInjector.
func NewLogInjector(logger *slog.Logger) *LogInjector {
	return &LogInjector{logger: logger}
}

func (l *LogInjector) Execute(_ context.Context, cmd Command) error {
	l.logger.Info("inject (dry run)", "op", cmd.Op.String(), "args", cmd.Args())
	return nil
}

// ExecInjector runs an external program once per command. The program is
// invoked as argv... <op> <args...> and a non-zero exit is a failure.
type ExecInjector struct {
	argv   []string
	logger *slog.Logger
}

// NewExecInjector creates an ExecInjector for the given argv prefix.
func NewExecInjector(argv []string, logger *slog.Logger) (*ExecInjector, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, fmt.Errorf("exec injector: empty command")
	}
	return &ExecInjector{argv: append([]string(nil), argv...), logger: logger}, nil
}

func (e *ExecInjector) Execute(ctx context.Context, cmd Command) error {
	args := append(append([]string(nil), e.argv[1:]...), cmd.Op.String())
	args = append(args, cmd.Args()...)

	c := exec.CommandContext(ctx, e.argv[0], args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr

	e.logger.Debug("inject", "op", cmd.Op.String(), "args", cmd.Args())
	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", e.argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", e.argv[0], err)
	}
	return nil
}
