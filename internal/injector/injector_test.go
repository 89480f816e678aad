package injector

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInjector struct {
	cmds   []Command
	failOn Op
}

func (r *recordingInjector) Execute(_ context.Context, cmd Command) error {
	r.cmds = append(r.cmds, cmd)
	if cmd.Op == r.failOn {
		return errors.New("boom")
	}
	return nil
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	rec := &recordingInjector{failOn: OpInputImage}
	err := Run(context.Background(), rec, []Command{InputText("a"), InputImage("x.png"), Submit()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input_image")
	assert.Equal(t, []Command{InputText("a"), InputImage("x.png")}, rec.cmds)
}

func TestRun_CancelledContext(t *testing.T) {
	rec := &recordingInjector{failOn: -1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, rec, []Command{Submit()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.cmds)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "submit", Submit().String())
	assert.Equal(t, `input_file["/tmp/a.txt" "a.txt"]`, InputFile("/tmp/a.txt", "a.txt").String())
	assert.Equal(t, "op(42)", Op(42).String())
}

func TestExecInjector(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	logger := slog.Default()

	ok, err := NewExecInjector([]string{"sh", "-c", `test "$0" = input_text && test "$1" = hello`}, logger)
	require.NoError(t, err)
	assert.NoError(t, ok.Execute(context.Background(), InputText("hello")))
	assert.Error(t, ok.Execute(context.Background(), Submit()))

	_, err = NewExecInjector(nil, logger)
	assert.Error(t, err)
}
