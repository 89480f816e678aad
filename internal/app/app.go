// Package app wires the bridge components together and runs them until the
// process is interrupted.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/autobot-dev/autobot/internal/action"
	"github.com/autobot-dev/autobot/internal/bridge"
	"github.com/autobot-dev/autobot/internal/bus"
	"github.com/autobot-dev/autobot/internal/compose"
	"github.com/autobot-dev/autobot/internal/config"
	"github.com/autobot-dev/autobot/internal/directory"
	"github.com/autobot-dev/autobot/internal/ids"
	"github.com/autobot-dev/autobot/internal/ingest"
	"github.com/autobot-dev/autobot/internal/injector"
	"github.com/autobot-dev/autobot/internal/logging"
	"github.com/autobot-dev/autobot/internal/onebot"
	"github.com/autobot-dev/autobot/internal/store"
)

// Name is reported by get_version_info.
const Name = "autobot"

// Options configures Run.
type Options struct {
	ConfigPath string
	Version    string
	// Stdin feeds the notification pipeline when no notify_command is set.
	Stdin io.Reader
}

// Run loads configuration, starts the bridge and blocks until SIGINT or
// SIGTERM.
func Run(opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Output:  os.Stdout,
		Console: term.IsTerminal(int(os.Stdout.Fd())),
	})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sd := newShutdown(logger, cancel)
	sd.addCloser(func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
		}
	})
	sd.handleSignals()
	defer sd.run()

	a, err := New(cfg, opts.Version, logger)
	if err != nil {
		return err
	}
	sd.addCloser(a.Close)

	src, err := OpenSource(ctx, cfg, opts.Stdin, logger)
	if err != nil {
		return err
	}
	sd.addCloser(func() {
		if err := src.Close(); err != nil {
			logger.Debug("notification source closed", "error", err)
		}
	})

	return a.Run(ctx, src)
}

// App is the wired component graph of one bridge process.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	directory *directory.Directory
	queue     *bus.Queue
	ids       *ids.Sequences
	registry  *action.Registry
	pipeline  *ingest.Pipeline
	manager   *bridge.Manager
}

// New builds every component from cfg without starting anything.
func New(cfg *config.Config, version string, logger *slog.Logger) (*App, error) {
	dir, err := BuildDirectory(cfg)
	if err != nil {
		return nil, fmt.Errorf("chat directory: %w", err)
	}

	inj, err := NewInjector(cfg, logger)
	if err != nil {
		return nil, err
	}

	seq := ids.New()
	queue := bus.NewQueue()
	normalizer := onebot.NewNormalizer(cfg.SelfID)

	sender := compose.NewSender(compose.SenderOptions{
		Directory: dir,
		Injector:  inj,
		SendIDs:   seq.Send,
		Throttle:  compose.NewThrottle(cfg.SendInterval),
		Logger:    logger.With("component", "sender"),
	})
	registry := action.NewRegistry(action.Options{
		Sender:     sender,
		Directory:  dir,
		SelfID:     cfg.SelfID,
		SelfName:   cfg.SelfName,
		AppName:    Name,
		AppVersion: version,
		Logger:     logger.With("component", "action"),
	})
	pipeline := ingest.NewPipeline(ingest.Options{
		Directory:   dir,
		Normalizer:  normalizer,
		ReceiveIDs:  seq.Receive,
		Publisher:   queue,
		SelfName:    cfg.SelfName,
		RepeatCount: cfg.NotificationRepeatCount,
		Logger:      logger.With("component", "ingest"),
	})
	manager := bridge.NewManager(bridge.Config{
		URL:               cfg.WSServer,
		SelfID:            cfg.SelfID,
		ReconnectDelay:    cfg.ReconnectDelay,
		ReconnectMaxDelay: cfg.ReconnectMaxDelay,
		PingInterval:      cfg.PingInterval,
		PingTimeout:       cfg.PingTimeout,
	}, registry, queue, normalizer, logger.With("component", "bridge"))

	logger.Info("bridge configured",
		"wsServer", cfg.WSServer,
		"selfID", cfg.SelfID,
		"chats", dir.Len(),
		"actions", registry.Names(),
		"injector", cfg.Injector.Mode,
	)

	return &App{
		cfg:       cfg,
		logger:    logger,
		directory: dir,
		queue:     queue,
		ids:       seq,
		registry:  registry,
		pipeline:  pipeline,
		manager:   manager,
	}, nil
}

// Run starts the ingestion pipeline and the connection manager and blocks
// until ctx is done. An exhausted notification source stops ingestion only.
func (a *App) Run(ctx context.Context, src ingest.RecordSource) error {
	var g errgroup.Group
	g.Go(func() error {
		err := a.pipeline.Run(ctx, src)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, bus.ErrClosed) {
			a.logger.Error("notification pipeline stopped", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.manager.Run(ctx)
	})
	return g.Wait()
}

// Close releases the event queue. Events still queued are discarded.
func (a *App) Close() {
	a.queue.Close()
	if n := a.queue.Len(); n > 0 {
		a.logger.Warn("events discarded at shutdown", "count", n)
	}
}

// State reports the connection state.
func (a *App) State() bridge.State {
	return a.manager.State()
}

// BuildDirectory merges the chat_db table and the chat_info map.
func BuildDirectory(cfg *config.Config) (*directory.Directory, error) {
	entries, err := directory.ParseChatInfo(cfg.ChatInfo)
	if err != nil {
		return nil, err
	}
	if cfg.ChatDB != "" {
		fromDB, err := store.LoadDirectory(cfg.ChatDB)
		if err != nil {
			return nil, err
		}
		entries = append(fromDB, entries...)
	}
	return directory.New(entries)
}

// NewInjector returns the injector selected by cfg.Injector.Mode.
func NewInjector(cfg *config.Config, logger *slog.Logger) (injector.Injector, error) {
	switch cfg.Injector.Mode {
	case config.InjectorExec:
		inj, err := injector.NewExecInjector(cfg.Injector.Command, logger.With("component", "injector"))
		if err != nil {
			return nil, err
		}
		return inj, nil
	default:
		return injector.NewLogInjector(logger.With("component", "injector")), nil
	}
}

// Source is a closable notification record source.
type Source interface {
	ingest.RecordSource
	io.Closer
}

// OpenSource starts notify_command when configured, otherwise reads stdin.
func OpenSource(ctx context.Context, cfg *config.Config, stdin io.Reader, logger *slog.Logger) (Source, error) {
	logger = logger.With("component", "source")
	if cfg.NotifyCommand != "" {
		src, err := ingest.StartCommandSource(ctx, cfg.NotifyCommand, cfg.NotifyQuoted, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	logger.Info("reading notifications from stdin")
	return ingest.NewLineSource(stdin, cfg.NotifyQuoted, logger), nil
}
