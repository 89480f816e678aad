// Package bridge owns the reverse WebSocket session to the OneBot
// controller: it dials, announces the bot, serves actions, pushes events and
// reconnects forever.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/autobot-dev/autobot/internal/onebot"
	"github.com/autobot-dev/autobot/internal/retry"
)

const (
	clientRole       = "Universal"
	userAgent        = "OneBot/11"
	handshakeTimeout = 10 * time.Second
)

// errTaskStopped ends a connection cycle when a task returns without error.
var errTaskStopped = errors.New("connection task stopped")

// Config holds the session parameters.
type Config struct {
	URL               string
	SelfID            int64
	ReconnectDelay    time.Duration
	ReconnectMaxDelay time.Duration
	PingInterval      time.Duration
	PingTimeout       time.Duration
}

// Dispatcher serves one decoded action request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req onebot.ActionRequest) onebot.ActionResponse
}

// EventSource yields queued events in order. Pop blocks until an event is
// available or ctx is done.
type EventSource interface {
	Pop(ctx context.Context) (onebot.Event, error)
}

// Manager runs the connection lifecycle:
// disconnected -> connecting -> connected -> teardown -> connecting ...
type Manager struct {
	cfg        Config
	dispatcher Dispatcher
	events     EventSource
	normalizer *onebot.Normalizer
	dialer     *websocket.Dialer
	backoff    retry.Backoff
	logger     *slog.Logger

	state atomic.Int32
}

// NewManager creates a Manager. It does not connect until Run is called.
func NewManager(cfg Config, dispatcher Dispatcher, events EventSource, normalizer *onebot.Normalizer, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:        cfg,
		dispatcher: dispatcher,
		events:     events,
		normalizer: normalizer,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		backoff: retry.Backoff{Base: cfg.ReconnectDelay, Max: cfg.ReconnectMaxDelay},
		logger:  logger,
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(s State) {
	if prev := State(m.state.Swap(int32(s))); prev != s {
		m.logger.Debug("connection state changed", "from", prev.String(), "to", s.String())
	}
}

// Run connects and reconnects until ctx is done. Connection errors are
// logged and never returned.
func (m *Manager) Run(ctx context.Context) error {
	defer m.setState(Disconnected)

	failures := 0
	for {
		connected, err := m.session(ctx)
		if ctx.Err() != nil {
			m.logger.Info("bridge stopped")
			return nil
		}
		if connected {
			failures = 0
		}
		failures++

		delay := m.backoff.Delay(failures)
		m.logger.Warn("connection lost, reconnecting", "error", err, "delay", delay.String(), "attempt", failures)
		if err := retry.Sleep(ctx, delay); err != nil {
			m.logger.Info("bridge stopped")
			return nil
		}
	}
}

func (m *Manager) header() http.Header {
	h := http.Header{}
	h.Set("X-Self-ID", strconv.FormatInt(m.cfg.SelfID, 10))
	h.Set("X-Client-Role", clientRole)
	h.Set("User-Agent", userAgent)
	return h
}

// session runs one connection cycle. It reports whether the handshake
// succeeded and the error that ended the cycle.
func (m *Manager) session(ctx context.Context) (bool, error) {
	m.setState(Connecting)
	ws, resp, err := m.dialer.DialContext(ctx, m.cfg.URL, m.header())
	if err != nil {
		m.setState(Disconnected)
		if resp != nil {
			return false, fmt.Errorf("dial %s: %w (status %d)", m.cfg.URL, err, resp.StatusCode)
		}
		return false, fmt.Errorf("dial %s: %w", m.cfg.URL, err)
	}

	c := newConn(ws, m.cfg.PingInterval, m.cfg.PingTimeout)
	defer c.close()

	log := m.logger.With("conn", uuid.NewString())
	m.setState(Connected)
	log.Info("connected", "url", m.cfg.URL, "selfID", m.cfg.SelfID)

	if err := c.writeJSON(m.normalizer.Lifecycle(onebot.LifecycleConnect)); err != nil {
		m.setState(Teardown)
		return true, fmt.Errorf("send lifecycle: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	task := func(name string, fn func(context.Context, *conn, *slog.Logger) error) {
		g.Go(func() error {
			err := fn(gctx, c, log)
			if err == nil {
				err = errTaskStopped
			}
			log.Debug("connection task ended", "task", name, "error", err)
			return fmt.Errorf("%s: %w", name, err)
		})
	}
	task("receiver", m.receive)
	task("heartbeat", m.heartbeat)
	task("drain", m.drain)
	task("keepalive", m.keepalive)
	g.Go(func() error {
		<-gctx.Done()
		c.close()
		return nil
	})

	err = g.Wait()
	m.setState(Teardown)
	return true, err
}

// receive serves inbound action frames one at a time.
func (m *Manager) receive(ctx context.Context, c *conn, log *slog.Logger) error {
	for {
		frame, err := c.read()
		if err != nil {
			return err
		}

		var resp onebot.ActionResponse
		req, err := onebot.DecodeRequest(frame)
		switch {
		case err != nil && len(req.Echo) == 0:
			log.Warn("malformed frame dropped", "error", err, "frame", string(frame))
			continue
		case err != nil:
			resp = onebot.NewResponse(onebot.Failed(onebot.RetcodeInternal, "%v", err), req.Echo)
			log.Warn("malformed request", "error", err, "echo", string(req.Echo))
		default:
			log.Debug("action received", "action", req.Action, "echo", string(req.Echo))
			resp = m.dispatcher.Dispatch(ctx, req)
		}

		if err := c.writeJSON(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		c.extendReadDeadline()
	}
}

// heartbeat writes a heartbeat event every ping interval, bypassing the
// event queue.
func (m *Manager) heartbeat(ctx context.Context, c *conn, log *slog.Logger) error {
	log.Debug("heartbeat started", "interval", m.cfg.PingInterval.String())
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.writeJSON(m.normalizer.Heartbeat(m.cfg.PingInterval)); err != nil {
				return err
			}
		}
	}
}

// drain writes queued events in arrival order. An event popped while the
// connection is torn down is lost.
func (m *Manager) drain(ctx context.Context, c *conn, log *slog.Logger) error {
	for {
		ev, err := m.events.Pop(ctx)
		if err != nil {
			return err
		}
		if err := c.writeJSON(ev); err != nil {
			log.Warn("event lost", "kind", ev.Kind().String(), "error", err)
			return err
		}
		log.Debug("event sent", "kind", ev.Kind().String())
	}
}

// keepalive sends transport pings; a missing pong lets the read deadline
// expire, which ends the receiver.
func (m *Manager) keepalive(ctx context.Context, c *conn, _ *slog.Logger) error {
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}
