// Package config loads the bridge configuration from a YAML file, a dotenv
// file and AUTOBOT_* environment variables, in increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/autobot-dev/autobot/internal/directory"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "AUTOBOT_"

// Injector modes.
const (
	InjectorLog  = "log"
	InjectorExec = "exec"
)

const (
	minReconnectDelay = 100 * time.Millisecond
	minPingPeriod     = time.Second
)

// Config holds all application configuration. It is built once at startup
// and passed by value into constructors.
type Config struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile  string `yaml:"log_file"  env:"LOG_FILE"`

	// OneBot session
	WSServer          string        `yaml:"ws_server"           env:"WS_SERVER"`
	SelfID            int64         `yaml:"self_id"             env:"SELF_ID"`
	SelfName          string        `yaml:"self_name"           env:"SELF_NAME"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"     env:"RECONNECT_DELAY"`
	ReconnectMaxDelay time.Duration `yaml:"reconnect_max_delay" env:"RECONNECT_MAX_DELAY"`
	PingInterval      time.Duration `yaml:"ping_interval"       env:"PING_INTERVAL"`
	PingTimeout       time.Duration `yaml:"ping_timeout"        env:"PING_TIMEOUT"`

	// Notification ingestion
	NotificationRepeatCount int    `yaml:"notification_repeat_count" env:"NOTIFICATION_REPEAT_COUNT"`
	NotifyCommand           string `yaml:"notify_command"            env:"NOTIFY_COMMAND"`
	NotifyQuoted            bool   `yaml:"notify_quoted"             env:"NOTIFY_QUOTED"`

	// Chat directory
	ChatDB   string                        `yaml:"chat_db" env:"CHAT_DB"`
	ChatInfo map[string]directory.ChatInfo `yaml:"chat_info"`

	// Sending
	SendInterval time.Duration  `yaml:"send_interval" env:"SEND_INTERVAL"`
	Injector     InjectorConfig `yaml:"injector"      envPrefix:"INJECTOR_"`
}

// InjectorConfig selects how input commands reach the desktop client.
type InjectorConfig struct {
	Mode    string   `yaml:"mode"    env:"MODE"`
	Command []string `yaml:"command" env:"COMMAND" envSeparator:" "`
}

// Default returns the configuration used for keys absent from every source.
func Default() *Config {
	return &Config{
		LogLevel:                "info",
		ReconnectDelay:          5 * time.Second,
		PingInterval:            20 * time.Second,
		PingTimeout:             10 * time.Second,
		NotificationRepeatCount: 2,
		NotifyQuoted:            true,
		Injector:                InjectorConfig{Mode: InjectorLog},
	}
}

// Load reads the YAML file at path (a missing file is not an error), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := decodeYAML(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.WSServer = strings.TrimSpace(cfg.WSServer)
	cfg.SelfName = strings.TrimSpace(cfg.SelfName)
	cfg.Injector.Mode = strings.ToLower(strings.TrimSpace(cfg.Injector.Mode))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.WSServer)
	if c.WSServer == "" || err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("ws_server must be a ws:// or wss:// URL, got %q", c.WSServer)
	}
	if c.SelfID <= 0 {
		return fmt.Errorf("self_id must be > 0")
	}
	if c.ReconnectDelay < minReconnectDelay {
		return fmt.Errorf("reconnect_delay must be >= %s", minReconnectDelay)
	}
	if c.ReconnectMaxDelay < 0 {
		return fmt.Errorf("reconnect_max_delay cannot be negative")
	}
	if c.PingInterval < minPingPeriod || c.PingTimeout < minPingPeriod {
		return fmt.Errorf("ping_interval and ping_timeout must be >= %s", minPingPeriod)
	}
	if c.NotificationRepeatCount < 1 {
		return fmt.Errorf("notification_repeat_count must be >= 1")
	}
	if c.SendInterval < 0 {
		return fmt.Errorf("send_interval cannot be negative")
	}
	switch c.Injector.Mode {
	case InjectorLog:
	case InjectorExec:
		if len(c.Injector.Command) == 0 {
			return fmt.Errorf("injector.command is required when injector.mode=%s", InjectorExec)
		}
	default:
		return fmt.Errorf("unknown injector.mode %q", c.Injector.Mode)
	}
	return nil
}
