package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobot-dev/autobot/internal/directory"
)

var envKeys = []string{
	"LOG_LEVEL", "LOG_FILE", "WS_SERVER", "SELF_ID", "SELF_NAME",
	"RECONNECT_DELAY", "RECONNECT_MAX_DELAY", "PING_INTERVAL", "PING_TIMEOUT",
	"NOTIFICATION_REPEAT_COUNT", "NOTIFY_COMMAND", "NOTIFY_QUOTED",
	"CHAT_DB", "SEND_INTERVAL", "INJECTOR_MODE", "INJECTOR_COMMAND",
}

// clearEnv unsets every override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(EnvPrefix+key, "")
		os.Unsetenv(EnvPrefix + key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalYAML = `
ws_server: ws://127.0.0.1:8080/onebot/v11/ws
self_id: 10001
`

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(10001), cfg.SelfID)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	assert.Zero(t, cfg.ReconnectMaxDelay)
	assert.Equal(t, 20*time.Second, cfg.PingInterval)
	assert.Equal(t, 10*time.Second, cfg.PingTimeout)
	assert.Equal(t, 2, cfg.NotificationRepeatCount)
	assert.True(t, cfg.NotifyQuoted)
	assert.Equal(t, InjectorLog, cfg.Injector.Mode)
	assert.Empty(t, cfg.ChatInfo)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, `
log_level: debug
ws_server: wss://bot.example.com/ws
self_id: 42
self_name: " helper "
reconnect_delay: 2s
reconnect_max_delay: 1m
ping_interval: 15s
notification_repeat_count: 3
notify_command: dbus-monitor
notify_quoted: false
send_interval: 500ms
chat_info:
  "1033991906":
    chat_name: Team
    chat_type: group
  "20001":
    chat_name: Alice
    chat_type: private
injector:
  mode: exec
  command: [xdotool-wrapper, --window, QQ]
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "helper", cfg.SelfName)
	assert.Equal(t, 2*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, time.Minute, cfg.ReconnectMaxDelay)
	assert.Equal(t, 15*time.Second, cfg.PingInterval)
	assert.Equal(t, 3, cfg.NotificationRepeatCount)
	assert.Equal(t, "dbus-monitor", cfg.NotifyCommand)
	assert.False(t, cfg.NotifyQuoted)
	assert.Equal(t, 500*time.Millisecond, cfg.SendInterval)
	assert.Equal(t, directory.ChatInfo{ChatName: "Team", ChatType: "group"}, cfg.ChatInfo["1033991906"])
	assert.Equal(t, InjectorExec, cfg.Injector.Mode)
	assert.Equal(t, []string{"xdotool-wrapper", "--window", "QQ"}, cfg.Injector.Command)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTOBOT_SELF_ID", "777")
	t.Setenv("AUTOBOT_PING_TIMEOUT", "3s")
	t.Setenv("AUTOBOT_NOTIFY_QUOTED", "false")
	t.Setenv("AUTOBOT_INJECTOR_MODE", "EXEC")
	t.Setenv("AUTOBOT_INJECTOR_COMMAND", "/usr/local/bin/qq-input --dry")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, int64(777), cfg.SelfID)
	assert.Equal(t, 3*time.Second, cfg.PingTimeout)
	assert.False(t, cfg.NotifyQuoted)
	assert.Equal(t, InjectorExec, cfg.Injector.Mode)
	assert.Equal(t, []string{"/usr/local/bin/qq-input", "--dry"}, cfg.Injector.Command)
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTOBOT_WS_SERVER", "ws://localhost:6700")
	t.Setenv("AUTOBOT_SELF_ID", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:6700", cfg.WSServer)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, minimalYAML+"bogus_key: 1\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"http url":          func(c *Config) { c.WSServer = "http://localhost" },
		"empty url":         func(c *Config) { c.WSServer = "" },
		"zero self id":      func(c *Config) { c.SelfID = 0 },
		"tiny reconnect":    func(c *Config) { c.ReconnectDelay = 5 },
		"negative max":      func(c *Config) { c.ReconnectMaxDelay = -time.Second },
		"tiny ping":         func(c *Config) { c.PingInterval = time.Millisecond },
		"zero repeat count": func(c *Config) { c.NotificationRepeatCount = 0 },
		"negative interval": func(c *Config) { c.SendInterval = -1 },
		"unknown injector":  func(c *Config) { c.Injector.Mode = "robot" },
		"exec no command":   func(c *Config) { c.Injector.Mode = InjectorExec },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.WSServer = "ws://localhost:8080"
			cfg.SelfID = 1
			require.NoError(t, cfg.validate())

			mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}
