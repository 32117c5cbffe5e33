package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 500
  public_url: "https://party.example.com"

redis:
  enabled: true
  addr: "redis:6379"
  password: "secret"
  db: 1

game:
  max_rounds: 3
  phase_seconds: 45
  vote_seconds: 30
  room_timeout: 15
  prompts:
    - "Who stole the Stone?"
    - "Why is the tavern empty?"

security:
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"
  rate_limit:
    max_per_second: 20
    max_per_minute: 120
    ban_duration: 120
  message_limit:
    max_per_second: 50
    max_strikes: 3

log:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 500, cfg.Server.MaxConnections)
	assert.Equal(t, "https://party.example.com", cfg.Server.PublicURL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, 3, cfg.Game.MaxRounds)
	assert.Equal(t, 45, cfg.Game.PhaseSeconds)
	assert.Equal(t, 30, cfg.Game.VoteSeconds)
	assert.Equal(t, defaultMaxNameLength, cfg.Game.MaxNameLength)
	assert.Len(t, cfg.Game.Prompts, 2)
	assert.Len(t, cfg.Security.AllowedOrigins, 2)
	assert.Equal(t, 50, cfg.Security.MessageLimit.MaxPerSecond)
	assert.Equal(t, 3, cfg.Security.MessageLimit.MaxStrikes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMaxConnections, cfg.Server.MaxConnections)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, 4, cfg.Game.MaxRounds)
	assert.Equal(t, 60, cfg.Game.PhaseSeconds)
	assert.Equal(t, 0, cfg.Game.VoteSeconds)
	assert.Equal(t, 20, cfg.Game.MaxNameLength)
	assert.Empty(t, cfg.Game.Prompts)
	assert.Equal(t, defaultAllowedOrigins, cfg.Security.AllowedOrigins)
	assert.Equal(t, defaultMessageMaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond)
	assert.Equal(t, defaultMessageMaxStrikes, cfg.Security.MessageLimit.MaxStrikes)
	assert.Equal(t, defaultLogLevel, cfg.Log.Level)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMaxRounds, cfg.Game.MaxRounds)

	// Callers must not be able to mutate the package default through the slice.
	cfg.Security.AllowedOrigins[0] = "changed"
	assert.NotEqual(t, "changed", defaultAllowedOrigins[0])
}

func TestDurationMethods(t *testing.T) {
	t.Parallel()

	game := &GameConfig{PhaseSeconds: 60, RoomTimeout: 10}
	assert.Equal(t, 60*time.Second, game.PhaseDuration())
	assert.Equal(t, 10*time.Minute, game.RoomTimeoutDuration())

	rate := &RateLimitConfig{BanDuration: 120}
	assert.Equal(t, 120*time.Second, rate.BanDurationTime())
}

func TestLoadFromEnv(t *testing.T) {
	// Not parallel: modifies the environment.
	t.Setenv("SERVER_HOST", "env-host")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "env-redis:6380")
	t.Setenv("GAME_MAX_ROUNDS", "2")
	t.Setenv("GAME_PHASE_SECONDS", "not-a-number")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.com, http://b.com,")
	t.Setenv("SECURITY_MESSAGE_MAX_STRIKES", "2")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "env-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Game.MaxRounds)
	assert.Equal(t, defaultPhaseSeconds, cfg.Game.PhaseSeconds)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 2, cfg.Security.MessageLimit.MaxStrikes)
}

func TestApplyEnv_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "8123")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, 8123, cfg.Server.Port)
}
