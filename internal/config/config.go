package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 3001
	defaultMaxConnections = 2000
	defaultPublicURL      = "http://localhost:3000"

	defaultRedisAddr = "localhost:6379"

	defaultMaxRounds     = 4
	defaultPhaseSeconds  = 60
	defaultMaxNameLength = 20
	defaultRoomTimeout   = 10 // minutes

	defaultRateMaxPerSecond    = 10
	defaultRateMaxPerMinute    = 60
	defaultRateBanDuration     = 60 // seconds
	defaultMessageMaxPerSecond = 20
	defaultMessageMaxStrikes   = 5

	defaultLogLevel = "info"
)

// Origins the web front-end is served from.
var defaultAllowedOrigins = []string{
	"https://www.braedenpope.dev",
	"https://braedenpope.dev",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// Config is the server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig covers the HTTP/websocket listener.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	PublicURL      string `yaml:"public_url"` // front-end base URL encoded in join QR codes
}

// RedisConfig covers the optional live-room directory.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig holds the rules of a room.
type GameConfig struct {
	MaxRounds     int      `yaml:"max_rounds"`
	PhaseSeconds  int      `yaml:"phase_seconds"` // writing countdown
	VoteSeconds   int      `yaml:"vote_seconds"`  // voting countdown, 0 disables it
	MaxNameLength int      `yaml:"max_name_length"`
	RoomTimeout   int      `yaml:"room_timeout"` // minutes an unjoined room may idle
	Prompts       []string `yaml:"prompts"`      // empty means the built-in deck
}

// SecurityConfig limits who may connect and how fast.
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
}

// RateLimitConfig limits new connections per IP.
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // seconds
}

// MessageLimitConfig limits inbound messages per connection.
// A connection that goes over the limit more than MaxStrikes times is closed.
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxStrikes   int `yaml:"max_strikes"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"` // structured output instead of the console writer
}

// Addr is the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PhaseDuration is the writing countdown.
func (c *GameConfig) PhaseDuration() time.Duration {
	return time.Duration(c.PhaseSeconds) * time.Second
}

// RoomTimeoutDuration is how long a room nobody joined survives.
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// BanDurationTime is how long an IP stays banned.
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// Load reads a YAML file, fills defaults and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.ApplyEnv()
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = defaultPublicURL
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if c.Game.MaxRounds == 0 {
		c.Game.MaxRounds = defaultMaxRounds
	}
	if c.Game.PhaseSeconds == 0 {
		c.Game.PhaseSeconds = defaultPhaseSeconds
	}
	if c.Game.MaxNameLength == 0 {
		c.Game.MaxNameLength = defaultMaxNameLength
	}
	if c.Game.RoomTimeout == 0 {
		c.Game.RoomTimeout = defaultRoomTimeout
	}
	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = append([]string(nil), defaultAllowedOrigins...)
	}
	if c.Security.RateLimit.MaxPerSecond == 0 {
		c.Security.RateLimit.MaxPerSecond = defaultRateMaxPerSecond
	}
	if c.Security.RateLimit.MaxPerMinute == 0 {
		c.Security.RateLimit.MaxPerMinute = defaultRateMaxPerMinute
	}
	if c.Security.RateLimit.BanDuration == 0 {
		c.Security.RateLimit.BanDuration = defaultRateBanDuration
	}
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit.MaxPerSecond = defaultMessageMaxPerSecond
	}
	if c.Security.MessageLimit.MaxStrikes == 0 {
		c.Security.MessageLimit.MaxStrikes = defaultMessageMaxStrikes
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// ApplyEnv overrides fields from the environment. PORT is honoured for
// platforms that inject it.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "PORT")
	setInt(&c.Server.Port, "SERVER_PORT")
	setInt(&c.Server.MaxConnections, "SERVER_MAX_CONNECTIONS")
	setString(&c.Server.PublicURL, "SERVER_PUBLIC_URL")

	setBool(&c.Redis.Enabled, "REDIS_ENABLED")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	setInt(&c.Game.MaxRounds, "GAME_MAX_ROUNDS")
	setInt(&c.Game.PhaseSeconds, "GAME_PHASE_SECONDS")
	setInt(&c.Game.VoteSeconds, "GAME_VOTE_SECONDS")
	setInt(&c.Game.MaxNameLength, "GAME_MAX_NAME_LENGTH")
	setInt(&c.Game.RoomTimeout, "GAME_ROOM_TIMEOUT")

	if v := os.Getenv("SECURITY_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			c.Security.AllowedOrigins = origins
		}
	}

	setInt(&c.Security.MessageLimit.MaxPerSecond, "SECURITY_MESSAGE_MAX_PER_SECOND")
	setInt(&c.Security.MessageLimit.MaxStrikes, "SECURITY_MESSAGE_MAX_STRIKES")

	setString(&c.Log.Level, "LOG_LEVEL")
	setBool(&c.Log.JSON, "LOG_JSON")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
