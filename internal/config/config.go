// Package config loads the bridge's runtime configuration from, in
// increasing precedence, an optional YAML file, NEXSTAR_-prefixed
// environment variables, and command-line flags. Flags sit on top of the
// viper env/file/defaults layering because this is a long-running service
// invoked directly, not a config-file-first system with subcommands.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is everything cmd/nexstar-alpacad needs to wire up the bridge.
type Config struct {
	// Device is the serial path to the hand controller (ignored when
	// Conform is set).
	Device string
	// Baud is the serial line speed.
	Baud int
	// Port is the Alpaca HTTP listen port.
	Port int
	// DiscoveryPort is the Alpaca UDP discovery responder port.
	DiscoveryPort int
	// Conform runs the bridge against the in-memory simulator instead of
	// a real serial device, matching a real-world ASCOM Conformance Check
	// run against hardware that may not be attached.
	Conform bool
	// LogLevel selects the zap logger's minimum level: debug, info, warn,
	// error.
	LogLevel string

	// MQTTBrokerURL, when non-empty, enables telemetry publishing.
	MQTTBrokerURL string
	// DatabaseURL, when non-empty, enables Postgres audit logging.
	DatabaseURL string

	// AuthEnabled turns on the optional HTTP Basic / bearer auth modes.
	AuthEnabled  bool
	AuthUsername string
	AuthPassword string
	// JWTSecret enables the bearer-token auth mode alongside Basic Auth
	// when non-empty.
	JWTSecret string

	// CORSEnabled turns on the permissive default CORS policy.
	CORSEnabled bool

	// HealthCheckInterval is how often the background health engine polls
	// its registered checkers.
	HealthCheckInterval time.Duration
}

// Defaults returns the built-in configuration the flag and file layers
// override.
func Defaults() Config {
	return Config{
		Device:              "/dev/ttyUSB0",
		Baud:                9600,
		Port:                11111,
		DiscoveryPort:       32227,
		LogLevel:            "info",
		CORSEnabled:         true,
		HealthCheckInterval: 30 * time.Second,
	}
}

// Load builds a Config from defaults, an optional config file, environment
// variables (NEXSTAR_ prefix, e.g. NEXSTAR_DATABASE_URL), and the parsed
// contents of fs, in that ascending order of precedence. fs must already
// have RegisterFlags called on it and Parse invoked by the caller.
func Load(fs *flag.FlagSet, flags *FlagValues) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEXSTAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Defaults()
	v.SetDefault("device", cfg.Device)
	v.SetDefault("baud", cfg.Baud)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("discovery_port", cfg.DiscoveryPort)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("cors_enabled", cfg.CORSEnabled)
	v.SetDefault("health_check_interval", cfg.HealthCheckInterval)

	if flags.ConfigFile != "" {
		v.SetConfigFile(flags.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", flags.ConfigFile, err)
		}
	}

	cfg.Device = v.GetString("device")
	cfg.Baud = v.GetInt("baud")
	cfg.Port = v.GetInt("port")
	cfg.DiscoveryPort = v.GetInt("discovery_port")
	cfg.LogLevel = v.GetString("log_level")
	cfg.CORSEnabled = v.GetBool("cors_enabled")
	cfg.HealthCheckInterval = v.GetDuration("health_check_interval")
	cfg.MQTTBrokerURL = v.GetString("mqtt_broker_url")
	cfg.DatabaseURL = v.GetString("database_url")
	cfg.AuthUsername = v.GetString("auth_username")
	cfg.AuthPassword = v.GetString("auth_password")
	cfg.JWTSecret = v.GetString("jwt_secret")

	// Flags always win, but only when the caller actually set them
	// (flag.Visit reports only flags explicitly passed on the command
	// line, so an unset flag never clobbers a file/env value with its
	// zero default).
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d", "device":
			cfg.Device = flags.Device
		case "b", "baud":
			cfg.Baud = flags.Baud
		case "p", "port":
			cfg.Port = flags.Port
		case "discovery-port":
			cfg.DiscoveryPort = flags.DiscoveryPort
		case "c", "conform":
			cfg.Conform = flags.Conform
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "mqtt-broker":
			cfg.MQTTBrokerURL = flags.MQTTBrokerURL
		case "database-url":
			cfg.DatabaseURL = flags.DatabaseURL
		case "auth":
			cfg.AuthEnabled = flags.AuthEnabled
		case "auth-username":
			cfg.AuthUsername = flags.AuthUsername
		case "auth-password":
			cfg.AuthPassword = flags.AuthPassword
		case "jwt-secret":
			cfg.JWTSecret = flags.JWTSecret
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects an unusable configuration.
func (c *Config) Validate() error {
	if !c.Conform && c.Device == "" {
		return fmt.Errorf("config: device path required unless --conform is set")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("config: baud must be positive, got %d", c.Baud)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	return nil
}
