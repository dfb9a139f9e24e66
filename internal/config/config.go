// Package config loads dcerpcctl configuration using koanf/v2.
//
// Supports YAML files, environment variables, and CLI flags, layered
// defaults < file < env < flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the complete dcerpcctl configuration.
type Config struct {
	Target    TargetConfig    `koanf:"target"`
	Transport TransportConfig `koanf:"transport"`
	Auth      AuthConfig      `koanf:"auth"`
	Log       LogConfig       `koanf:"log"`
}

// TargetConfig describes the RPC server to bind to.
type TargetConfig struct {
	// Addr is the target endpoint, host:port. dcerpcctl always dials it
	// over TCP, whatever Transport.Kind says.
	Addr string `koanf:"addr"`

	// AbstractSyntax is the interface UUID to negotiate, "uuid.version".
	AbstractSyntax string `koanf:"abstract_syntax"`

	// TransferSyntax is the presentation syntax UUID proposed during bind,
	// "uuid.version". Defaults to NDR transfer syntax.
	TransferSyntax string `koanf:"transfer_syntax"`
}

// TransportConfig selects and tunes the underlying byte transport.
type TransportConfig struct {
	// Kind is "tcp" or "pipe". Validate accepts both; dcerpcctl does not
	// read it and has no pipe transport.
	Kind string `koanf:"kind"`

	// DialTimeout bounds the initial connection setup.
	DialTimeout time.Duration `koanf:"dial_timeout"`

	// MaxFragmentSize is checked by Validate but not applied: Bind PDUs
	// always carry pdu.DefaultMaxXmitFrag and pdu.DefaultMaxRecvFrag.
	MaxFragmentSize uint16 `koanf:"max_fragment_size"`
}

// AuthConfig holds the auth_type and auth_level settings. Nothing in
// dcerpcctl or rpc reads them, and dcerpc implements no verifier.
type AuthConfig struct {
	// Type is the auth_type value to advertise, 0 meaning none.
	Type uint8 `koanf:"type"`

	// Level is the auth_level value to advertise.
	Level uint8 `koanf:"level"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the zap encoding: "console" or "json".
	Format string `koanf:"format"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			TransferSyntax: "8a885d04-1ceb-11c9-9fe8-08002b104860.2",
		},
		Transport: TransportConfig{
			Kind:            "tcp",
			DialTimeout:     5 * time.Second,
			MaxFragmentSize: 4096,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// envPrefix is the environment variable prefix for dcerpcctl configuration.
// Variables are named DCERPC_<section>_<key>, e.g. DCERPC_TARGET_ADDR.
const envPrefix = "DCERPC_"

// Load reads configuration from a YAML file at path (if non-empty),
// overlays environment variable overrides (DCERPC_ prefix), and merges on
// top of DefaultConfig(). Missing fields inherit defaults. Load does not
// validate the result: target.addr is intentionally allowed to come out
// empty here, since cmd/dcerpcctl applies CLI flag overrides on top of
// the returned Config before calling Validate itself, completing the
// defaults < file < env < flags precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k, DefaultConfig()); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// envKeyMapper transforms DCERPC_TARGET_ADDR -> target.addr.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	// Only the first underscore separates section from key, so keys that
	// contain underscores (e.g. DCERPC_TRANSPORT_DIAL_TIMEOUT) map intact.
	return strings.Replace(s, "_", ".", 1)
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"target.addr":                 defaults.Target.Addr,
		"target.abstract_syntax":      defaults.Target.AbstractSyntax,
		"target.transfer_syntax":      defaults.Target.TransferSyntax,
		"transport.kind":              defaults.Transport.Kind,
		"transport.dial_timeout":      defaults.Transport.DialTimeout.String(),
		"transport.max_fragment_size": defaults.Transport.MaxFragmentSize,
		"auth.type":                   defaults.Auth.Type,
		"auth.level":                  defaults.Auth.Level,
		"log.level":                   defaults.Log.Level,
		"log.format":                  defaults.Log.Format,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// Validation errors.
var (
	ErrEmptyTargetAddr     = errors.New("target.addr must not be empty")
	ErrInvalidTransport    = errors.New("transport.kind must be tcp or pipe")
	ErrInvalidFragmentSize = errors.New("transport.max_fragment_size must be >= 16")
)

// ValidTransportKinds lists the recognized transport.kind strings.
var ValidTransportKinds = map[string]bool{
	"tcp":  true,
	"pipe": true,
}

// Validate checks the configuration for logical errors.
func Validate(cfg *Config) error {
	if cfg.Target.Addr == "" {
		return ErrEmptyTargetAddr
	}

	if !ValidTransportKinds[cfg.Transport.Kind] {
		return fmt.Errorf("transport.kind %q: %w", cfg.Transport.Kind, ErrInvalidTransport)
	}

	if cfg.Transport.MaxFragmentSize < 16 {
		return ErrInvalidFragmentSize
	}

	return nil
}
