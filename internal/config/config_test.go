package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mellowdrifter/dcerpc/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	if cfg.Transport.Kind != "tcp" {
		t.Errorf("Transport.Kind = %q, want %q", cfg.Transport.Kind, "tcp")
	}

	if cfg.Transport.DialTimeout != 5*time.Second {
		t.Errorf("Transport.DialTimeout = %v, want %v", cfg.Transport.DialTimeout, 5*time.Second)
	}

	if cfg.Transport.MaxFragmentSize != 4096 {
		t.Errorf("Transport.MaxFragmentSize = %d, want %d", cfg.Transport.MaxFragmentSize, 4096)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}

	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "console")
	}

	// Target.Addr is intentionally empty by default, so DefaultConfig()
	// alone does not pass validation until a caller supplies one.
	cfg.Target.Addr = "127.0.0.1:135"
	if err := config.Validate(cfg); err != nil {
		t.Errorf("Validate() on a completed default config: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `
target:
  addr: "127.0.0.1:445"
  abstract_syntax: "99fcfec4-5260-101b-bbcb-00aa0021347a.0"
transport:
  kind: "pipe"
  dial_timeout: "10s"
  max_fragment_size: 1024
log:
  level: "debug"
  format: "json"
`

	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Target.Addr != "127.0.0.1:445" {
		t.Errorf("Target.Addr = %q, want %q", cfg.Target.Addr, "127.0.0.1:445")
	}

	if cfg.Target.AbstractSyntax != "99fcfec4-5260-101b-bbcb-00aa0021347a.0" {
		t.Errorf("Target.AbstractSyntax = %q, want the requested UUID", cfg.Target.AbstractSyntax)
	}

	if cfg.Transport.Kind != "pipe" {
		t.Errorf("Transport.Kind = %q, want %q", cfg.Transport.Kind, "pipe")
	}

	if cfg.Transport.DialTimeout != 10*time.Second {
		t.Errorf("Transport.DialTimeout = %v, want %v", cfg.Transport.DialTimeout, 10*time.Second)
	}

	if cfg.Transport.MaxFragmentSize != 1024 {
		t.Errorf("Transport.MaxFragmentSize = %d, want %d", cfg.Transport.MaxFragmentSize, 1024)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}

	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	t.Parallel()

	// Partial YAML: only override target.addr and log.level. Everything
	// else should inherit from DefaultConfig().
	yamlContent := `
target:
  addr: "10.0.0.1:135"
log:
  level: "warn"
`

	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Target.Addr != "10.0.0.1:135" {
		t.Errorf("Target.Addr = %q, want %q", cfg.Target.Addr, "10.0.0.1:135")
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}

	if cfg.Transport.Kind != "tcp" {
		t.Errorf("Transport.Kind = %q, want default %q", cfg.Transport.Kind, "tcp")
	}

	if cfg.Transport.MaxFragmentSize != 4096 {
		t.Errorf("Transport.MaxFragmentSize = %d, want default %d", cfg.Transport.MaxFragmentSize, 4096)
	}

	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, "console")
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr error
	}{
		{
			name: "empty target addr",
			modify: func(cfg *config.Config) {
				cfg.Target.Addr = ""
			},
			wantErr: config.ErrEmptyTargetAddr,
		},
		{
			name: "unknown transport kind",
			modify: func(cfg *config.Config) {
				cfg.Target.Addr = "127.0.0.1:135"
				cfg.Transport.Kind = "udp"
			},
			wantErr: config.ErrInvalidTransport,
		},
		{
			name: "fragment size too small",
			modify: func(cfg *config.Config) {
				cfg.Target.Addr = "127.0.0.1:135"
				cfg.Transport.MaxFragmentSize = 8
			},
			wantErr: config.ErrInvalidFragmentSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			cfg.Target.Addr = "127.0.0.1:135"
			tt.modify(cfg)

			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("Validate() returned nil, want error")
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/path/dcerpcctl.yml")
	if err == nil {
		t.Fatal("Load() returned nil error for nonexistent file")
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "dcerpcctl.yml")

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	return path
}
