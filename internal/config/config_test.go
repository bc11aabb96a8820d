package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memcached"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}

	expected := `database.driver must be "valkey", "redis" or "sqlite", got "memcached"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_Drivers(t *testing.T) {
	for _, driver := range []string{"valkey", "redis"} {
		t.Run("driver="+driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.Driver = driver
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for driver %q: %v", driver, err)
			}
		})
	}
}

func TestValidate_SQLiteNeedsPath(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for sqlite without path")
	}

	cfg.Database.Path = ":memory:"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NegativeMaxAge(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.MaxAgeSec = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max age")
	}
}

func TestValidate_DefaultLimitAboveMax(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.DefaultLimit = 50
	cfg.Engine.MaxLimit = 10

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default_limit exceeds max_limit")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Engine.DefaultLimit != 5 {
		t.Errorf("expected DefaultLimit=5, got %d", cfg.Engine.DefaultLimit)
	}
	if cfg.Engine.MaxLimit != 100 {
		t.Errorf("expected MaxLimit=100, got %d", cfg.Engine.MaxLimit)
	}
	if cfg.Engine.MaxAgeSec != 0 {
		t.Errorf("expected MaxAgeSec=0, got %d", cfg.Engine.MaxAgeSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: "redis", ReadinessTimeout: 15},
		Engine:   EngineConfig{MaxAgeSec: 300, DefaultLimit: 10, MaxLimit: 20},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Engine.DefaultLimit != 10 || cfg.Engine.MaxLimit != 20 || cfg.Engine.MaxAgeSec != 300 {
		t.Errorf("engine settings overridden: %+v", cfg.Engine)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("NEWSREC_TEST_ADDR", "redis:6379")

	got := string(expandEnvVars([]byte("a: ${NEWSREC_TEST_ADDR}\nb: ${NEWSREC_TEST_UNSET:-fallback}\nc: ${NEWSREC_TEST_UNSET}")))
	want := "a: redis:6379\nb: fallback\nc: "
	if got != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := strings.Join([]string{
		"http:",
		"  port: 9090",
		"database:",
		"  driver: redis",
		"  addrs: [\"${NEWSREC_TEST_DB:-localhost:6379}\"]",
		"engine:",
		"  max_age_sec: 60",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("unexpected addrs: %v", cfg.Database.Addrs)
	}
	if cfg.Engine.MaxAgeSec != 60 || cfg.Engine.DefaultLimit != 5 {
		t.Errorf("unexpected engine config: %+v", cfg.Engine)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = -1
	cfg.Database.Addrs = nil
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"http.port", "database.addrs", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestDurations(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.MaxAgeSec = 90

	if got := cfg.Engine.MaxAge(); got != 90*time.Second {
		t.Errorf("MaxAge = %v, want 90s", got)
	}
	if got := cfg.Database.Readiness(); got != 10*time.Second {
		t.Errorf("Readiness = %v, want 10s", got)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	body := "http:\n  port: 7070\ndatabase:\n  driver: sqlite\n  path: \":memory:\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(PathEnv, path)

	cfg, err := Load("ignored")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 7070 || cfg.Database.Driver != "sqlite" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	body := "http:\n  port: 7070\ndatabase:\n  addrs: [\"localhost:6379\"]\nengine:\n  max_age: 60\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(PathEnv, path)

	if _, err := Load("ignored"); err == nil {
		t.Fatal("expected error for unknown key engine.max_age")
	}
}
