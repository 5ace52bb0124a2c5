package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimal = `
port: "8080"
databaseURL: postgres://localhost/paperdesk
redisAddr: localhost:6379
tokenSecret: secret
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.prod:6379")
	t.Setenv("TOKEN_SECRET", "env-secret")
	cfg, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RedisAddr != "redis.prod:6379" || cfg.TokenSecret != "env-secret" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	if _, err := Load(writeConfig(t, "port: \"8080\"\n")); err == nil {
		t.Fatal("missing databaseURL must fail")
	}
	if _, err := Load(writeConfig(t, minimal+"mailMode: pigeon\n")); err == nil {
		t.Fatal("unknown mailMode must fail")
	}
	if _, err := Load(writeConfig(t, minimal+"mailMode: smtp\n")); err == nil {
		t.Fatal("smtp mode without host must fail")
	}
}

func TestParseDurationField(t *testing.T) {
	if d, err := ParseDurationField("tokenTTL", ""); err != nil || d != 0 {
		t.Fatalf("empty duration: %v %v", d, err)
	}
	if d, err := ParseDurationField("tokenTTL", "45m"); err != nil || d != 45*time.Minute {
		t.Fatalf("parse: %v %v", d, err)
	}
	if _, err := ParseDurationField("tokenTTL", "soon"); err == nil {
		t.Fatal("invalid duration must fail")
	}
}
