package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_DRIVER", "DATABASE_URL", "JWT_SECRET", "JWT_ISSUER", "REDIS_URL", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "3001" {
		t.Fatalf("expected port 3001, got %s", cfg.Port)
	}
	if cfg.DatabaseDriver != "sqlite3" {
		t.Fatalf("expected sqlite3 driver, got %s", cfg.DatabaseDriver)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("expected wildcard origin, got %v", cfg.CORSOrigins)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Fatalf("expected secret from env, got %q", cfg.JWTSecret)
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_DRIVER", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestLoadConfigReadsJWTSecretFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamific.yaml")
	if err := os.WriteFile(path, []byte("jwt_secret: from-file\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JWTSecret != "from-file" {
		t.Fatalf("expected secret from file, got %q", cfg.JWTSecret)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamific.yaml")
	data := "port: \"4000\"\ndatabase_driver: pgx\ndatabase_url: postgres://localhost/gamific\nredis_url: redis://localhost:6379/0\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "5000")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "5000" {
		t.Fatalf("expected env to override port, got %s", cfg.Port)
	}
	if cfg.DatabaseDriver != "pgx" || cfg.DatabaseURL != "postgres://localhost/gamific" {
		t.Fatalf("expected database settings from file, got %s %s", cfg.DatabaseDriver, cfg.DatabaseURL)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("expected redis url from file, got %s", cfg.RedisURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("expected two origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadEnvIgnoresMissingFile(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}

func TestLoadEnvSetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GAMIFIC_TEST_VALUE=\"from-dotenv\"\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("GAMIFIC_TEST_VALUE", "")
	os.Unsetenv("GAMIFIC_TEST_VALUE")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("GAMIFIC_TEST_VALUE"); got != "from-dotenv" {
		t.Fatalf("expected from-dotenv, got %q", got)
	}
}
