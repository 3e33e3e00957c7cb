package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.MediaBucket == "" {
		t.Fatalf("expected default media bucket")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("MEDIA_ENDPOINT", "minio:9000")
	t.Setenv("MEDIA_ACCESS_KEY", "access")
	t.Setenv("MEDIA_SECRET_KEY", "secret-key")
	t.Setenv("MEDIA_BUCKET", "pics")
	t.Setenv("MEDIA_USE_SSL", "true")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.RedisPassword != "hunter2" {
		t.Fatalf("expected override redis password")
	}
	if cfg.MediaEndpoint != "minio:9000" || cfg.MediaBucket != "pics" {
		t.Fatalf("expected override media settings")
	}
	if cfg.MediaAccessKey != "access" || cfg.MediaSecretKey != "secret-key" {
		t.Fatalf("expected override media credentials")
	}
	if !cfg.MediaUseSSL {
		t.Fatalf("expected override media ssl flag")
	}
}
