package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "full.json", map[string]any{
		"http_addr":                       "www.example:9000",
		"grpc_health_addr":                ":6000",
		"database_dsn":                    "postgres://db",
		"secret_key":                      "my_secret_key",
		"encryption_key":                  "a2V5",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": "3m",
		"lockout_threshold":               3,
		"lockout_duration":                "10m",
		"redis_addr":                      "redis:6379",
		"reference_cache_ttl":             float64(time.Second),
		"audit_queue_size":                16,
		"cors_origins":                    []string{"https://app.example"},
		"s3_root_user":                    "user",
		"s3_root_password":                "password",
		"s3_bucket":                       "bucket",
		"s3_region":                       "region",
		"s3_base_endpoint":                "base_endpoint",
		"log_level":                       "debug",
		"log_format":                      "text",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJSON(cfg, path))

		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
		assert.Equal(t, ":6000", cfg.GRPCHealthAddr)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "a2V5", cfg.EncryptionKey)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 3, cfg.LockoutThreshold)
		assert.Equal(t, 10*time.Minute, cfg.LockoutDuration)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, time.Second, cfg.ReferenceCacheTTL)
		assert.Equal(t, 16, cfg.AuditQueueSize)
		assert.Equal(t, []string{"https://app.example"}, cfg.CORSOrigins)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "other"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(cfg, partial))

		assert.Equal(t, "other", cfg.SecretKey)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("no path is a no-op", func(t *testing.T) {
		cfg := &Config{HTTPAddr: "defaults:1234"}
		require.NoError(t, parseJSON(cfg, ""))
		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJSON(&Config{}, bad))
	})

	t.Run("invalid duration", func(t *testing.T) {
		bad := writeTempJSON(t, dir, "dur.json", map[string]any{"lockout_duration": true})
		require.Error(t, parseJSON(&Config{}, bad))
	})
}
