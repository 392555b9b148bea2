package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// envVars maps environment variable names onto string settings.
func envVars(c *Config) map[string]*string {
	return map[string]*string{
		"SINGULARITY_HTTP_ADDR":  &c.HTTPAddr,
		"SINGULARITY_GRPC_ADDR":  &c.GRPCHealthAddr,
		"DATABASE_URL":           &c.DatabaseDSN,
		"SINGULARITY_SECRET_KEY": &c.SecretKey,
		"ENCRYPTION_KEY":         &c.EncryptionKey,
		"REDIS_URL":              &c.RedisAddr,
		"S3_ROOT_USER":           &c.S3RootUser,
		"S3_ROOT_PASSWORD":       &c.S3RootPassword,
		"S3_BUCKET":              &c.S3Bucket,
		"S3_REGION":              &c.S3Region,
		"S3_BASE_ENDPOINT":       &c.S3BaseEndpoint,
		"LOG_LEVEL":              &c.LogLevel,
		"SINGULARITY_LOG_FORMAT": &c.LogFormat,
	}
}

// parseEnv loads dotenvPath into the process environment when it exists
// (already-set variables win) and then overlays the known variables.
func parseEnv(config *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	for name, dst := range envVars(config) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("CORS_ORIGIN_WHITELIST"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.CORSOrigins = origins
	}

	return nil
}
