package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Database:
//   DATABASE_URL - "memory" (default) or "postgres://..."
//   DB_SCHEMA - Postgres schema (default: "cms")
//
// Storage:
//   STORAGE_URL - one of:
//                 - "memory://" - In-memory storage (default)
//                 - "file:///path/to/data" - Filesystem storage
//                 - "s3://bucket" - S3 storage (AWS_* variables for credentials)
//
// Media:
//   SETTINGS_FILE - YAML settings file
//   MEDIA_URL_PREFIX - prefix stripped from file references (default: "/media/")
//   CROPPER_LEGACY_REWRITE - store bare cropper strings as {src, crops} (default: true)
//   STRICT_PROJECTION - fail projections on unresolved data types (default: false)
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "DB_SCHEMA"); ok && v != "" {
			c.DBSchema = v
		}
		if v, ok := lookupEnv(prefix, "MEDIA_URL_PREFIX"); ok {
			c.MediaURLPrefix = v
		}

		if err := applyDatabaseEnv(prefix, c); err != nil {
			return err
		}
		if err := applyStorageEnv(prefix, c); err != nil {
			return err
		}

		if v, ok, err := parseBoolEnv(prefix, "CROPPER_LEGACY_REWRITE"); err != nil {
			return err
		} else if ok {
			c.LegacyCropperRewrite = v
		}
		if v, ok, err := parseBoolEnv(prefix, "STRICT_PROJECTION"); err != nil {
			return err
		} else if ok {
			c.StrictProjection = v
		}

		if path, ok := lookupEnv(prefix, "SETTINGS_FILE"); ok && path != "" {
			settings, err := LoadSettings(path)
			if err != nil {
				return err
			}
			c.Settings = settings
		}
		return nil
	}
}

// applyDatabaseEnv applies database configuration from environment
func applyDatabaseEnv(prefix string, c *ServerConfig) error {
	dbURL, hasURL := lookupEnv(prefix, "DATABASE_URL")

	if !hasURL || dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}

	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

// applyStorageEnv applies storage configuration from environment
func applyStorageEnv(prefix string, c *ServerConfig) error {
	storageURL, hasURL := lookupEnv(prefix, "STORAGE_URL")

	switch {
	case !hasURL || storageURL == "" || storageURL == "memory" || storageURL == "memory://":
		c.Storage = StorageBackendConfig{Type: "memory", Config: map[string]interface{}{}}
		return nil

	case strings.HasPrefix(storageURL, "file://"):
		path := strings.TrimPrefix(storageURL, "file://")
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.Storage = StorageBackendConfig{Type: "fs", Config: map[string]interface{}{"base_dir": path}}
		return nil

	case strings.HasPrefix(storageURL, "s3://"):
		bucket := strings.TrimPrefix(storageURL, "s3://")
		if i := strings.IndexByte(bucket, '?'); i >= 0 {
			bucket = bucket[:i]
		}
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty in STORAGE_URL")
		}

		backend := StorageBackendConfig{
			Type: "s3",
			Config: map[string]interface{}{
				"bucket": bucket,
				"region": "us-east-1",
			},
		}
		if v, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok && v != "" {
			backend.Config["access_key_id"] = v
		}
		if v, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok && v != "" {
			backend.Config["secret_access_key"] = v
		}
		if v, ok := os.LookupEnv("AWS_REGION"); ok && v != "" {
			backend.Config["region"] = v
		}
		if v, ok := lookupEnv(prefix, "S3_ENDPOINT"); ok && v != "" {
			backend.Config["endpoint"] = v
			backend.Config["use_path_style"] = true
		}
		c.Storage = backend
		return nil
	}

	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

func lookupEnv(prefix, key string) (string, bool) {
	return os.LookupEnv(prefix + key)
}

func parseBoolEnv(prefix, key string) (bool, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("invalid boolean for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}
