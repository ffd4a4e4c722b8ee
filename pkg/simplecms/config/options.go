package config

import (
	"fmt"
	"log/slog"

	"github.com/tendant/simple-cms/pkg/simplecms/filemeta"
)

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithFilesystemStorage stores media files below baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageBackendConfig{
			Type:   "fs",
			Config: map[string]interface{}{"base_dir": baseDir},
		}
		return nil
	}
}

// WithS3Storage stores media files in an S3 bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1"
		}
		c.Storage = StorageBackendConfig{
			Type: "s3",
			Config: map[string]interface{}{
				"bucket": bucket,
				"region": region,
			},
		}
		return nil
	}
}

// WithSettings sets the declarative settings
func WithSettings(settings *Settings) Option {
	return func(c *ServerConfig) error {
		if settings == nil {
			return fmt.Errorf("settings cannot be nil")
		}
		c.Settings = settings
		return nil
	}
}

// WithSettingsFile loads settings from a YAML file
func WithSettingsFile(path string) Option {
	return func(c *ServerConfig) error {
		settings, err := LoadSettings(path)
		if err != nil {
			return err
		}
		c.Settings = settings
		return nil
	}
}

// WithMediaURLPrefix sets the prefix stripped from file references
func WithMediaURLPrefix(prefix string) Option {
	return func(c *ServerConfig) error {
		c.MediaURLPrefix = prefix
		return nil
	}
}

// WithLegacyCropperRewrite toggles the {src, crops} rewrite of bare cropper values
func WithLegacyCropperRewrite(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.LegacyCropperRewrite = enabled
		return nil
	}
}

// WithStrictProjection makes unresolved data types fail display projections
func WithStrictProjection(strict bool) Option {
	return func(c *ServerConfig) error {
		c.StrictProjection = strict
		return nil
	}
}

// WithBreaker configures the storage circuit breaker; zero MaxFailures disables it
func WithBreaker(breaker filemeta.BreakerConfig) Option {
	return func(c *ServerConfig) error {
		c.Breaker = breaker
		return nil
	}
}

// WithLogger sets the logger passed to every component
func WithLogger(logger *slog.Logger) Option {
	return func(c *ServerConfig) error {
		c.Logger = logger
		return nil
	}
}
