package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/filemeta"
	"github.com/tendant/simple-cms/pkg/simplecms/imagecropper"
	"github.com/tendant/simple-cms/pkg/simplecms/mapping"
	"github.com/tendant/simple-cms/pkg/simplecms/registry"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
	fsstorage "github.com/tendant/simple-cms/pkg/simplecms/storage/fs"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
	s3storage "github.com/tendant/simple-cms/pkg/simplecms/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		DatabaseType: "memory",
		DBSchema:     "cms",
		Storage: StorageBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		},
		MediaURLPrefix:       "/media/",
		LegacyCropperRewrite: true,
		Breaker:              filemeta.DefaultBreakerConfig(),
		Settings:             &Settings{},
	}
}

// ServerConfig represents configuration for the simple-cms service
type ServerConfig struct {
	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: cms)

	// Storage holding uploaded media files
	Storage StorageBackendConfig

	// MediaURLPrefix is stripped from file references before storage lookups
	MediaURLPrefix string

	// LegacyCropperRewrite stores bare cropper strings back as {src, crops}
	LegacyCropperRewrite bool

	// StrictProjection fails display projections on unresolved data types
	StrictProjection bool

	// Breaker guards file metadata reads; zero MaxFailures disables it
	Breaker filemeta.BreakerConfig

	// Settings holds data types, users, content types and auto-fill policies
	Settings *Settings

	Logger *slog.Logger
}

// StorageBackendConfig represents configuration for a storage backend
type StorageBackendConfig struct {
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}

	if c.Settings == nil {
		return errors.New("settings are required")
	}
	return c.Settings.Validate()
}

// Components are the wired parts of a running service.
type Components struct {
	Service   simplecms.Service
	Registry  *registry.Registry
	Projector *mapping.Projector
	Enricher  *imagecropper.Enricher
	Store     simplecms.BlobStore
	Repo      simplecms.Repository
}

// Build wires repository, storage, registry, projector and media hooks, and
// registers the configured content types.
func (c *ServerConfig) Build(ctx context.Context) (*Components, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildStorageBackend(c.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Type, err)
	}

	reg, err := registry.New(registry.Builtins(), c.Settings.DataTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}

	projOpts := []mapping.Option{
		mapping.WithUsers(mapping.NewUserDirectory(c.Settings.Users...)),
		mapping.WithLogger(logger),
	}
	if c.StrictProjection {
		projOpts = append(projOpts, mapping.Strict())
	}
	projector := mapping.New(reg, reg, projOpts...)

	popOpts := []filemeta.Option{
		filemeta.WithURLPrefix(c.MediaURLPrefix),
		filemeta.WithLogger(logger),
	}
	if c.Breaker.MaxFailures > 0 {
		popOpts = append(popOpts, filemeta.WithCircuitBreaker(c.Breaker))
	}
	enricher := imagecropper.New(
		c.Settings.AutoFillProperties,
		reg,
		filemeta.New(store, popOpts...),
		imagecropper.WithLegacyRewrite(c.LegacyCropperRewrite),
		imagecropper.WithLogger(logger),
	)

	svc, err := simplecms.New(
		simplecms.WithRepository(repo),
		simplecms.WithProjector(projector),
		simplecms.WithMediaHooks(simplecms.LoggingHooks(logger)),
		simplecms.WithMediaHooks(enricher.Hooks()),
		simplecms.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	if err := registerContentTypes(ctx, svc, c.Settings.ContentTypes); err != nil {
		return nil, err
	}

	return &Components{
		Service:   svc,
		Registry:  reg,
		Projector: projector,
		Enricher:  enricher,
		Store:     store,
		Repo:      repo,
	}, nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (simplecms.Service, error) {
	components, err := c.Build(context.Background())
	if err != nil {
		return nil, err
	}
	return components.Service, nil
}

// registerContentTypes creates content types that are not registered yet.
func registerContentTypes(ctx context.Context, svc simplecms.Service, types []*simplecms.ContentType) error {
	for _, ct := range types {
		_, err := svc.GetContentType(ctx, ct.Alias)
		if err == nil {
			continue
		}
		if !errors.Is(err, simplecms.ErrContentTypeNotFound) {
			return fmt.Errorf("failed to look up content type %q: %w", ct.Alias, err)
		}
		if err := svc.CreateContentType(ctx, ct); err != nil {
			return fmt.Errorf("failed to register content type %q: %w", ct.Alias, err)
		}
	}
	return nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (simplecms.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildStorageBackend creates a BlobStore based on the backend configuration
func (c *ServerConfig) buildStorageBackend(config StorageBackendConfig) (simplecms.BlobStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir: getString(config.Config, "base_dir", "./data/media"),
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			EnableSSE:              getBool(config.Config, "enable_sse", false),
			SSEAlgorithm:           getString(config.Config, "sse_algorithm", "AES256"),
			SSEKMSKeyID:            getString(config.Config, "sse_kms_key_id", ""),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
