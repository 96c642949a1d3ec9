package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Blob storage backends
const (
	BackendLocal = "local"
	BackendGCS   = "gcs"
	BackendS3    = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Port          string `yaml:"port"`
	AdminPassword string `yaml:"admin_password"`

	CatalogPath  string `yaml:"catalog_path"`
	SettingsPath string `yaml:"settings_path"`
	GalleryDir   string `yaml:"gallery_dir"`

	BlobBackend string `yaml:"blob_backend"`
	BucketName  string `yaml:"bucket_name"`
	AWSRegion   string `yaml:"aws_region"`

	LinkTimeout        time.Duration `yaml:"link_timeout"`
	MaxImageMB         int64         `yaml:"max_image_mb"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	LoginRatePerMinute int           `yaml:"login_rate_per_minute"`

	ViewsDir  string `yaml:"views_dir"`
	PublicDir string `yaml:"public_dir"`
	LogLevel  string `yaml:"log_level"`
}

// ErrBucketNameNotSet is returned when a bucket backend is selected without BUCKET_NAME
var ErrBucketNameNotSet = errors.New("BUCKET_NAME environment variable not set")

// ErrAdminPasswordNotSet is returned when the server is started without ADMIN_PASSWORD
var ErrAdminPasswordNotSet = errors.New("ADMIN_PASSWORD environment variable not set")

// ErrInvalidBackend is returned for an unknown BLOB_BACKEND
var ErrInvalidBackend = errors.New("BLOB_BACKEND must be one of local, gcs, s3")

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:               "8080",
		CatalogPath:        "gallery.json",
		SettingsPath:       "config.json",
		GalleryDir:         "gallery",
		BlobBackend:        BackendLocal,
		AWSRegion:          "us-east-1",
		LinkTimeout:        30 * time.Second,
		MaxImageMB:         20,
		CacheTTL:           5 * time.Second,
		LoginRatePerMinute: 10,
		ViewsDir:           "views",
		PublicDir:          "public",
		LogLevel:           "info",
	}
}

// Load loads configuration from a .env file, the optional YAML file named by
// CONFIG_FILE and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.AdminPassword, "ADMIN_PASSWORD")
	setString(&c.CatalogPath, "CATALOG_PATH")
	setString(&c.SettingsPath, "SETTINGS_PATH")
	setString(&c.GalleryDir, "GALLERY_DIR")
	setString(&c.BlobBackend, "BLOB_BACKEND")
	setString(&c.BucketName, "BUCKET_NAME")
	setString(&c.AWSRegion, "AWS_REGION")
	setString(&c.ViewsDir, "VIEWS_DIR")
	setString(&c.PublicDir, "PUBLIC_DIR")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("LINK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LINK_TIMEOUT %q: %w", v, err)
		}
		c.LinkTimeout = d
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		c.CacheTTL = d
	}
	if v := os.Getenv("MAX_IMAGE_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_IMAGE_MB %q: %w", v, err)
		}
		c.MaxImageMB = n
	}
	if v := os.Getenv("LOGIN_RATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LOGIN_RATE_PER_MINUTE %q: %w", v, err)
		}
		c.LoginRatePerMinute = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that the selected backend is usable
func (c *Config) Validate() error {
	c.BlobBackend = strings.ToLower(strings.TrimSpace(c.BlobBackend))
	switch c.BlobBackend {
	case BackendLocal:
	case BackendGCS, BackendS3:
		if c.BucketName == "" {
			return ErrBucketNameNotSet
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidBackend, c.BlobBackend)
	}
	return nil
}

// RequireAdminPassword returns ErrAdminPasswordNotSet when no admin password is configured
func (c *Config) RequireAdminPassword() error {
	if c.AdminPassword == "" {
		return ErrAdminPasswordNotSet
	}
	return nil
}

// MaxImageBytes returns the download cap for link thumbnails, 0 meaning unlimited
func (c *Config) MaxImageBytes() int64 {
	if c.MaxImageMB <= 0 {
		return 0
	}
	return c.MaxImageMB << 20
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Gallery URL: http://localhost:%s/\n", c.Port)
	fmt.Printf("Blob backend: %s\n", c.BlobBackend)
}
