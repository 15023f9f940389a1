package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/iwvelando/rehash-tool/internal/config"
	"github.com/iwvelando/rehash-tool/pkg/constants"
)

const (
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	// EnvAddress overrides the listen address from the file.
	EnvAddress = "REHASH_SERVER_ADDRESS"
	// EnvMaxUploadSize overrides the upload limit from the file.
	EnvMaxUploadSize = "REHASH_SERVER_MAX_UPLOAD_SIZE"
)

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address           string               `yaml:"address"`
	MaxUploadSize     string               `yaml:"maxUploadSize"`
	ShutdownTimeout   string               `yaml:"shutdownTimeout"`
	ReadHeaderTimeout string               `yaml:"readHeaderTimeout"`
	Logging           config.LoggingConfig `yaml:"logging"`

	uploadSizeBytes   int64
	shutdownTimeout   time.Duration
	readHeaderTimeout time.Duration
}

// LoadConfig reads the server configuration from YAML and applies environment
// overrides. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the request body limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	if c.uploadSizeBytes <= 0 {
		return constants.DefaultMaxUploadSizeBytes
	}
	return c.uploadSizeBytes
}

// ShutdownTimeoutDuration bounds graceful shutdown.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	if c.shutdownTimeout <= 0 {
		return defaultShutdownTimeout
	}
	return c.shutdownTimeout
}

// ReadHeaderTimeoutDuration bounds how long a client may take to send headers.
func (c *Config) ReadHeaderTimeoutDuration() time.Duration {
	if c.readHeaderTimeout <= 0 {
		return defaultReadHeaderTimeout
	}
	return c.readHeaderTimeout
}

func (c *Config) applyEnv() {
	if address := strings.TrimSpace(os.Getenv(EnvAddress)); address != "" {
		c.Address = address
	}
	if size := strings.TrimSpace(os.Getenv(EnvMaxUploadSize)); size != "" {
		c.MaxUploadSize = size
	}
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	c.MaxUploadSize = strconv.FormatInt(size, 10)

	if c.shutdownTimeout, err = parseDuration(c.ShutdownTimeout, defaultShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdownTimeout: %w", err)
	}
	if c.readHeaderTimeout, err = parseDuration(c.ReadHeaderTimeout, defaultReadHeaderTimeout); err != nil {
		return fmt.Errorf("invalid readHeaderTimeout: %w", err)
	}
	return nil
}

// ParseSize converts a byte string such as "256K" or "10MB" into bytes.
// An empty value yields the default upload limit.
func ParseSize(value string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	if upper == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	split := strings.IndexFunc(upper, func(r rune) bool { return !unicode.IsDigit(r) })
	if split == -1 {
		split = len(upper)
	}
	if split == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(upper[:split], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	unit := strings.TrimSpace(upper[split:])
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}

	if n > 0 && n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return fallback, nil
	}
	return d, nil
}
