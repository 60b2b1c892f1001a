package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned by Load when no configuration file exists. The
	// returned Config still holds the defaults.
	ErrNotFound = errors.New("config: no configuration file found")

	// ErrInvalid is returned for values outside their allowed range.
	ErrInvalid = errors.New("config: invalid value")
)

// SearchPaths are tried in order when Load is given no usable path.
var SearchPaths = []string{
	"/etc/learner/learner.conf",
	"/usr/local/learner/learner.conf",
	"learner.conf",
}

// Config is the daemon configuration.
type Config struct {
	Port           int     `yaml:"port"`
	AcceptBacklog  int     `yaml:"accept_backlog"`
	ReadThreads    int     `yaml:"read_threads"`
	ProcessThreads int     `yaml:"process_threads"`
	MaxConnections int64   `yaml:"max_connections"`
	AcceptRate     float64 `yaml:"accept_rate"`
	MaxFrameSize   int64   `yaml:"max_frame_size"`

	DataPath    string `yaml:"data_path"`
	Compression string `yaml:"compression"`
	CacheBytes  int64  `yaml:"cache_bytes"`

	MetricsAddress string `yaml:"metrics_address"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`

	// BackupTarget is a file://, s3:// or minio:// URL. Empty disables
	// backups.
	BackupTarget   string        `yaml:"backup_target"`
	BackupInterval time.Duration `yaml:"backup_interval"`
	BackupKeep     int           `yaml:"backup_keep"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:           3579,
		AcceptBacklog:  10,
		ReadThreads:    1,
		ProcessThreads: 8,
		MaxFrameSize:   64 << 20,
		DataPath:       "learner.db",
		Compression:    "none",
		LogLevel:       "info",
		LogFormat:      "text",
		BackupInterval: time.Hour,
	}
}

// Load starts from Default and applies the first configuration file found:
// path if it exists, then SearchPaths. It returns ErrNotFound together with
// the defaults when there is none.
func Load(path string) (Config, error) {
	cfg := Default()

	candidates := SearchPaths
	if path != "" {
		candidates = append([]string{path}, SearchPaths...)
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}

		f, err := os.Open(p) //nolint:gosec // operator supplied path
		if err != nil {
			return cfg, fmt.Errorf("config: open %q: %w", p, err)
		}

		err = cfg.Decode(f)
		_ = f.Close()

		if err != nil {
			return cfg, fmt.Errorf("config: %q: %w", p, err)
		}

		cfg.Path = p

		return cfg, nil
	}

	return cfg, ErrNotFound
}

// Decode applies the settings read from r on top of c and validates the
// result.
func (c *Config) Decode(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	// A file of blank lines and comments decodes to io.EOF.
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return c.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	case c.ReadThreads <= 0:
		return fmt.Errorf("%w: read_threads %d", ErrInvalid, c.ReadThreads)
	case c.ProcessThreads <= 0:
		return fmt.Errorf("%w: process_threads %d", ErrInvalid, c.ProcessThreads)
	case c.MaxFrameSize <= 0:
		return fmt.Errorf("%w: max_frame_size %d", ErrInvalid, c.MaxFrameSize)
	case c.MaxConnections < 0:
		return fmt.Errorf("%w: max_connections %d", ErrInvalid, c.MaxConnections)
	case c.AcceptRate < 0:
		return fmt.Errorf("%w: accept_rate %g", ErrInvalid, c.AcceptRate)
	case c.CacheBytes < 0:
		return fmt.Errorf("%w: cache_bytes %d", ErrInvalid, c.CacheBytes)
	case c.BackupKeep < 0:
		return fmt.Errorf("%w: backup_keep %d", ErrInvalid, c.BackupKeep)
	case c.BackupTarget != "" && c.BackupInterval <= 0:
		return fmt.Errorf("%w: backup_interval %s", ErrInvalid, c.BackupInterval)
	case c.DataPath == "":
		return fmt.Errorf("%w: data_path is empty", ErrInvalid)
	}

	return nil
}

// Address is the listen address for Port on all interfaces.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}
