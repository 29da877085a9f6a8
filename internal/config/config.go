// Package config loads tagman settings from YAML or CUE files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tagman/internal/schema"
	"github.com/roach88/tagman/internal/store"
)

// EnvDatabasePath overrides Database.Path when set.
const EnvDatabasePath = "TAGMAN_DB"

// Config is the full tagman configuration.
type Config struct {
	Database       Database      `yaml:"database" json:"database"`
	Object         schema.Object `yaml:"object" json:"object"`
	Log            Log           `yaml:"log" json:"log"`
	NormalizeNames bool          `yaml:"normalize_names" json:"normalize_names"`
}

// Database selects the SQLite driver and file.
type Database struct {
	Driver string `yaml:"driver" json:"driver"`
	Path   string `yaml:"path" json:"path"`

	// Pragmas replaces store.DefaultPragmas when set.
	Pragmas []string `yaml:"pragmas,omitempty" json:"pragmas,omitempty"`
}

// Log configures the slog handler built by the CLI.
type Log struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text, json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: Database{
			Driver: store.DriverMattn,
			Path:   "tags.db",
		},
		Object: schema.Object{
			Table:   "objects",
			Columns: []string{schema.DefaultIDColumn},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the file at path over Default, applies environment overrides,
// and validates the result. Files ending in .cue are evaluated as CUE;
// anything else is decoded as YAML. An empty path loads the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if strings.EqualFold(filepath.Ext(path), ".cue") {
			err = decodeCUE(path, data, cfg)
		} else {
			err = decodeYAML(data, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(cfg); err != nil {
		// An empty document leaves the defaults untouched.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return fmt.Errorf("building CUE value: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("CUE value is not concrete: %w", err)
	}
	if err := value.Decode(cfg); err != nil {
		return fmt.Errorf("decoding CUE value: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if p := os.Getenv(EnvDatabasePath); p != "" {
		c.Database.Path = p
	}
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case store.DriverMattn, store.DriverModernc:
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q (want %q or %q)",
			c.Database.Driver, store.DriverMattn, store.DriverModernc))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path: required"))
	}

	if err := c.Object.WithDefaults().Validate(); err != nil {
		errs = append(errs, err)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported format %q (want text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// StoreOptions converts the database settings into store options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:         c.Database.Driver,
		Path:           c.Database.Path,
		Pragmas:        c.Database.Pragmas,
		NormalizeNames: c.NormalizeNames,
	}
}
