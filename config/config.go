// Package config reads the optional cadobr.toml configuration file.
//
// Values come from three places: command line flags win over the file, and
// the file wins over Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "cadobr.toml"

// Config is the content of a configuration file.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Reconcile Reconcile `toml:"reconcile"`
	Log       Log       `toml:"log"`
}

// Paths locates the pipeline trees.
type Paths struct {
	Raw        string `toml:"raw"`        // extracted documents, input of normalize
	Normalized string `toml:"normalized"` // output of normalize
	Monetary   string `toml:"monetary"`   // output of monetary
	Output     string `toml:"output"`     // parent of dataset directories
	Dataset    string `toml:"dataset"`    // dataset directory name
	Pattern    string `toml:"pattern"`    // file name glob
	IndexTable string `toml:"index_table"`
}

// Reconcile tunes the reconciler.
type Reconcile struct {
	NovationWindowDays int `toml:"novation_window_days"`
	Workers            int `toml:"workers"` // 0 means one per CPU
}

// Log selects the logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Paths: Paths{
			Raw:        "extracted",
			Normalized: "normalized",
			Monetary:   "monetary",
			Output:     "out",
			Dataset:    "cadobr",
			Pattern:    "*.json",
		},
		Reconcile: Reconcile{NovationWindowDays: 180},
		Log:       Log{Level: "info", Format: "text"},
	}
}

// Parse reads a configuration from r on top of the defaults.
// Unknown keys are errors.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown configuration keys:\n%s", strict.String())
		}
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the file at path. An empty path means DefaultFile, which may
// be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read configuration: %w", err)
	}
	c, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("format error in %q: %w", path, err)
	}
	return c, nil
}

// Save writes c to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values that have a constrained range.
func (c *Config) Validate() error {
	var errs []error
	if c.Reconcile.NovationWindowDays <= 0 {
		errs = append(errs, fmt.Errorf("reconcile.novation_window_days must be positive, got %d", c.Reconcile.NovationWindowDays))
	}
	if c.Reconcile.Workers < 0 {
		errs = append(errs, fmt.Errorf("reconcile.workers must not be negative, got %d", c.Reconcile.Workers))
	}
	if c.Paths.Pattern != "" {
		if _, err := filepath.Match(c.Paths.Pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("paths.pattern %q: %w", c.Paths.Pattern, err))
		}
	}
	return errors.Join(errs...)
}

// DatasetDir returns the directory of the dataset.
func (c *Config) DatasetDir() string {
	return filepath.Join(c.Paths.Output, c.Paths.Dataset)
}
