package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/seqlabel/pkg/dataset"
	"github.com/cyclopcam/seqlabel/pkg/storage"
)

type Config struct {
	Classes  map[string]string `json:"classes"`  // Class ID (as a string, because JSON) to name. If empty, we use the SoccerNet classes.
	CacheDir string            `json:"cacheDir"` // Directory for label cache files. If empty, the cache is stored next to the split directory.
	Output   OutputConfig      `json:"output"`
}

// Where relative output names are written.
// At most one of 'filesystem' or 'gcs' may be configured. If neither is, relative
// names are relative to the working directory.
type OutputConfig struct {
	Filesystem *OutputConfigFS  `json:"filesystem"`
	GCS        *OutputConfigGCS `json:"gcs"`
}

type OutputConfigFS struct {
	Root string `json:"root"` // Path to the output directory
}

type OutputConfigGCS struct {
	Bucket string `json:"bucket"` // Name of the GCS bucket
	Prefix string `json:"prefix"` // Optional object name prefix, such as "exports/soccernet"
}

// Default returns the configuration that is used when no config file is given
func Default() *Config {
	return &Config{
		Classes: map[string]string{},
	}
}

// Load reads a JSON config file, which may be a local path or a gs:// location.
// If filename is empty, the defaults are returned.
func Load(log logs.Log, filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	cfg := Default()
	if cfgB, err := storage.ReadFrom(log, filename); err != nil {
		return nil, err
	} else {
		if err := json.Unmarshal(cfgB, cfg); err != nil {
			return nil, fmt.Errorf("Error parsing config file %v: %w", filename, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Invalid config file %v: %w", filename, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Output.Filesystem != nil && c.Output.GCS != nil {
		return errors.New("Only one of output.filesystem or output.gcs may be set")
	}
	if c.Output.Filesystem != nil && c.Output.Filesystem.Root == "" {
		return errors.New("output.filesystem.root may not be empty")
	}
	if c.Output.GCS != nil && c.Output.GCS.Bucket == "" {
		return errors.New("output.gcs.bucket may not be empty")
	}
	_, err := c.ClassMap()
	return err
}

// ClassMap builds the immutable class map from the 'classes' section
func (c *Config) ClassMap() (*dataset.ClassMap, error) {
	if len(c.Classes) == 0 {
		return dataset.DefaultClasses(), nil
	}
	names := map[int]string{}
	for key, name := range c.Classes {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("Class ID '%v' is not an integer", key)
		}
		names[id] = name
	}
	return dataset.NewClassMap(names)
}

// LoadClasses returns the class map from a class names file (a local path or a gs://
// location) if classFile is not empty, and otherwise from the 'classes' section.
func (c *Config) LoadClasses(log logs.Log, classFile string) (*dataset.ClassMap, error) {
	if classFile == "" {
		return c.ClassMap()
	}
	raw, err := storage.ReadFrom(log, classFile)
	if err != nil {
		return nil, err
	}
	classes, err := dataset.ParseClassNames(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("Invalid class file %v: %w", classFile, err)
	}
	return classes, nil
}

// ResolveOutput turns an output name from the command line into a storage location.
// Absolute paths and gs:// URLs are returned unchanged.
func (c *Config) ResolveOutput(name string) string {
	if filepath.IsAbs(name) || storage.IsGCSLocation(name) {
		return name
	}
	if c.Output.GCS != nil {
		return storage.GCSScheme + c.Output.GCS.Bucket + "/" + path.Join(c.Output.GCS.Prefix, filepath.ToSlash(name))
	}
	if c.Output.Filesystem != nil {
		return filepath.Join(c.Output.Filesystem.Root, name)
	}
	return name
}
