package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/depnix/depnix/pkg/manifest"
)

// ManifestFileName is the project configuration filename.
const ManifestFileName = "depnix.toml"

type Config struct {
	Project  ProjectConfig  `toml:"project"`
	Generate GenerateConfig `toml:"generate,omitempty"`
}

type ProjectConfig struct {
	Name string `toml:"name"`
}

// GenerateConfig controls the generate command: which package manifest to
// walk, where emitter outputs land, and which emitters run.
type GenerateConfig struct {
	// Manifest is the package manifest filename, default package.json.
	Manifest string `toml:"manifest,omitempty"`

	// Out is the directory emitter outputs are written to, relative to the
	// project root. Defaults to the project root itself.
	Out string `toml:"out,omitempty"`

	// Emitters lists the expression emitters to run. Empty means all
	// registered emitters.
	Emitters []string `toml:"emitters,omitempty"`
}

// PackageManifest returns the configured package manifest filename, falling
// back to package.json.
func (c *Config) PackageManifest() string {
	if c.Generate.Manifest != "" {
		return c.Generate.Manifest
	}
	return manifest.DefaultFileName
}

// OutDir returns the configured output directory, falling back to ".".
func (c *Config) OutDir() string {
	if c.Generate.Out != "" {
		return c.Generate.Out
	}
	return "."
}

func UnmarshalConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	err := toml.Unmarshal(data, cfg)

	return cfg, err
}

func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return UnmarshalConfig(data)
}

func SaveFile(path string, cfg *Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
