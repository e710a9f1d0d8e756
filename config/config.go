package config

import (
	"fmt"
	"os"

	"github.com/haormj/clmatmul/accelerated"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSize    = 512
	DefaultCorner  = 10
	DefaultBackend = "blackcl"
)

// Backends lists the accepted values of Config.Backend.
var Backends = []string{"blackcl", "goopencl", "cpu", "blas"}

type Config struct {
	Backend string `yaml:"backend"`
	Matrix  struct {
		Size int `yaml:"size"`
		// Seed of zero means seed from the clock.
		Seed   int64 `yaml:"seed"`
		Corner int   `yaml:"corner"`
	} `yaml:"matrix"`
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

func Default() *Config {
	cfg := &Config{Backend: DefaultBackend}
	cfg.Matrix.Size = DefaultSize
	cfg.Matrix.Corner = DefaultCorner
	cfg.Logger.Verbosity = "warn"
	return cfg
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	known := false
	for _, b := range Backends {
		if c.Backend == b {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("config: unknown backend %q (want one of %v)", c.Backend, Backends)
	}

	if c.Matrix.Size <= 0 || c.Matrix.Size%accelerated.LocalGroupSize != 0 {
		return fmt.Errorf("config: matrix size must be a positive multiple of %d, got %d", accelerated.LocalGroupSize, c.Matrix.Size)
	}

	if c.Matrix.Corner < 0 {
		return fmt.Errorf("config: corner must not be negative, got %d", c.Matrix.Corner)
	}

	return nil
}
