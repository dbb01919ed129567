// Package config provides configuration loading and management for
// estimation jobs. It handles loading configuration from YAML files,
// provides default values, and resolves the per-variable solver knobs
// into their typed forms.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"scatterinterp/pkg/interpolation"
	"scatterinterp/pkg/metric"
	"scatterinterp/pkg/spatial"
)

// Config is the YAML description of one estimation job.
type Config struct {
	// Estimator selects the algorithm: "idw" or "lwr".
	Estimator string `yaml:"estimator"`

	// Workers bounds the goroutines used per variable. Zero means one
	// per CPU.
	Workers int `yaml:"workers"`

	// Input is the sample table to read. CSV; a .gz suffix enables
	// transparent decompression.
	Input string `yaml:"input"`

	// Output is the result table to write. CSV; a .gz suffix enables
	// transparent compression.
	Output string `yaml:"output"`

	// Grid describes the target domain, one axis per coordinate in
	// sample-column order.
	Grid []AxisConfig `yaml:"grid"`

	// Variables holds per-variable solver options keyed by input
	// column name. Variables present in the input but absent here use
	// the defaults: all samples as neighbors, Euclidean distance.
	Variables map[string]VariableConfig `yaml:"variables"`
}

// AxisConfig is one grid axis: points evenly spaced from min to max
// inclusive.
type AxisConfig struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Points int     `yaml:"points"`
}

// VariableConfig holds the documented per-variable knobs.
type VariableConfig struct {
	// Neighbors is the sample count per local estimate; "all" (or the
	// value 0) means every sample of the variable.
	Neighbors Neighbors `yaml:"neighbors"`

	// Distance names the metric: "euclidean", "manhattan",
	// "chebyshev", "haversine" or "minkowski:<p>". Empty means
	// Euclidean.
	Distance string `yaml:"distance"`
}

// Neighbors is an int-or-"all" YAML scalar. Zero means all samples.
type Neighbors int

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Neighbors) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" || value.Value == "all" {
		*n = 0
		return nil
	}
	var v int
	if err := value.Decode(&v); err != nil {
		return fmt.Errorf("neighbors: want a positive integer or \"all\": %w", err)
	}
	if v < 0 {
		return fmt.Errorf("neighbors: must not be negative, got %d", v)
	}
	*n = Neighbors(v)
	return nil
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Estimator: "idw",
		Workers:   runtime.NumCPU(),
		Variables: make(map[string]VariableConfig),
	}
}

// Load loads configuration from a YAML file, overlaying the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Validate checks the parts of the configuration that do not depend on
// the input data.
func (c *Config) Validate() error {
	switch c.Estimator {
	case "idw", "lwr":
	default:
		return fmt.Errorf("config: unknown estimator %q", c.Estimator)
	}
	if c.Input == "" {
		return fmt.Errorf("config: input file not set")
	}
	if c.Output == "" {
		return fmt.Errorf("config: output file not set")
	}
	if len(c.Grid) == 0 {
		return fmt.Errorf("config: grid has no axes")
	}
	for i, ax := range c.Grid {
		if ax.Points < 1 {
			return fmt.Errorf("config: grid axis %d has %d points", i, ax.Points)
		}
		if ax.Points > 1 && ax.Max <= ax.Min {
			return fmt.Errorf("config: grid axis %d has empty extent [%g, %g]", i, ax.Min, ax.Max)
		}
	}
	for name, vc := range c.Variables {
		if _, err := metric.Parse(vc.Distance); err != nil {
			return fmt.Errorf("config: variable %q: %w", name, err)
		}
	}
	return nil
}

// Domain builds the grid domain the config describes.
func (c *Config) Domain() (*spatial.Grid, error) {
	axes := make([]spatial.Axis, len(c.Grid))
	for i, ax := range c.Grid {
		axes[i] = spatial.Axis{Min: ax.Min, Max: ax.Max, N: ax.Points}
	}
	return spatial.NewGrid(axes...)
}

// SolverConfig resolves the per-variable options into typed solver
// options, parsing the metric names.
func (c *Config) SolverConfig() (interpolation.Config, error) {
	out := make(interpolation.Config, len(c.Variables))
	for name, vc := range c.Variables {
		m, err := metric.Parse(vc.Distance)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		out[name] = interpolation.Options{
			Neighbors: int(vc.Neighbors),
			Distance:  m,
		}
	}
	return out, nil
}

// Solver returns the configured estimator with the given progress
// callback attached.
func (c *Config) Solver(progress interpolation.ProgressFunc) (interpolation.Estimator, error) {
	switch c.Estimator {
	case "idw":
		return &interpolation.IDW{Workers: c.Workers, Progress: progress}, nil
	case "lwr":
		return &interpolation.LWR{Workers: c.Workers, Progress: progress}, nil
	default:
		return nil, fmt.Errorf("config: unknown estimator %q", c.Estimator)
	}
}
