// Package config loads the simulation parameter file. All physical
// quantities are in SI units (m, s, K, m^-3).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level parameter file.
type Config struct {
	// Photons contains the photon budget settings.
	Photons PhotonsConfig `yaml:"photons"`
	// Iterations contains the outer-loop convergence settings.
	Iterations IterationsConfig `yaml:"iterations"`
	// Workers is the number of parallel workers (0 = number of CPUs).
	Workers int `yaml:"workers"`
	// Seed is the base random seed.
	Seed int64 `yaml:"seed"`
	// Grid describes the density grid.
	Grid GridConfig `yaml:"grid"`
	// Sources describes the photon sources.
	Sources SourcesConfig `yaml:"sources"`
}

// PhotonsConfig contains photon budget settings.
type PhotonsConfig struct {
	// Initial is the photon count guess for the first iteration.
	Initial int `yaml:"initial"`
	// DiscreteFraction is the budget share of the discrete sources when
	// a continuous source is also present.
	DiscreteFraction float64 `yaml:"discrete_fraction"`
}

// IterationsConfig contains outer-loop settings.
type IterationsConfig struct {
	Max       int     `yaml:"max"`
	Tolerance float64 `yaml:"tolerance"`
}

// GridConfig describes a uniform Cartesian grid.
type GridConfig struct {
	Cells       [3]int     `yaml:"cells"`
	Min         [3]float64 `yaml:"min"`
	Max         [3]float64 `yaml:"max"`
	Density     float64    `yaml:"density"`
	Temperature float64    `yaml:"temperature"`
}

// StarConfig is a single discrete point source.
type StarConfig struct {
	Position   [3]float64 `yaml:"position"`
	Luminosity float64    `yaml:"luminosity"`
}

// ContinuousConfig is an external radiation field entering through the grid
// surface. A zero flux disables it.
type ContinuousConfig struct {
	Flux float64 `yaml:"flux"`
}

// SpectrumConfig selects the spectrum of the sources.
type SpectrumConfig struct {
	// Type is "planck", "uniform" or "monochromatic".
	Type string `yaml:"type"`
	// Temperature is the effective temperature for a Planck spectrum (K).
	Temperature float64 `yaml:"temperature"`
	// Frequency is the line frequency for a monochromatic spectrum (Hz).
	Frequency float64 `yaml:"frequency"`
}

// SourcesConfig describes all photon sources.
type SourcesConfig struct {
	Stars      []StarConfig     `yaml:"stars"`
	Continuous ContinuousConfig `yaml:"continuous"`
	Spectrum   SpectrumConfig   `yaml:"spectrum"`
}

// Default returns a runnable configuration: a single 40000 K star in the
// middle of a small uniform cloud.
func Default() Config {
	return Config{
		Photons: PhotonsConfig{
			Initial:          100000,
			DiscreteFraction: 0.5,
		},
		Iterations: IterationsConfig{
			Max:       10,
			Tolerance: 0.01,
		},
		Workers: 0,
		Seed:    42,
		Grid: GridConfig{
			Cells:       [3]int{32, 32, 32},
			Min:         [3]float64{-1.543e17, -1.543e17, -1.543e17},
			Max:         [3]float64{1.543e17, 1.543e17, 1.543e17},
			Density:     1.e8,
			Temperature: 8000,
		},
		Sources: SourcesConfig{
			Stars: []StarConfig{
				{Position: [3]float64{0, 0, 0}, Luminosity: 4.26e49},
			},
			Spectrum: SpectrumConfig{
				Type:        "planck",
				Temperature: 40000,
			},
		},
	}
}

// Load reads a YAML parameter file, applying defaults for missing keys.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for fatal errors.
func (c Config) Validate() error {
	if c.Photons.Initial <= 0 {
		return fmt.Errorf("config: photons.initial must be positive, got %d", c.Photons.Initial)
	}
	if c.Iterations.Max <= 0 {
		return fmt.Errorf("config: iterations.max must be positive, got %d", c.Iterations.Max)
	}
	if c.Iterations.Tolerance <= 0 {
		return fmt.Errorf("config: iterations.tolerance must be positive, got %g", c.Iterations.Tolerance)
	}
	for i, n := range c.Grid.Cells {
		if n <= 0 {
			return fmt.Errorf("config: grid.cells[%d] must be positive, got %d", i, n)
		}
	}
	for i := range c.Grid.Min {
		if c.Grid.Min[i] >= c.Grid.Max[i] {
			return fmt.Errorf("config: grid.min[%d] must be below grid.max[%d]", i, i)
		}
	}
	if len(c.Sources.Stars) == 0 && c.Sources.Continuous.Flux <= 0 {
		return fmt.Errorf("config: no sources configured")
	}
	switch c.Sources.Spectrum.Type {
	case "planck", "uniform", "monochromatic":
	default:
		return fmt.Errorf("config: unknown spectrum type %q", c.Sources.Spectrum.Type)
	}
	return nil
}
