package config

import (
	"fmt"
	"runtime"
)

// SolverConfig holds the heat solver parameters.
type SolverConfig struct {
	NX           *int     `json:"nx,omitempty"`
	NY           *int     `json:"ny,omitempty"`
	MaxIter      *int     `json:"max_iter,omitempty"`
	Tolerance    *float64 `json:"tolerance,omitempty"`
	BoundaryTemp *float64 `json:"boundary_temp,omitempty"`
	Workers      *int     `json:"workers,omitempty"`
}

// EmptySolverConfig returns a SolverConfig with all fields unset.
func EmptySolverConfig() *SolverConfig {
	return &SolverConfig{}
}

// LoadSolverConfig loads and validates a SolverConfig from a JSON file.
func LoadSolverConfig(path string) (*SolverConfig, error) {
	cfg := EmptySolverConfig()
	if err := loadJSON(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *SolverConfig) Validate() error {
	if c.NX != nil && *c.NX < 3 {
		return fmt.Errorf("nx must be at least 3, got %d", *c.NX)
	}
	if c.NY != nil && *c.NY < 3 {
		return fmt.Errorf("ny must be at least 3, got %d", *c.NY)
	}
	if c.MaxIter != nil && *c.MaxIter < 1 {
		return fmt.Errorf("max_iter must be positive, got %d", *c.MaxIter)
	}
	if c.Tolerance != nil && *c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", *c.Tolerance)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", *c.Workers)
	}
	return nil
}

// GetNX returns the nx value or the default.
func (c *SolverConfig) GetNX() int {
	if c.NX == nil {
		return 500
	}
	return *c.NX
}

// GetNY returns the ny value or the default.
func (c *SolverConfig) GetNY() int {
	if c.NY == nil {
		return 500
	}
	return *c.NY
}

// GetMaxIter returns the max_iter value or the default.
func (c *SolverConfig) GetMaxIter() int {
	if c.MaxIter == nil {
		return 1000
	}
	return *c.MaxIter
}

// GetTolerance returns the tolerance value or the default.
func (c *SolverConfig) GetTolerance() float64 {
	if c.Tolerance == nil {
		return 1e-6
	}
	return *c.Tolerance
}

// GetBoundaryTemp returns the boundary_temp value or the default.
func (c *SolverConfig) GetBoundaryTemp() float64 {
	if c.BoundaryTemp == nil {
		return 100.0
	}
	return *c.BoundaryTemp
}

// GetWorkers returns the workers value or GOMAXPROCS.
func (c *SolverConfig) GetWorkers() int {
	if c.Workers == nil {
		return runtime.GOMAXPROCS(0)
	}
	return *c.Workers
}
