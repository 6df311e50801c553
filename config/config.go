package config

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

// Config holds solver and curve construction parameters.
//
// It maps onto an INI-style file:
//
//	[solver]
//	tolerance = 1e-6
//	max-iterations = 100
//
//	[curve]
//	interpolation = natural-spline
//
//	[scenario]
//	shift = -0.25
//	shift = 0.25
type Config struct {
	Solver   Solver
	Curve    Curve
	Log      Log
	Scenario Scenario
}

// Solver configures the Newton-Raphson bootstrap step.
type Solver struct {
	// Tolerance is the step size below which the iteration has converged.
	Tolerance float64

	// MaxIterations bounds the iteration. Exhausting it is a failure.
	MaxIterations int `gcfg:"max-iterations"`

	// InitialGuess is the starting zero rate for every node.
	InitialGuess float64 `gcfg:"initial-guess"`

	// DerivativeThreshold is the minimum derivative magnitude.
	// Below this, the step is undefined and the solve fails.
	DerivativeThreshold float64 `gcfg:"derivative-threshold"`
}

type Curve struct {
	// Interpolation names the default scheme: pwl, catmull-rom or natural-spline.
	Interpolation string
}

type Log struct {
	Level  string
	Format string // "json" or "text"
}

// Scenario lists the parallel shifts built by the scenario ladder, plus
// whether a key-rate bump of Bump is added for every node. Shifts are in
// percent: 0.01 is one basis point.
type Scenario struct {
	Shift    []float64
	KeyRates bool    `gcfg:"key-rates"`
	Bump     float64
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Solver: Solver{
		Tolerance:           1e-6,
		MaxIterations:       100,
		InitialGuess:        0,
		DerivativeThreshold: 1e-15,
	},
	Curve: Curve{
		Interpolation: "pwl",
	},
	Log: Log{
		Level:  "info",
		Format: "json",
	},
	Scenario: Scenario{
		KeyRates: false,
		Bump:     0.01,
	},
}

var defaultShifts = []float64{-1, -0.5, -0.25, 0.25, 0.5, 1}

// Default returns a copy of DefaultConfig with its shift list filled in.
func Default() Config {
	c := DefaultConfig
	c.Scenario.Shift = append([]float64(nil), defaultShifts...)
	return c
}

// Load reads an INI-style file over DefaultConfig and validates the result.
func Load(path string) (Config, error) {
	c := DefaultConfig
	if err := gcfg.ReadFileInto(&c, path); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return finish(c)
}

// Parse is Load for in-memory content.
func Parse(content string) (Config, error) {
	c := DefaultConfig
	if err := gcfg.ReadStringInto(&c, content); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return finish(c)
}

func finish(c Config) (Config, error) {
	if len(c.Scenario.Shift) == 0 {
		c.Scenario.Shift = append([]float64(nil), defaultShifts...)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the solver cannot run with.
func (c Config) Validate() error {
	if !(c.Solver.Tolerance > 0) {
		return fmt.Errorf("config: solver tolerance must be positive, got %g", c.Solver.Tolerance)
	}
	if c.Solver.MaxIterations <= 0 {
		return fmt.Errorf("config: solver max-iterations must be positive, got %d", c.Solver.MaxIterations)
	}
	if c.Solver.DerivativeThreshold < 0 {
		return fmt.Errorf("config: solver derivative-threshold must not be negative, got %g", c.Solver.DerivativeThreshold)
	}
	if c.Scenario.Bump == 0 && c.Scenario.KeyRates {
		return fmt.Errorf("config: scenario bump must be non-zero when key-rates is on")
	}
	return nil
}
