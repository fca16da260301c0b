// Package config loads the fleet and solver configuration from a YAML
// file. Environment-level settings (ports, DSNs, provider URL) stay in
// the environment; this file describes the planning problem itself.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fleet-route-service/internal/domain"
)

type Config struct {
	Solver SolverConfig  `yaml:"solver"`
	Matrix MatrixConfig  `yaml:"matrix"`
	Fleet  []ClassConfig `yaml:"fleet"`
}

type SolverConfig struct {
	StopServiceTimeMinutes int   `yaml:"stop_service_time_minutes"`
	SkipPenaltyMinutes     int   `yaml:"skip_penalty_minutes"`
	SpanCostCoefficient    int64 `yaml:"span_cost_coefficient"`
	TimeLimitSeconds       int   `yaml:"time_limit_seconds"`
	MaxIterations          int   `yaml:"max_iterations"`
	Seed                   int64 `yaml:"seed"`
}

// TimeLimit returns the solver wall-clock limit, zero meaning none.
func (s SolverConfig) TimeLimit() time.Duration {
	return time.Duration(s.TimeLimitSeconds) * time.Second
}

type MatrixConfig struct {
	Workers        int `yaml:"workers"`
	RetryAttempts  int `yaml:"retry_attempts"`
	RetryBackoffMS int `yaml:"retry_backoff_ms"`
}

// RetryBackoff returns the initial backoff between retry attempts.
func (m MatrixConfig) RetryBackoff() time.Duration {
	return time.Duration(m.RetryBackoffMS) * time.Millisecond
}

type ClassConfig struct {
	Name              string          `yaml:"name"`
	Mode              string          `yaml:"mode"`
	Priority          int             `yaml:"priority"`
	WorkBudgetMinutes int             `yaml:"work_budget_minutes"`
	Vehicles          []VehicleConfig `yaml:"vehicles"`
}

type VehicleConfig struct {
	Name  string   `yaml:"name"`
	Start Endpoint `yaml:"start"`
	End   Endpoint `yaml:"end"`
}

type Endpoint struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Solver.StopServiceTimeMinutes < 0 {
		return fmt.Errorf("solver: stop_service_time_minutes must not be negative")
	}
	if c.Solver.SkipPenaltyMinutes <= 0 {
		return fmt.Errorf("solver: skip_penalty_minutes must be positive")
	}
	if len(c.Fleet) == 0 {
		return fmt.Errorf("fleet: at least one vehicle class is required")
	}
	seen := map[string]bool{}
	for i, cls := range c.Fleet {
		if cls.Name == "" {
			return fmt.Errorf("fleet[%d]: name is required", i)
		}
		if seen[cls.Name] {
			return fmt.Errorf("fleet[%d]: duplicate class name %q", i, cls.Name)
		}
		seen[cls.Name] = true
		if _, err := parseMode(cls.Mode); err != nil {
			return fmt.Errorf("fleet[%d] %s: %w", i, cls.Name, err)
		}
		if cls.WorkBudgetMinutes <= 0 {
			return fmt.Errorf("fleet[%d] %s: work_budget_minutes must be positive", i, cls.Name)
		}
		if len(cls.Vehicles) == 0 {
			return fmt.Errorf("fleet[%d] %s: at least one vehicle is required", i, cls.Name)
		}
		for j, v := range cls.Vehicles {
			if v.Name == "" {
				return fmt.Errorf("fleet[%d] %s: vehicles[%d]: name is required", i, cls.Name, j)
			}
			for _, ep := range []Endpoint{v.Start, v.End} {
				if ep.Lat < -90 || ep.Lat > 90 || ep.Lon < -180 || ep.Lon > 180 {
					return fmt.Errorf("fleet[%d] %s: vehicle %s has out-of-range coordinates", i, cls.Name, v.Name)
				}
			}
		}
	}
	return nil
}

func parseMode(s string) (domain.TravelMode, error) {
	switch s {
	case "bike":
		return domain.ModeBike, nil
	case "car":
		return domain.ModeCar, nil
	default:
		return "", fmt.Errorf("unknown travel mode %q", s)
	}
}

// Classes converts the fleet section into domain vehicle classes.
// Call only after Validate has passed.
func (c *Config) Classes() []domain.VehicleClass {
	classes := make([]domain.VehicleClass, 0, len(c.Fleet))
	for _, cls := range c.Fleet {
		mode, _ := parseMode(cls.Mode)
		vehicles := make([]domain.Vehicle, 0, len(cls.Vehicles))
		for _, v := range cls.Vehicles {
			vehicles = append(vehicles, domain.Vehicle{
				Name:  v.Name,
				Start: domain.Location{Lat: v.Start.Lat, Lon: v.Start.Lon},
				End:   domain.Location{Lat: v.End.Lat, Lon: v.End.Lon},
			})
		}
		classes = append(classes, domain.VehicleClass{
			Name:       cls.Name,
			Mode:       mode,
			Priority:   cls.Priority,
			WorkBudget: domain.Minutes(cls.WorkBudgetMinutes),
			Vehicles:   vehicles,
		})
	}
	return classes
}
