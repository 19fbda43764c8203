// Package config reads the environment variables and optional parameter
// file the orchestrator and reconstructor commands need. Accessors
// follow the plain getEnvString pattern rather than pulling in a
// reflection-based config library: the variable set is small, flat,
// and unlikely to grow past a dozen entries.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Orchestrator holds the three environment variables the orchestrator
// needs.
type Orchestrator struct {
	UpstreamToken   string
	UpstreamBaseURL string
	DatabaseURL     string
}

// LoadOrchestrator reads Orchestrator fields from the environment.
func LoadOrchestrator() (Orchestrator, error) {
	cfg := Orchestrator{
		UpstreamToken:   getEnvString("UPSTREAM_TOKEN", ""),
		UpstreamBaseURL: getEnvString("UPSTREAM_BASE_URL", "https://icfpc2025-backend.example.org"),
		DatabaseURL:     getEnvString("DATABASE_URL", "file:orchestrator.db"),
	}
	if cfg.UpstreamToken == "" {
		return cfg, fmt.Errorf("config: UPSTREAM_TOKEN must be set")
	}
	return cfg, nil
}

// Reconstructor holds the annealing/solver knobs. Fields are filled from
// flags first, then an optional YAML override file, then the hardcoded
// defaults in internal/reconstruct/anneal.Params.WithDefaults.
type Reconstructor struct {
	Iters       int           `yaml:"iters"`
	LambdaBal   float64       `yaml:"lambda_bal"`
	Seed        int64         `yaml:"seed"`
	TimeLimit   time.Duration `yaml:"time_limit"`
	LogEvery    int           `yaml:"log_every"`
	SaveEvery   int           `yaml:"save_every"`
	T0          float64       `yaml:"t0"`
	Alpha       float64       `yaml:"alpha"`
	TMin        float64       `yaml:"tmin"`
	Restarts    int           `yaml:"restarts"`
	ReheatEvery int           `yaml:"reheat_every"`
	ReheatTo    float64       `yaml:"reheat_to"`
	Input       string        `yaml:"input"`
	Output      string        `yaml:"output"`
	N           int           `yaml:"n"`
	MinN        int           `yaml:"min_n"`
	MaxN        int           `yaml:"max_n"`
}

// LoadReconstructorParams reads a YAML params file, if path is non-empty,
// merging it over zero values (flags set on the CLI should be applied by
// the caller after this, so they win over the file).
func LoadReconstructorParams(path string) (Reconstructor, error) {
	var cfg Reconstructor
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading params file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing params file %s: %w", path, err)
	}
	return cfg, nil
}

func getEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

