package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/vrischmann/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mycok/uPregel/pregel"
)

type pageRankConfig struct {
	DampingFactor        float64 `yaml:"damping_factor"`
	MinSADForConvergence float64 `yaml:"min_sad_for_convergence"`
	RedistributeDeadEnds bool    `yaml:"redistribute_dead_ends"`
}

type shortestPathConfig struct {
	Source   string `yaml:"source"`
	HopCount bool   `yaml:"hop_count"`
}

type coloringConfig struct {
	Seed int64 `yaml:"seed"`
}

// appConfig is populated from an optional YAML file, then from PREGEL_*
// environment variables and finally from explicitly set flags.
type appConfig struct {
	Computation    string        `yaml:"computation"`
	Topology       string        `yaml:"topology"`
	Undirected     bool          `yaml:"undirected"`
	Sinks          []string      `yaml:"sinks"`
	Workers        int           `yaml:"workers"`
	Asynchronous   bool          `yaml:"asynchronous"`
	MaxSupersteps  int           `yaml:"max_supersteps"`
	UpdateInterval time.Duration `yaml:"update_interval"`
	StatusAddr     string        `yaml:"status_addr"`
	PartitionMode  string        `yaml:"partition_detection_mode"`
	Partitioning   string        `yaml:"partitioning"`
	LogLevel       string        `yaml:"log_level"`

	PageRank     pageRankConfig     `yaml:"pagerank"`
	ShortestPath shortestPathConfig `yaml:"shortest_path"`
	Coloring     coloringConfig     `yaml:"coloring"`
}

// envOverrides mirrors the scalar settings of appConfig. Variables that are
// not set leave the corresponding pointer nil.
type envOverrides struct {
	Computation    *string
	Topology       *string
	Undirected     *bool
	Sinks          *string
	Workers        *int
	Asynchronous   *bool
	MaxSupersteps  *int
	UpdateInterval *time.Duration
	StatusAddr     *string
	PartitionMode  *string
	Partitioning   *string
	LogLevel       *string
	Source         *string
	Seed           *int64
}

func defaultConfig() appConfig {
	return appConfig{
		Computation:   "pagerank",
		Workers:       1,
		MaxSupersteps: 30,
		StatusAddr:    ":8080",
		PartitionMode: "single",
		Partitioning:  "range",
		LogLevel:      "info",
	}
}

func loadConfigFile(cfg *appConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *appConfig) error {
	var env envOverrides
	err := envconfig.InitWithOptions(&env, envconfig.Options{
		Prefix:      "PREGEL",
		AllOptional: true,
		LeaveNil:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	setString(&cfg.Computation, env.Computation)
	setString(&cfg.Topology, env.Topology)
	setString(&cfg.StatusAddr, env.StatusAddr)
	setString(&cfg.PartitionMode, env.PartitionMode)
	setString(&cfg.Partitioning, env.Partitioning)
	setString(&cfg.LogLevel, env.LogLevel)
	setString(&cfg.ShortestPath.Source, env.Source)

	if env.Sinks != nil {
		cfg.Sinks = splitList(*env.Sinks)
	}
	if env.Undirected != nil {
		cfg.Undirected = *env.Undirected
	}
	if env.Workers != nil {
		cfg.Workers = *env.Workers
	}
	if env.Asynchronous != nil {
		cfg.Asynchronous = *env.Asynchronous
	}
	if env.MaxSupersteps != nil {
		cfg.MaxSupersteps = *env.MaxSupersteps
	}
	if env.UpdateInterval != nil {
		cfg.UpdateInterval = *env.UpdateInterval
	}
	if env.Seed != nil {
		cfg.Coloring.Seed = *env.Seed
	}

	return nil
}

func (cfg *appConfig) validate() error {
	var err error

	if cfg.Topology == "" {
		err = multierror.Append(err, fmt.Errorf("topology URI not provided"))
	}

	if len(cfg.Sinks) == 0 {
		err = multierror.Append(err, fmt.Errorf("at least one sink URI must be provided"))
	}

	if cfg.Workers <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value %d for workers, must be > 0", cfg.Workers))
	}

	if cfg.MaxSupersteps <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value %d for max supersteps, must be > 0", cfg.MaxSupersteps))
	}

	if _, pErr := parsePartitioning(cfg.Partitioning); pErr != nil {
		err = multierror.Append(err, pErr)
	}

	if cfg.UpdateInterval < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value %s for update interval", cfg.UpdateInterval))
	}

	return err
}

func parsePartitioning(name string) (pregel.Partitioning, error) {
	switch name {
	case "range":
		return pregel.RangePartitioning, nil
	case "degree":
		return pregel.DegreePartitioning, nil
	default:
		return 0, fmt.Errorf("unsupported partitioning: %q", name)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
