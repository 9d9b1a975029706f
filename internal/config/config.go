package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// MaterializeConfig points at a CAVE-style synapse materialization service.
type MaterializeConfig struct {
	BaseURL   string `toml:"base_url"`
	Datastack string `toml:"datastack"`
	Version   int    `toml:"version"`
	Table     string `toml:"synapse_table"`
	Token     string `toml:"token"`
}

type CatmaidConfig struct {
	BaseURL   string `toml:"base_url"`
	ProjectID int    `toml:"project_id"`
	Token     string `toml:"token"`
}

type RealignConfig struct {
	Kind   string      `toml:"kind"`
	Target string      `toml:"target"`
	Matrix [][]float64 `toml:"matrix"`
}

type BackendConfig struct {
	// Synapses is "memgraph" or "materialize".
	Synapses string `toml:"synapses"`
	// Connectors is "memgraph" or "catmaid".
	Connectors string `toml:"connectors"`
}

type ConcurrencyConfig struct {
	PartnerBatches int `toml:"partner_batches"`
	BatchSize      int `toml:"batch_size"`
}

type ServerConfig struct {
	Port      string `toml:"port"`
	Community string `toml:"community"`
}

type Config struct {
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Materialize MaterializeConfig `toml:"materialize"`
	Catmaid     CatmaidConfig     `toml:"catmaid"`
	Realign     RealignConfig     `toml:"realign"`
	Backend     BackendConfig     `toml:"backend"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Server      ServerConfig      `toml:"server"`
	LogLevel    string            `toml:"log_level"`
}

func Default() *Config {
	return &Config{
		Memgraph: MemgraphConfig{URI: "bolt://localhost:7687"},
		Catmaid:  CatmaidConfig{ProjectID: 1},
		Realign:  RealignConfig{Kind: "identity", Target: "fanc4"},
		Backend:  BackendConfig{Synapses: "memgraph", Connectors: "memgraph"},
		Concurrency: ConcurrencyConfig{
			PartnerBatches: 4,
			BatchSize:      50,
		},
		Server:   ServerConfig{Port: "8080", Community: "lpa"},
		LogLevel: "info",
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides config values with any matching environment variables.
// Every variable is applied; numeric ones that do not parse are left at their
// previous value and reported in the returned error.
func (c *Config) ApplyEnv() error {
	var errs []error
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = n
		}
	}

	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")

	setString(&c.Materialize.BaseURL, "MATERIALIZE_URL")
	setString(&c.Materialize.Datastack, "MATERIALIZE_DATASTACK")
	setInt(&c.Materialize.Version, "MATERIALIZE_VERSION")
	setString(&c.Materialize.Table, "MATERIALIZE_SYNAPSE_TABLE")
	setString(&c.Materialize.Token, "CAVE_TOKEN")

	setString(&c.Catmaid.BaseURL, "CATMAID_URL")
	setInt(&c.Catmaid.ProjectID, "CATMAID_PROJECT_ID")
	setString(&c.Catmaid.Token, "CATMAID_TOKEN")

	setString(&c.Realign.Kind, "REALIGN_KIND")
	setString(&c.Realign.Target, "REALIGN_TARGET")

	setString(&c.Backend.Synapses, "SYNAPSE_BACKEND")
	setString(&c.Backend.Connectors, "CONNECTOR_BACKEND")

	setInt(&c.Concurrency.PartnerBatches, "PARTNER_BATCHES")
	setInt(&c.Concurrency.BatchSize, "PARTNER_BATCH_SIZE")

	setString(&c.Server.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")

	return errors.Join(errs...)
}

// LoadOrDefault loads path when it exists, falls back to Default otherwise,
// and applies environment overrides in both cases.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			cfg, err = Load(path)
			if err != nil {
				return nil, err
			}
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
