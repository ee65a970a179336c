package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/Google-eCarbon/ecarbon/pkg/service/chunker"
)

// Tuning is the evaluation tuning profile. Zero values fall back to the
// built-in defaults.
type Tuning struct {
	ChunkSize       int    `toml:"chunk_size"`
	ChunkMode       string `toml:"chunk_mode"`
	TopK            int    `toml:"top_k"`
	FetchTimeoutSec int    `toml:"fetch_timeout_sec"`
	UserAgent       string `toml:"user_agent"`
}

// Validate checks if the Tuning is valid
func (t *Tuning) Validate() error {
	if t.ChunkSize < 0 {
		return goerr.New("chunk_size must not be negative", goerr.V("chunk_size", t.ChunkSize))
	}
	if t.TopK < 0 {
		return goerr.New("top_k must not be negative", goerr.V("top_k", t.TopK))
	}
	if t.FetchTimeoutSec < 0 {
		return goerr.New("fetch_timeout_sec must not be negative", goerr.V("fetch_timeout_sec", t.FetchTimeoutSec))
	}
	if t.ChunkMode != "" {
		if err := chunker.Mode(t.ChunkMode).Validate(); err != nil {
			return goerr.Wrap(err, "invalid chunk_mode")
		}
	}
	return nil
}

// Mode returns the configured chunking mode, defaulting to by-parts.
func (t *Tuning) Mode() chunker.Mode {
	if t.ChunkMode == "" {
		return chunker.ModeByParts
	}
	return chunker.Mode(t.ChunkMode)
}

// FetchTimeout returns the configured fetch timeout, or zero when unset.
func (t *Tuning) FetchTimeout() time.Duration {
	return time.Duration(t.FetchTimeoutSec) * time.Second
}

// AppConfig holds the optional TOML tuning profile flag
type AppConfig struct {
	path string
}

// Flags returns CLI flags for application configuration
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a TOML tuning profile (optional)",
			Sources:     cli.EnvVars("ECARBON_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads and validates the tuning profile. Without a config
// file it returns an all-defaults profile.
func (a *AppConfig) Configure() (*Tuning, error) {
	var tuning Tuning
	if a.path == "" {
		return &tuning, nil
	}

	raw, err := os.ReadFile(a.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", a.path))
	}
	if err := toml.Unmarshal(raw, &tuning); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", a.path))
	}
	if err := tuning.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid config file", goerr.V("path", a.path))
	}

	return &tuning, nil
}
