package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int                 `toml:"version"`
	Paths         Paths               `toml:"paths"`
	Index         Index               `toml:"index"`
	DB            Database            `toml:"db"`
	Languages     map[string]Language `toml:"languages"`
	ScanPaths     []string            `toml:"scan_paths"`
	Exclude       Exclude             `toml:"exclude"`
	Watch         Watch               `toml:"watch"`
	Observability Observability       `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
}

// Index selects the consistency checker's outcome policy for watch-mode
// verification: "strict" fails hard on drift, "selfheal" swaps in the
// rebuilt index and keeps going.
type Index struct {
	Mode string `toml:"mode"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce          time.Duration `toml:"debounce"`
	RebuildsPerSecond float64       `toml:"rebuilds_per_second"`
	RebuildBurst      int           `toml:"rebuild_burst"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Port          int    `toml:"port"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a usable configuration without a config file, scanning
// the current directory in self-heal mode.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Paths.ProjectRoot) == "" {
		cfg.Paths.ProjectRoot = "."
	}
	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}
	if strings.TrimSpace(cfg.Index.Mode) == "" {
		cfg.Index.Mode = "selfheal"
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "declmap.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}
	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		// Patterns match against directory base names during the walk.
		cfg.Exclude.Dirs = []string{".git", "node_modules", "build", "target", "dist"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RebuildsPerSecond <= 0 {
		cfg.Watch.RebuildsPerSecond = 1
	}
	if cfg.Watch.RebuildBurst <= 0 {
		cfg.Watch.RebuildBurst = 2
	}
	if cfg.Observability.Port == 0 {
		cfg.Observability.Port = 9823
	}
	if strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		cfg.Observability.OTLPEndpoint = "127.0.0.1:4317"
	}
}

func Validate(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Index.Mode))
	if mode != "strict" && mode != "selfheal" {
		return fmt.Errorf("index.mode must be one of: strict, selfheal (got %q)", cfg.Index.Mode)
	}

	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty when db.enabled=true")
	}

	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.RebuildsPerSecond <= 0 {
		return fmt.Errorf("watch.rebuilds_per_second must be positive")
	}

	for language, settings := range cfg.Languages {
		if strings.TrimSpace(language) == "" {
			return fmt.Errorf("languages key must not be empty")
		}
		for _, ext := range settings.Extensions {
			if strings.TrimSpace(ext) == "" {
				return fmt.Errorf("languages.%s.extensions must not include empty values", language)
			}
		}
	}

	if cfg.Observability.Enabled {
		if cfg.Observability.Port <= 0 || cfg.Observability.Port > 65535 {
			return fmt.Errorf("observability.port must be a valid port, got %d", cfg.Observability.Port)
		}
	}
	return nil
}

// IsEnabled treats absent language toggles as enabled.
func (l Language) IsEnabled() bool {
	if l.Enabled == nil {
		return true
	}
	return *l.Enabled
}
