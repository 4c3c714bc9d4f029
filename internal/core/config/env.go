package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: DECLMAP_[SECTION]_[KEY]
// (e.g., DECLMAP_OBSERVABILITY_PORT).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Paths.ProjectRoot, "DECLMAP_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "DECLMAP_PATHS_STATE_DIR")

	setEnvString(&cfg.Index.Mode, "DECLMAP_INDEX_MODE")

	setEnvBool(&cfg.DB.Enabled, "DECLMAP_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "DECLMAP_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "DECLMAP_DB_BUSY_TIMEOUT")

	setEnvDuration(&cfg.Watch.Debounce, "DECLMAP_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.RebuildsPerSecond, "DECLMAP_WATCH_REBUILDS_PER_SECOND")
	setEnvInt(&cfg.Watch.RebuildBurst, "DECLMAP_WATCH_REBUILD_BURST")

	setEnvBool(&cfg.Observability.Enabled, "DECLMAP_OBSERVABILITY_ENABLED")
	setEnvInt(&cfg.Observability.Port, "DECLMAP_OBSERVABILITY_PORT")
	setEnvString(&cfg.Observability.OTLPEndpoint, "DECLMAP_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "DECLMAP_OBSERVABILITY_ENABLE_TRACING")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
