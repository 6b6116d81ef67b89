package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the environment-sourced defaults both cmd/derive and cmd/fit
// start from: Monte-Carlo trial counts, the fitter's RNG seed, log
// verbosity, and where to find the structured engine config. Grounded on
// the teacher's internal/config/config.go (envStr/envInt helpers,
// godotenv.Load then os.Getenv overrides), repointed from exchange/webhook
// settings to derivation-engine settings.
type Config struct {
	// Trials is the default Monte-Carlo iteration count for both the
	// podium sampler and the racing fitter's refinement loop.
	Trials int

	// Seed seeds every PRNG source a run constructs, so a run is
	// reproducible given identical inputs.
	Seed int64

	// ConfigPath points at the YAML engine-config document (EngineLimits
	// plus an optional coefficient bundle path) that LoadEngineConfig
	// (engine_loader.go) loads.
	ConfigPath string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
}

// Load reads a .env file if present, then environment variables, falling
// back to hardcoded defaults for anything unset.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Trials:     envInt("EXOTICPRICE_TRIALS", 10_000),
		Seed:       int64(envInt("EXOTICPRICE_SEED", 42)),
		ConfigPath: envStr("EXOTICPRICE_CONFIG_PATH", "internal/config/engine.yaml"),
		LogLevel:   envStr("EXOTICPRICE_LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
