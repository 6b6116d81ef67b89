package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineLimits bounds a fitter run: the Monte-Carlo trial ceiling, the
// refinement loop's maximum step count, and the MSRE it may stop early at.
// Grounded on original_source/src/fit.rs's MAX_INDIVIDUAL_STEPS constant and
// the racing fitter's FitOptions (internal/core/racing/fit.go), externalised
// here as operator-tunable config the way the teacher's risk_loader.go
// externalises per-sport/per-league spend caps. cmd/derive applies MaxTrials
// and TargetMSRE; MaxIndividualSteps is parsed but not passed to the racing
// fitter, whose loop is bounded by racing.MaxIndividualSteps.
type EngineLimits struct {
	MaxTrials          int     `yaml:"max_trials"`
	MaxIndividualSteps int     `yaml:"max_individual_steps"`
	TargetMSRE         float64 `yaml:"target_msre"`
}

// EngineConfig is the full YAML document cmd/derive and cmd/fit load: the
// run's limits plus a default coefficient-bundle path.
type EngineConfig struct {
	Limits             EngineLimits `yaml:"limits"`
	CoefficientsPath   string       `yaml:"coefficients_path"`
}

// DefaultEngineConfig matches original_source/src/fit.rs's
// MAX_INDIVIDUAL_STEPS=100 and a permissive MSRE target, used when no
// config file is present.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Limits: EngineLimits{
			MaxTrials:          100_000,
			MaxIndividualSteps: 100,
			TargetMSRE:         1e-6,
		},
		CoefficientsPath: "internal/core/racing/testdata/coefficients.json",
	}
}

// LoadEngineConfig reads an EngineConfig document from path. A missing file
// is not an error: the caller gets DefaultEngineConfig(), matching
// risk_loader.go's style of loud errors only on malformed (not missing)
// config.
func LoadEngineConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultEngineConfig(), nil
	}
	if err != nil {
		return EngineConfig{}, fmt.Errorf("read engine config: %w", err)
	}

	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("parse engine config: %w", err)
	}
	return cfg, nil
}
