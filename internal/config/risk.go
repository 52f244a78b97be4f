package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/risk"
)

type riskScoring struct {
	// overrides for the score multiplier applied per asset criticality, e.g. "high: 1.5"
	CriticalityMultipliers map[string]float64 `yaml:"criticality-multipliers" json:"criticality-multipliers" mapstructure:"criticality-multipliers"`
}

func (cfg riskScoring) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("risk.criticality-multipliers", map[string]float64{})
}

func (cfg *riskScoring) parseConfigValues() error {
	normalized := make(map[string]float64, len(cfg.CriticalityMultipliers))
	for name, m := range cfg.CriticalityMultipliers {
		c := model.ParseCriticality(name)
		if c == model.UnknownCriticality {
			return fmt.Errorf("bad risk.criticality-multipliers key %q", name)
		}
		if m < 0 {
			return fmt.Errorf("risk.criticality-multipliers %q must not be negative", name)
		}
		normalized[c.String()] = m
	}
	cfg.CriticalityMultipliers = normalized
	return nil
}

// Weights returns the default scoring weights with any configured multiplier overrides applied.
func (cfg riskScoring) Weights() risk.Weights {
	return risk.DefaultWeights().WithCriticalityMultipliers(cfg.CriticalityMultipliers)
}
