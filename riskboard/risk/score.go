/*
Package risk turns the risk-relevant attributes of a finding into a bounded remediation priority.
*/
package risk

import (
	"math"

	"github.com/anchore/riskboard/riskboard/model"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Input holds everything the score depends on. AssetCriticality and DaysOpen are optional.
type Input struct {
	Severity         model.Severity
	ExploitAvailable bool
	AssetCriticality *model.Criticality
	DaysOpen         *int
}

// AgeBonus awards Points to findings open strictly longer than OlderThanDays.
type AgeBonus struct {
	OlderThanDays int
	Points        float64
}

// Weights are the constants of the scoring function.
type Weights struct {
	SeverityBase          map[model.Severity]float64
	UnknownSeverityBase   float64
	ExploitBonus          float64
	CriticalityMultiplier map[model.Criticality]float64
	// AgeBonuses must be ordered from the highest threshold down; the first match wins.
	AgeBonuses []AgeBonus
}

func DefaultWeights() Weights {
	return Weights{
		SeverityBase: map[model.Severity]float64{
			model.SeverityCritical: 40,
			model.SeverityHigh:     30,
			model.SeverityMedium:   20,
			model.SeverityLow:      10,
		},
		UnknownSeverityBase: 5,
		ExploitBonus:        25,
		CriticalityMultiplier: map[model.Criticality]float64{
			model.CriticalityCritical: 1.5,
			model.CriticalityHigh:     1.25,
			model.CriticalityMedium:   1.0,
			model.CriticalityLow:      0.75,
		},
		AgeBonuses: []AgeBonus{
			{OlderThanDays: 90, Points: 20},
			{OlderThanDays: 30, Points: 10},
			{OlderThanDays: 7, Points: 5},
		},
	}
}

var defaultWeights = DefaultWeights()

// Score computes the priority using the default weights.
func Score(in Input) int {
	return defaultWeights.Score(in)
}

// Score computes the priority of a finding: severity base, plus exploit bonus, times asset criticality, plus age
// bonus, rounded and clamped to [0,100].
func (w Weights) Score(in Input) int {
	total, ok := w.SeverityBase[in.Severity]
	if !ok {
		total = w.UnknownSeverityBase
	}

	if in.ExploitAvailable {
		total += w.ExploitBonus
	}

	if in.AssetCriticality != nil {
		if m, ok := w.CriticalityMultiplier[*in.AssetCriticality]; ok {
			total *= m
		}
	}

	if in.DaysOpen != nil {
		for _, b := range w.AgeBonuses {
			if *in.DaysOpen > b.OlderThanDays {
				total += b.Points
				break
			}
		}
	}

	return clamp(int(math.Round(total)))
}

func clamp(v int) int {
	switch {
	case v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	}
	return v
}

// WithCriticalityMultipliers returns a copy of the weights with the given multipliers overriding the defaults.
// Unrecognized criticality names are ignored.
func (w Weights) WithCriticalityMultipliers(overrides map[string]float64) Weights {
	merged := make(map[model.Criticality]float64, len(w.CriticalityMultiplier))
	for k, v := range w.CriticalityMultiplier {
		merged[k] = v
	}
	for name, v := range overrides {
		c := model.ParseCriticality(name)
		if c == model.UnknownCriticality {
			continue
		}
		merged[c] = v
	}
	w.CriticalityMultiplier = merged
	return w
}
