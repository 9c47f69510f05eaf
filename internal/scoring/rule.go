package scoring

import (
	"errors"
	"fmt"

	"golang-stock-scanner/internal/indicator"
)

// ErrInvalidProfile is returned by Profile.Validate.
var ErrInvalidProfile = errors.New("invalid scoring profile")

// RuleKind selects how a rule turns a metric value into a contribution.
type RuleKind string

const (
	LowerIsBetter  RuleKind = "lower_is_better"
	HigherIsBetter RuleKind = "higher_is_better"
	Binary         RuleKind = "binary"
	FixedBonus     RuleKind = "fixed_bonus"
)

// Rule is one weighted line of a scoring profile.
// Best/Worst apply to lower_is_better, Min/Target to higher_is_better.
type Rule struct {
	Kind            RuleKind            `mapstructure:"kind" json:"kind"`
	Metric          indicator.MetricKey `mapstructure:"metric" json:"metric,omitempty"`
	Label           string              `mapstructure:"label" json:"label"`
	Weight          float64             `mapstructure:"weight" json:"weight"`
	Best            float64             `mapstructure:"best" json:"best,omitempty"`
	Worst           float64             `mapstructure:"worst" json:"worst,omitempty"`
	Min             float64             `mapstructure:"min" json:"min,omitempty"`
	Target          float64             `mapstructure:"target" json:"target,omitempty"`
	Explanation     string              `mapstructure:"explanation" json:"explanation"`
	MissExplanation string              `mapstructure:"miss_explanation" json:"miss_explanation,omitempty"`
}

// Profile is an ordered list of rules scored against one metric set.
type Profile struct {
	Name      string `mapstructure:"name" json:"name"`
	MetricSet string `mapstructure:"metric_set" json:"metric_set"`
	Rules     []Rule `mapstructure:"rules" json:"rules"`
}

// Validate checks that every rule is well formed and references a metric of the profile's set.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProfile)
	}
	set, err := indicator.LookupMetricSet(p.MetricSet)
	if err != nil {
		return fmt.Errorf("%w: profile %s: %v", ErrInvalidProfile, p.Name, err)
	}
	if len(p.Rules) == 0 {
		return fmt.Errorf("%w: profile %s has no rules", ErrInvalidProfile, p.Name)
	}

	for i, r := range p.Rules {
		if r.Weight < 0 {
			return fmt.Errorf("%w: profile %s rule %d (%s): negative weight", ErrInvalidProfile, p.Name, i, r.Label)
		}
		if r.Kind == FixedBonus {
			continue
		}
		if !set.Has(r.Metric) {
			return fmt.Errorf("%w: profile %s rule %d (%s): metric %q not in set %s",
				ErrInvalidProfile, p.Name, i, r.Label, r.Metric, p.MetricSet)
		}
		switch r.Kind {
		case LowerIsBetter:
			if r.Worst <= r.Best {
				return fmt.Errorf("%w: profile %s rule %d (%s): worst must be greater than best",
					ErrInvalidProfile, p.Name, i, r.Label)
			}
		case HigherIsBetter:
			if r.Target <= r.Min {
				return fmt.Errorf("%w: profile %s rule %d (%s): target must be greater than min",
					ErrInvalidProfile, p.Name, i, r.Label)
			}
		case Binary:
		default:
			return fmt.Errorf("%w: profile %s rule %d (%s): unknown kind %q",
				ErrInvalidProfile, p.Name, i, r.Label, r.Kind)
		}
	}
	return nil
}
