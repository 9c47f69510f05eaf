package scoring

import (
	"math"

	"golang-stock-scanner/internal/indicator"
)

// Verdict is the coarse classification of a score.
type Verdict string

const (
	VerdictPotentialBuy Verdict = "potential buy"
	VerdictNeutralWatch Verdict = "neutral/watch"
	VerdictAvoid        Verdict = "avoid"
)

const (
	potentialBuyThreshold = 70.0
	neutralThreshold      = 55.0
	maxScore              = 100.0
)

// VerdictFor classifies a clamped score.
func VerdictFor(score float64) Verdict {
	switch {
	case score >= potentialBuyThreshold:
		return VerdictPotentialBuy
	case score >= neutralThreshold:
		return VerdictNeutralWatch
	default:
		return VerdictAvoid
	}
}

// BreakdownEntry is the contribution of one rule. Value is nil when the metric was absent
// or the rule does not read a metric.
type BreakdownEntry struct {
	Label        string   `json:"label"`
	Value        *float64 `json:"value"`
	Weight       float64  `json:"weight"`
	Contribution float64  `json:"contribution"`
	Explanation  string   `json:"explanation"`
}

// Result is a score in [0, 100], its verdict and the per-rule breakdown in profile order.
type Result struct {
	Profile   string           `json:"profile"`
	Score     float64          `json:"score"`
	Verdict   Verdict          `json:"verdict"`
	Breakdown []BreakdownEntry `json:"breakdown"`
}

// Engine scores indicator records against profiles.
type Engine interface {
	Score(rec indicator.Record, p Profile) Result
}

type engine struct{}

// NewEngine creates a scoring Engine.
func NewEngine() Engine {
	return engine{}
}

// Score never fails: absent metrics contribute zero. Weights are not normalized;
// the total is rounded to one decimal and capped at 100.
func (engine) Score(rec indicator.Record, p Profile) Result {
	breakdown := make([]BreakdownEntry, 0, len(p.Rules))
	total := 0.0

	for _, r := range p.Rules {
		var value *float64
		if r.Kind != FixedBonus {
			if v, ok := rec.Value(r.Metric); ok {
				value = &v
			}
		}

		contribution := contribute(r, value)
		total += contribution

		explanation := r.Explanation
		if contribution == 0 && r.MissExplanation != "" {
			explanation = r.MissExplanation
		}
		breakdown = append(breakdown, BreakdownEntry{
			Label:        r.Label,
			Value:        value,
			Weight:       r.Weight,
			Contribution: contribution,
			Explanation:  explanation,
		})
	}

	score := math.Min(maxScore, math.Round(total*10)/10)
	if score < 0 {
		score = 0
	}
	return Result{
		Profile:   p.Name,
		Score:     score,
		Verdict:   VerdictFor(score),
		Breakdown: breakdown,
	}
}

func contribute(r Rule, value *float64) float64 {
	if r.Kind == FixedBonus {
		return r.Weight
	}
	if value == nil || math.IsNaN(*value) {
		return 0
	}
	v := *value

	switch r.Kind {
	case LowerIsBetter:
		return lowerIsBetter(v, r.Best, r.Worst, r.Weight)
	case HigherIsBetter:
		return higherIsBetter(v, r.Min, r.Target, r.Weight)
	case Binary:
		if v > 0 {
			return r.Weight
		}
	}
	return 0
}

func lowerIsBetter(v, best, worst, weight float64) float64 {
	switch {
	case v <= best:
		return weight
	case v >= worst:
		return 0
	}
	return weight * (1 - (v-best)/(worst-best))
}

func higherIsBetter(v, floor, target, weight float64) float64 {
	switch {
	case v <= floor:
		return 0
	case v >= target:
		return weight
	}
	return weight * (v - floor) / (target - floor)
}
