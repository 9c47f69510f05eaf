package scoring

import (
	"fmt"
	"sort"

	"golang-stock-scanner/internal/indicator"
)

const (
	ProfileFundamentalsV1 = indicator.MetricSetFundamentalsV1
	ProfileBalanceSheetV2 = indicator.MetricSetBalanceSheetV2
)

// stabilityBonus keeps scores of sparse pages off the floor.
var stabilityBonus = Rule{
	Kind:        FixedBonus,
	Label:       "Stability bonus",
	Weight:      5,
	Explanation: "Small constant bonus that offsets metrics missing from the page.",
}

// FundamentalsV1 scores valuation, profitability, size and dividends.
func FundamentalsV1() Profile {
	return Profile{
		Name:      ProfileFundamentalsV1,
		MetricSet: indicator.MetricSetFundamentalsV1,
		Rules: []Rule{
			{
				Kind: LowerIsBetter, Metric: indicator.MetricPriceToBook, Label: "Price/Book",
				Weight: 20, Best: 1, Worst: 3,
				Explanation: "P/B at or below 1.0 earns full points; 3.0 or above earns none.",
			},
			{
				Kind: LowerIsBetter, Metric: indicator.MetricPERatio, Label: "P/E (TTM)",
				Weight: 25, Best: 6, Worst: 25,
				Explanation: "P/E between 6 and 15 is healthy; 25 or above earns none.",
			},
			{
				Kind: HigherIsBetter, Metric: indicator.MetricROE, Label: "ROE (%)",
				Weight: 20, Min: 8, Target: 20,
				Explanation: "ROE of 20% or more earns full points; 8% or less earns none.",
			},
			{
				Kind: Binary, Metric: indicator.MetricEPS, Label: "Positive EPS",
				Weight:          10,
				Explanation:     "Positive EPS adds stability.",
				MissExplanation: "Negative or missing EPS zeroes this criterion.",
			},
			{
				Kind: HigherIsBetter, Metric: indicator.MetricDividendYield, Label: "Dividend yield (%)",
				Weight: 15, Min: 2, Target: 8,
				Explanation: "Higher yield improves the score, capped at 8%.",
			},
			{
				Kind: HigherIsBetter, Metric: indicator.MetricMarketCap, Label: "Size (market cap)",
				Weight: 10, Min: 2e9, Target: 10e9,
				Explanation: "10B or more earns full points; 2B or less earns none.",
			},
			stabilityBonus,
		},
	}
}

// BalanceSheetV2 scores valuation, asset returns, leverage, net income and dividends.
func BalanceSheetV2() Profile {
	return Profile{
		Name:      ProfileBalanceSheetV2,
		MetricSet: indicator.MetricSetBalanceSheetV2,
		Rules: []Rule{
			{
				Kind: LowerIsBetter, Metric: indicator.MetricPriceToBook, Label: "Price/Book",
				Weight: 20, Best: 1, Worst: 3,
				Explanation: "P/B at or below 1.0 earns full points; 3.0 or above earns none.",
			},
			{
				Kind: HigherIsBetter, Metric: indicator.MetricReturnOnAssets, Label: "ROA (%)",
				Weight: 20, Min: 2, Target: 10,
				Explanation: "ROA of 10% or more earns full points; 2% or less earns none.",
			},
			{
				Kind: HigherIsBetter, Metric: indicator.MetricReturnOnCapital, Label: "ROC (%)",
				Weight: 15, Min: 5, Target: 15,
				Explanation: "ROC of 15% or more earns full points; 5% or less earns none.",
			},
			{
				Kind: LowerIsBetter, Metric: indicator.MetricDebtRatio, Label: "Liabilities/Assets",
				Weight: 15, Best: 0.3, Worst: 0.8,
				Explanation: "Liabilities at or below 30% of assets earn full points; 80% or above earn none.",
			},
			{
				Kind: Binary, Metric: indicator.MetricNetIncome, Label: "Positive net income",
				Weight:          10,
				Explanation:     "Positive net income adds stability.",
				MissExplanation: "Negative or missing net income zeroes this criterion.",
			},
			{
				Kind: HigherIsBetter, Metric: indicator.MetricDividendYield, Label: "Dividend yield (%)",
				Weight: 15, Min: 2, Target: 8,
				Explanation: "Higher yield improves the score, capped at 8%.",
			},
			stabilityBonus,
		},
	}
}

// Catalog holds the scoring profiles available by name.
type Catalog map[string]Profile

// DefaultCatalog returns the built-in profiles.
func DefaultCatalog() Catalog {
	return Catalog{
		ProfileFundamentalsV1: FundamentalsV1(),
		ProfileBalanceSheetV2: BalanceSheetV2(),
	}
}

// Merge validates extra profiles and adds them, replacing built-ins with the same name.
func (c Catalog) Merge(extra []Profile) error {
	for _, p := range extra {
		if err := p.Validate(); err != nil {
			return err
		}
		c[p.Name] = p
	}
	return nil
}

// Get returns the profile registered under name.
func (c Catalog) Get(name string) (Profile, error) {
	p, ok := c[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown profile %q (available: %v)", ErrInvalidProfile, name, c.Names())
	}
	return p, nil
}

// Names returns the profile names, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
