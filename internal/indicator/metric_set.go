package indicator

import (
	"fmt"
	"sort"
)

// MetricKey identifies one metric inside a Record.
type MetricKey string

const (
	MetricChangePercent     MetricKey = "change_percent"
	MetricMarketCap         MetricKey = "market_cap"
	MetricPriceToBook       MetricKey = "price_to_book"
	MetricEquity            MetricKey = "equity"
	MetricPERatio           MetricKey = "pe_ratio"
	MetricEBITDAMargin      MetricKey = "ebitda_margin"
	MetricROE               MetricKey = "roe"
	MetricDebtToEquity      MetricKey = "debt_to_equity"
	MetricEPS               MetricKey = "eps"
	MetricSharesOutstanding MetricKey = "shares_outstanding"
	MetricDividendYield     MetricKey = "dividend_yield"
	MetricReturnOnAssets    MetricKey = "return_on_assets"
	MetricReturnOnCapital   MetricKey = "return_on_capital"
	MetricTotalAssets       MetricKey = "total_assets"
	MetricTotalLiabilities  MetricKey = "total_liabilities"
	MetricNetIncome         MetricKey = "net_income"
	MetricDebtRatio         MetricKey = "debt_ratio"
)

const (
	MetricSetFundamentalsV1 = "fundamentals-v1"
	MetricSetBalanceSheetV2 = "balance-sheet-v2"
)

// MetricDef declares how one metric is located on the page.
// Selectors are tried before the synonym cascade. Derived metrics are never
// looked up on the page; the Deriver fills them.
type MetricDef struct {
	Key       MetricKey
	Label     string
	Selectors []string
	Synonyms  []string
	Derived   bool
}

// MetricSet is a named, ordered list of metric definitions.
type MetricSet struct {
	Name    string
	Metrics []MetricDef
}

// Has reports whether the set declares key.
func (s MetricSet) Has(key MetricKey) bool {
	for _, m := range s.Metrics {
		if m.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the metric keys in declaration order.
func (s MetricSet) Keys() []MetricKey {
	keys := make([]MetricKey, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		keys = append(keys, m.Key)
	}
	return keys
}

var (
	changePercentDef = MetricDef{
		Key:       MetricChangePercent,
		Label:     "Change %",
		Selectors: []string{"div.zWwE1 .JwB6zf, span.JwB6zf"},
	}
	marketCapDef = MetricDef{
		Key:      MetricMarketCap,
		Label:    "Market cap",
		Synonyms: []string{"Market cap", "Valor de mercado"},
	}
	priceToBookDef = MetricDef{
		Key:   MetricPriceToBook,
		Label: "P/B",
		Synonyms: []string{
			"Price to book", "P/VP", "P/VPA",
			"Preço/Valor Patrimonial", "Preço/Valor Patrimonio",
		},
	}
	equityDef = MetricDef{
		Key:   MetricEquity,
		Label: "Shareholders' equity",
		Synonyms: []string{
			"Shareholders' equity", "Total equity", "Patrimônio líquido", "Capital próprio",
		},
	}
	sharesOutstandingDef = MetricDef{
		Key:   MetricSharesOutstanding,
		Label: "Shares outstanding",
		Synonyms: []string{
			"Shares outstanding", "Ações em circulação", "Total shares",
			"Total de ações", "Ações emitidas", "Shares",
		},
	}
	dividendYieldDef = MetricDef{
		Key:      MetricDividendYield,
		Label:    "Dividend yield",
		Synonyms: []string{"Dividend yield", "Dividendos", "Rendimento de dividendos", "DY"},
	}
)

// FundamentalsV1 is the valuation, profitability and leverage metric set.
func FundamentalsV1() MetricSet {
	return MetricSet{
		Name: MetricSetFundamentalsV1,
		Metrics: []MetricDef{
			changePercentDef,
			marketCapDef,
			priceToBookDef,
			equityDef,
			{
				Key:      MetricPERatio,
				Label:    "P/E",
				Synonyms: []string{"P/E ratio", "P/L", "Price to earnings", "Preço/Lucro"},
			},
			{
				Key:      MetricEBITDAMargin,
				Label:    "EBITDA margin",
				Synonyms: []string{"EBITDA margin", "Margem EBITDA"},
			},
			{
				Key:   MetricROE,
				Label: "ROE",
				Synonyms: []string{
					"ROE", "Return on equity", "Retorno sobre patrimônio",
					"Retorno sobre capital próprio", "Retorno sobre PL",
				},
			},
			{
				Key:      MetricDebtToEquity,
				Label:    "Debt / equity",
				Synonyms: []string{"Debt / equity", "Debt to equity", "Dívida/Patrimônio"},
			},
			{
				Key:      MetricEPS,
				Label:    "EPS",
				Synonyms: []string{"EPS", "Earnings per share", "EPS (TTM)", "LPA", "Lucro por ação"},
			},
			sharesOutstandingDef,
			dividendYieldDef,
		},
	}
}

// BalanceSheetV2 is the asset-return and leverage metric set.
func BalanceSheetV2() MetricSet {
	return MetricSet{
		Name: MetricSetBalanceSheetV2,
		Metrics: []MetricDef{
			changePercentDef,
			marketCapDef,
			priceToBookDef,
			equityDef,
			{
				Key:      MetricReturnOnAssets,
				Label:    "ROA",
				Synonyms: []string{"Return on assets", "ROA", "Retorno sobre ativos"},
			},
			{
				Key:   MetricReturnOnCapital,
				Label: "ROC",
				Synonyms: []string{
					"Return on capital", "ROC", "ROIC", "Retorno sobre capital",
					"Retorno sobre capital investido",
				},
			},
			{
				Key:      MetricTotalAssets,
				Label:    "Total assets",
				Synonyms: []string{"Total assets", "Ativos totais", "Ativo total"},
			},
			{
				Key:      MetricTotalLiabilities,
				Label:    "Total liabilities",
				Synonyms: []string{"Total liabilities", "Passivos totais", "Passivo total"},
			},
			{
				Key:      MetricNetIncome,
				Label:    "Net income",
				Synonyms: []string{"Net income", "Lucro líquido", "Lucro liquido"},
			},
			sharesOutstandingDef,
			dividendYieldDef,
			{
				Key:     MetricDebtRatio,
				Label:   "Debt ratio",
				Derived: true,
			},
		},
	}
}

var metricSets = map[string]func() MetricSet{
	MetricSetFundamentalsV1: FundamentalsV1,
	MetricSetBalanceSheetV2: BalanceSheetV2,
}

// LookupMetricSet returns the metric set registered under name.
func LookupMetricSet(name string) (MetricSet, error) {
	build, ok := metricSets[name]
	if !ok {
		return MetricSet{}, fmt.Errorf("unknown metric set %q (available: %v)", name, MetricSetNames())
	}
	return build(), nil
}

// MetricSetNames lists the registered metric sets, sorted.
func MetricSetNames() []string {
	names := make([]string, 0, len(metricSets))
	for name := range metricSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
