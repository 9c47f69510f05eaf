package indicator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quotePage = `<!DOCTYPE html>
<html>
<head>
	<meta name="description" content="Get the latest Petrobras stock price">
</head>
<body>
	<div class="e1AOyf"><div class="zzDege">Petroleo Brasileiro SA Petrobras</div></div>
	<main>
		<div class="YMlKec fxKbKc">R$38.45</div>
		<div class="zWwE1"><span class="JwB6zf">1.25%</span></div>
		<div class="P6K39c"><div class="mfs7Fc">Market cap</div><div jsname="U8sYAd">500.20B BRL</div></div>
		<div class="P6K39c"><div class="mfs7Fc">P/E ratio</div><div jsname="U8sYAd">4.12</div></div>
		<div class="P6K39c"><div class="mfs7Fc">Dividend yield</div><div jsname="U8sYAd">14.50%</div></div>
		<div class="P6K39c"><div class="mfs7Fc">EPS</div><div jsname="U8sYAd">-</div></div>
		<div class="profile">
			<div>Sector</div><div>Energy</div>
		</div>
		<div class="financials">
			<span>Retorno sobre patrimônio</span><span>21,3%</span>
		</div>
		<div class="shares">
			<span>Ações em circulação</span><div jsname="U8sYAd">13,04 bi</div>
		</div>
	</main>
</body>
</html>`

func TestExtractorExtract(t *testing.T) {
	e := NewExtractor(ExtractorConfig{}, FundamentalsV1())

	rec, err := e.Extract(mustParse(t, quotePage), "PETR4", "")
	require.NoError(t, err)

	assert.Equal(t, "PETR4", rec.Ticker)
	assert.Equal(t, "BVMF", rec.Exchange)
	assert.Equal(t, "BRL", rec.Currency)
	assert.InDelta(t, 38.45, rec.Price, 1e-9)
	assert.Equal(t, "Petroleo Brasileiro SA Petrobras", rec.CompanyName)
	assert.Equal(t, "Energy", rec.Sector)
	assert.Equal(t, MetricSetFundamentalsV1, rec.MetricSet)

	expected := map[MetricKey]float64{
		MetricChangePercent:     1.25,
		MetricMarketCap:         500.2e9,
		MetricPERatio:           4.12,
		MetricDividendYield:     14.5,
		MetricROE:               21.3,
		MetricSharesOutstanding: 13.04e9,
	}
	for key, want := range expected {
		got, ok := rec.Value(key)
		require.True(t, ok, key)
		assert.InDelta(t, want, got, want*1e-9, key)
	}

	assert.Len(t, rec.Metrics, len(FundamentalsV1().Metrics))
	assert.Equal(t, []MetricKey{
		MetricPriceToBook, MetricEquity, MetricEBITDAMargin, MetricDebtToEquity, MetricEPS,
	}, rec.Missing(FundamentalsV1()))
}

func TestExtractorPriceIsMandatory(t *testing.T) {
	e := NewExtractor(DefaultExtractorConfig(), FundamentalsV1())

	pages := map[string]string{
		"no price element": `<div class="P6K39c"><div class="mfs7Fc">P/E ratio</div><div jsname="U8sYAd">4.12</div></div>`,
		"unparseable":      `<div class="YMlKec fxKbKc">—</div>`,
		"zero":             `<div class="YMlKec fxKbKc">R$ 0,00</div>`,
	}
	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			_, err := e.Extract(mustParse(t, page), "VALE3", "BVMF")
			require.Error(t, err)

			var extErr *ExtractionError
			require.True(t, errors.As(err, &extErr))
			assert.Equal(t, "VALE3", extErr.Ticker)
			assert.Equal(t, "BVMF", extErr.Exchange)
			assert.ErrorIs(t, err, ErrPriceNotFound)
		})
	}
}

func TestExtractorCurrency(t *testing.T) {
	e := NewExtractor(DefaultExtractorConfig(), FundamentalsV1())

	tests := []struct {
		price    string
		exchange string
		want     string
	}{
		{price: "R$ 38,45", exchange: "BVMF", want: "BRL"},
		{price: "$189.12", exchange: "NASDAQ", want: "USD"},
		{price: "US$ 12.00", exchange: "BVMF", want: "USD"},
		{price: "€12.30", exchange: "ETR", want: "EUR"},
		{price: "£4.10", exchange: "LON", want: "GBP"},
		{price: "38.45", exchange: "BVMF", want: "BRL"},
		{price: "38.45", exchange: "NYSE", want: "USD"},
	}
	for _, tt := range tests {
		t.Run(tt.price+"@"+tt.exchange, func(t *testing.T) {
			doc := mustParse(t, `<div class="YMlKec fxKbKc">`+tt.price+`</div>`)
			rec, err := e.Extract(doc, "TEST", tt.exchange)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Currency)
		})
	}
}

func TestExtractorFallbacks(t *testing.T) {
	e := NewExtractor(DefaultExtractorConfig(), FundamentalsV1())
	doc := mustParse(t, `<html><head><meta name="description" content="Banco do Brasil quote and news"></head>
		<body><span class="YMlKec">R$ 27,90</span></body></html>`)

	rec, err := e.Extract(doc, "BBAS3", "bvmf")
	require.NoError(t, err)

	assert.Equal(t, "BVMF", rec.Exchange)
	assert.Equal(t, "BBAS3", rec.CompanyName)
	assert.Equal(t, "Banco do Brasil quote and news", rec.Sector)
	assert.InDelta(t, 27.90, rec.Price, 1e-9)
	assert.Len(t, rec.Missing(FundamentalsV1()), len(FundamentalsV1().Metrics))
}

func TestExtractorDerivedMetricsStartAbsent(t *testing.T) {
	set := BalanceSheetV2()
	e := NewExtractor(DefaultExtractorConfig(), set)

	rec, err := e.Extract(mustParse(t, quotePage), "PETR4", "BVMF")
	require.NoError(t, err)

	v, declared := rec.Metrics[MetricDebtRatio]
	assert.True(t, declared)
	assert.Nil(t, v)
	_, hasPE := rec.Metrics[MetricPERatio]
	assert.False(t, hasPE)
	assert.Equal(t, MetricSetBalanceSheetV2, rec.MetricSet)
}

func TestNewExtractorNormalizesExchangeKeys(t *testing.T) {
	e := NewExtractor(ExtractorConfig{
		DefaultExchange:  "nyse",
		ExchangeCurrency: map[string]string{"lse": "gbp"},
	}, FundamentalsV1())
	doc := mustParse(t, `<div class="YMlKec fxKbKc">412.50</div>`)

	rec, err := e.Extract(doc, "BARC", "LSE")
	require.NoError(t, err)
	assert.Equal(t, "GBP", rec.Currency)

	rec, err = e.Extract(doc, "KO", "")
	require.NoError(t, err)
	assert.Equal(t, "NYSE", rec.Exchange)
	assert.Equal(t, "USD", rec.Currency)
}
