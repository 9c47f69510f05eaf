package indicator

import (
	"strings"
)

// CurrencySymbol maps a price prefix to an ISO currency code.
type CurrencySymbol struct {
	Symbol   string `mapstructure:"symbol"`
	Currency string `mapstructure:"currency"`
}

// ExtractorConfig holds the page-specific selectors and currency defaults.
type ExtractorConfig struct {
	Layout           Layout            `mapstructure:"layout"`
	PriceSelectors   []string          `mapstructure:"price_selectors"`
	CompanySelectors []string          `mapstructure:"company_selectors"`
	SectorLabels     []string          `mapstructure:"sector_labels"`
	DefaultExchange  string            `mapstructure:"default_exchange"`
	ExchangeCurrency map[string]string `mapstructure:"exchange_currency"`
	DefaultCurrency  string            `mapstructure:"default_currency"`
	CurrencySymbols  []CurrencySymbol  `mapstructure:"currency_symbols"`
}

// DefaultExtractorConfig returns the Google Finance selectors.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Layout:           DefaultLayout(),
		PriceSelectors:   []string{"div.YMlKec.fxKbKc", ".YMlKec"},
		CompanySelectors: []string{"div.zzDege, div.e1AOyf h1, div.e1AOyf .zzDege, div.e1AOyf div.eYanAe"},
		SectorLabels:     []string{"Sector", "Setor"},
		DefaultExchange:  "BVMF",
		ExchangeCurrency: map[string]string{"BVMF": "BRL"},
		DefaultCurrency:  "USD",
		// Longer symbols first: "R$" and "US$" must win over "$".
		CurrencySymbols: []CurrencySymbol{
			{Symbol: "R$", Currency: "BRL"},
			{Symbol: "US$", Currency: "USD"},
			{Symbol: "€", Currency: "EUR"},
			{Symbol: "£", Currency: "GBP"},
			{Symbol: "¥", Currency: "JPY"},
			{Symbol: "$", Currency: "USD"},
		},
	}
}

// Extractor turns a quote page into a Record for one metric set.
type Extractor struct {
	cfg     ExtractorConfig
	set     MetricSet
	matcher *Matcher
}

// NewExtractor creates an Extractor. Empty config fields take the defaults.
func NewExtractor(cfg ExtractorConfig, set MetricSet) *Extractor {
	def := DefaultExtractorConfig()
	if len(cfg.PriceSelectors) == 0 {
		cfg.PriceSelectors = def.PriceSelectors
	}
	if len(cfg.CompanySelectors) == 0 {
		cfg.CompanySelectors = def.CompanySelectors
	}
	if len(cfg.SectorLabels) == 0 {
		cfg.SectorLabels = def.SectorLabels
	}
	if cfg.DefaultExchange == "" {
		cfg.DefaultExchange = def.DefaultExchange
	}
	cfg.DefaultExchange = strings.ToUpper(cfg.DefaultExchange)
	if len(cfg.ExchangeCurrency) == 0 {
		cfg.ExchangeCurrency = def.ExchangeCurrency
	}
	// Config loaders may lowercase map keys.
	exchangeCurrency := make(map[string]string, len(cfg.ExchangeCurrency))
	for exchange, currency := range cfg.ExchangeCurrency {
		exchangeCurrency[strings.ToUpper(exchange)] = strings.ToUpper(currency)
	}
	cfg.ExchangeCurrency = exchangeCurrency
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = def.DefaultCurrency
	}
	if len(cfg.CurrencySymbols) == 0 {
		cfg.CurrencySymbols = def.CurrencySymbols
	}
	return &Extractor{
		cfg:     cfg,
		set:     set,
		matcher: NewMatcher(cfg.Layout),
	}
}

// MetricSet returns the metric set the extractor fills.
func (e *Extractor) MetricSet() MetricSet {
	return e.set
}

// ResolveExchange applies the default exchange to a blank value.
func (e *Extractor) ResolveExchange(exchange string) string {
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if exchange == "" {
		return e.cfg.DefaultExchange
	}
	return exchange
}

// Extract builds the Record for ticker. It fails only when no positive price is found.
func (e *Extractor) Extract(doc Document, ticker, exchange string) (Record, error) {
	exchange = e.ResolveExchange(exchange)

	priceText, price, ok := e.price(doc)
	if !ok {
		return Record{}, &ExtractionError{Ticker: ticker, Exchange: exchange, Err: ErrPriceNotFound}
	}

	rec := Record{
		Ticker:      ticker,
		Exchange:    exchange,
		Currency:    e.currency(priceText, exchange),
		Price:       price,
		CompanyName: e.companyName(doc, ticker),
		Sector:      e.sector(doc),
		MetricSet:   e.set.Name,
		Metrics:     make(map[MetricKey]*float64, len(e.set.Metrics)),
	}

	for _, def := range e.set.Metrics {
		rec.without(def.Key)
		if def.Derived {
			continue
		}
		if v, ok := e.metric(doc, def); ok {
			rec.with(def.Key, v)
		}
	}
	return rec, nil
}

func (e *Extractor) price(doc Document) (string, float64, bool) {
	for _, selector := range e.cfg.PriceSelectors {
		node, ok := doc.SelectFirst(selector)
		if !ok {
			continue
		}
		text := node.Text()
		if v, ok := Normalize(text); ok && v > 0 {
			return text, v, true
		}
	}
	return "", 0, false
}

func (e *Extractor) currency(priceText, exchange string) string {
	prefix := priceText
	if i := strings.IndexFunc(priceText, isDigit); i >= 0 {
		prefix = priceText[:i]
	}
	prefix = strings.TrimSpace(prefix)
	if prefix != "" {
		for _, cs := range e.cfg.CurrencySymbols {
			if strings.Contains(prefix, cs.Symbol) {
				return cs.Currency
			}
		}
	}
	if currency, ok := e.cfg.ExchangeCurrency[exchange]; ok {
		return currency
	}
	return e.cfg.DefaultCurrency
}

func (e *Extractor) companyName(doc Document, ticker string) string {
	for _, selector := range e.cfg.CompanySelectors {
		if node, ok := doc.SelectFirst(selector); ok {
			if name := node.Text(); name != "" {
				return name
			}
		}
	}
	return ticker
}

func (e *Extractor) sector(doc Document) string {
	if label, ok := e.matcher.FindLabel(doc, e.cfg.SectorLabels); ok {
		if next, ok := label.NextSibling(); ok {
			if text := next.Text(); text != "" {
				return text
			}
		}
	}
	if meta, ok := doc.SelectFirst("meta[name=description]"); ok {
		if content, ok := meta.Attr("content"); ok {
			return strings.TrimSpace(content)
		}
	}
	return ""
}

func (e *Extractor) metric(doc Document, def MetricDef) (float64, bool) {
	for _, selector := range def.Selectors {
		if node, ok := doc.SelectFirst(selector); ok {
			if v, ok := Normalize(node.Text()); ok {
				return v, true
			}
		}
	}
	if len(def.Synonyms) == 0 {
		return 0, false
	}
	return e.matcher.Resolve(doc, def.Synonyms)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
