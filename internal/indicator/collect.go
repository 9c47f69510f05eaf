package indicator

import (
	"context"
	"errors"
)

// Fetcher retrieves the quote page for a ticker.
type Fetcher interface {
	Fetch(ctx context.Context, ticker, exchange string) (Document, error)
}

// Collect fetches, extracts and derives the record for one ticker.
// Every failure is returned as an *ExtractionError.
func Collect(ctx context.Context, fetcher Fetcher, extractor *Extractor, deriver *Deriver, ticker, exchange string) (Record, error) {
	exchange = extractor.ResolveExchange(exchange)

	doc, err := fetcher.Fetch(ctx, ticker, exchange)
	if err != nil {
		extErr := &ExtractionError{Ticker: ticker, Exchange: exchange, Err: err}
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			extErr.StatusCode = fetchErr.StatusCode
		}
		return Record{}, extErr
	}

	rec, err := extractor.Extract(doc, ticker, exchange)
	if err != nil {
		return Record{}, err
	}
	return deriver.Derive(rec), nil
}
