package indicator

import (
	"errors"
	"fmt"
)

// ErrPriceNotFound is returned when the page has no usable current price.
var ErrPriceNotFound = errors.New("current price not found")

// FetchError reports a non-success response from the quote source.
type FetchError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError is the only error that crosses the extraction boundary:
// either the page could not be fetched or it carries no price.
type ExtractionError struct {
	Ticker     string
	Exchange   string
	StatusCode int
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("extract %s:%s: upstream status %d: %v", e.Ticker, e.Exchange, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("extract %s:%s: %v", e.Ticker, e.Exchange, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
