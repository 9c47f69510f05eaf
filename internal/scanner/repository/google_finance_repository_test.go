package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scanner/config"
	"golang-stock-scanner/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleFinanceRepositoryFetch(t *testing.T) {
	var (
		mu             sync.Mutex
		gotPath, gotUA string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		mu.Unlock()
		switch r.URL.Path {
		case "/finance/quote/PETR4:BVMF":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body><div class="YMlKec fxKbKc">R$38,45</div></body></html>`))
		case "/finance/quote/MOVED:BVMF":
			http.Redirect(w, r, "/finance/quote/PETR4:BVMF", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	repo := NewGoogleFinanceRepository(config.GoogleFinance{
		BaseURL:             server.URL + "/finance/quote",
		Timeout:             2 * time.Second,
		MaxRequestPerMinute: 6000,
	}, logger.NewNop())

	t.Run("parses the page", func(t *testing.T) {
		doc, err := repo.Fetch(context.Background(), "PETR4", "BVMF")
		require.NoError(t, err)

		node, ok := doc.SelectFirst("div.YMlKec")
		require.True(t, ok)
		assert.Equal(t, "R$38,45", node.Text())
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "/finance/quote/PETR4:BVMF", gotPath)
		assert.Equal(t, config.DefaultUserAgent, gotUA)
	})

	t.Run("follows redirects", func(t *testing.T) {
		_, err := repo.Fetch(context.Background(), "MOVED", "BVMF")
		require.NoError(t, err)
	})

	t.Run("non-200 carries the status", func(t *testing.T) {
		_, err := repo.Fetch(context.Background(), "XXXX3", "BVMF")
		require.Error(t, err)

		var fetchErr *indicator.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
		assert.Equal(t, server.URL+"/finance/quote/XXXX3:BVMF", fetchErr.URL)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := repo.Fetch(ctx, "PETR4", "BVMF")
		var fetchErr *indicator.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Zero(t, fetchErr.StatusCode)
	})
}

func TestQuoteURL(t *testing.T) {
	repo := NewGoogleFinanceRepository(config.GoogleFinance{}, logger.NewNop())
	assert.Equal(t, "https://www.google.com/finance/quote/PETR4:BVMF", repo.QuoteURL("PETR4", "BVMF"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}
