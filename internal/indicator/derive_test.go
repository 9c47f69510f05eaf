package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(set MetricSet, price float64, values map[MetricKey]float64) Record {
	rec := Record{
		Ticker:    "TEST3",
		Exchange:  "BVMF",
		Currency:  "BRL",
		Price:     price,
		MetricSet: set.Name,
		Metrics:   make(map[MetricKey]*float64),
	}
	for _, key := range set.Keys() {
		rec.without(key)
	}
	for key, v := range values {
		rec.with(key, v)
	}
	return rec
}

func TestDeriverPriceToBook(t *testing.T) {
	d := NewDeriver(0)

	t.Run("derived from equity and shares", func(t *testing.T) {
		rec := newRecord(FundamentalsV1(), 10, map[MetricKey]float64{
			MetricEquity:            1_000_000_000,
			MetricSharesOutstanding: 200_000_000,
		})

		out := d.Derive(rec)

		pb, ok := out.Value(MetricPriceToBook)
		require.True(t, ok)
		assert.InDelta(t, 2.0, pb, 1e-12)
		_, ok = rec.Value(MetricPriceToBook)
		assert.False(t, ok, "input record must not be mutated")
	})

	t.Run("direct value is kept", func(t *testing.T) {
		rec := newRecord(FundamentalsV1(), 10, map[MetricKey]float64{
			MetricPriceToBook:       1.3,
			MetricEquity:            1_000_000_000,
			MetricSharesOutstanding: 200_000_000,
		})

		pb, ok := d.Derive(rec).Value(MetricPriceToBook)
		require.True(t, ok)
		assert.Equal(t, 1.3, pb)
	})

	t.Run("negative equity leaves it absent", func(t *testing.T) {
		rec := newRecord(FundamentalsV1(), 10, map[MetricKey]float64{
			MetricEquity:            -5_000_000,
			MetricSharesOutstanding: 200_000_000,
		})

		_, ok := d.Derive(rec).Value(MetricPriceToBook)
		assert.False(t, ok)
	})

	t.Run("implausible share count is discarded first", func(t *testing.T) {
		rec := newRecord(FundamentalsV1(), 10, map[MetricKey]float64{
			MetricEquity:            1_000_000_000,
			MetricSharesOutstanding: 12.5,
		})

		out := d.Derive(rec)

		_, ok := out.Value(MetricSharesOutstanding)
		assert.False(t, ok)
		_, ok = out.Value(MetricPriceToBook)
		assert.False(t, ok)
	})

	t.Run("custom share threshold", func(t *testing.T) {
		rec := newRecord(FundamentalsV1(), 10, map[MetricKey]float64{
			MetricSharesOutstanding: 5_000_000,
		})

		_, ok := NewDeriver(10_000_000).Derive(rec).Value(MetricSharesOutstanding)
		assert.False(t, ok)
		_, ok = d.Derive(rec).Value(MetricSharesOutstanding)
		assert.True(t, ok)
	})
}

func TestDeriverDebtRatio(t *testing.T) {
	d := NewDeriver(DefaultMinSharesOutstanding)

	rec := newRecord(BalanceSheetV2(), 20, map[MetricKey]float64{
		MetricTotalAssets:      100e9,
		MetricTotalLiabilities: 40e9,
	})
	ratio, ok := d.Derive(rec).Value(MetricDebtRatio)
	require.True(t, ok)
	assert.InDelta(t, 0.4, ratio, 1e-12)

	zeroAssets := newRecord(BalanceSheetV2(), 20, map[MetricKey]float64{
		MetricTotalAssets:      0,
		MetricTotalLiabilities: 40e9,
	})
	_, ok = d.Derive(zeroAssets).Value(MetricDebtRatio)
	assert.False(t, ok)

	// fundamentals-v1 does not declare debt_ratio, so it is never added.
	v1 := newRecord(FundamentalsV1(), 20, map[MetricKey]float64{
		MetricTotalAssets:      100e9,
		MetricTotalLiabilities: 40e9,
	})
	_, declared := d.Derive(v1).Metrics[MetricDebtRatio]
	assert.False(t, declared)
}
