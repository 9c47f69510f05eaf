package indicator

// DefaultMinSharesOutstanding is the smallest share count taken as real. Smaller
// values come from a label that matched the wrong row.
const DefaultMinSharesOutstanding = 1_000_000

// Deriver fills metrics that can be computed from other metrics of the record.
type Deriver struct {
	minShares float64
}

// NewDeriver creates a Deriver; minShares <= 0 uses DefaultMinSharesOutstanding.
func NewDeriver(minShares float64) *Deriver {
	if minShares <= 0 {
		minShares = DefaultMinSharesOutstanding
	}
	return &Deriver{minShares: minShares}
}

// Derive returns a patched copy of rec. Only keys that rec already carries are touched.
func (d *Deriver) Derive(rec Record) Record {
	out := rec.Clone()

	if shares, ok := out.Value(MetricSharesOutstanding); ok && shares < d.minShares {
		out.without(MetricSharesOutstanding)
	}

	if _, declared := out.Metrics[MetricPriceToBook]; declared {
		if _, ok := out.Value(MetricPriceToBook); !ok {
			if pb, ok := priceToBook(out); ok {
				out.with(MetricPriceToBook, pb)
			}
		}
	}

	if _, declared := out.Metrics[MetricDebtRatio]; declared {
		if _, ok := out.Value(MetricDebtRatio); !ok {
			assets, okA := out.Value(MetricTotalAssets)
			liabilities, okL := out.Value(MetricTotalLiabilities)
			if okA && okL && assets > 0 {
				out.with(MetricDebtRatio, liabilities/assets)
			}
		}
	}

	return out
}

func priceToBook(rec Record) (float64, bool) {
	equity, ok := rec.Value(MetricEquity)
	if !ok || equity <= 0 {
		return 0, false
	}
	shares, ok := rec.Value(MetricSharesOutstanding)
	if !ok || shares <= 0 {
		return 0, false
	}
	bvps := equity / shares
	if bvps <= 0 {
		return 0, false
	}
	return rec.Price / bvps, true
}
