package indicator

// Record is the indicator set extracted for one ticker.
// Metrics holds every key of the metric set; a nil value means the metric is absent.
type Record struct {
	Ticker      string                 `json:"ticker"`
	Exchange    string                 `json:"exchange"`
	Currency    string                 `json:"currency"`
	Price       float64                `json:"price"`
	CompanyName string                 `json:"company_name"`
	Sector      string                 `json:"sector,omitempty"`
	MetricSet   string                 `json:"metric_set"`
	Metrics     map[MetricKey]*float64 `json:"metrics"`
}

// Value returns the metric value and whether it is present.
func (r Record) Value(key MetricKey) (float64, bool) {
	v, ok := r.Metrics[key]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Metrics = make(map[MetricKey]*float64, len(r.Metrics))
	for k, v := range r.Metrics {
		if v == nil {
			out.Metrics[k] = nil
			continue
		}
		value := *v
		out.Metrics[k] = &value
	}
	return out
}

// Missing lists the keys of set that have no value, in set order.
func (r Record) Missing(set MetricSet) []MetricKey {
	var missing []MetricKey
	for _, key := range set.Keys() {
		if _, ok := r.Value(key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func (r Record) with(key MetricKey, v float64) {
	r.Metrics[key] = &v
}

func (r Record) without(key MetricKey) {
	r.Metrics[key] = nil
}
