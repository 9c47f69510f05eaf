package indicator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{name: "decimal comma with dot thousands", raw: "1.234,56", want: 1234.56, ok: true},
		{name: "decimal dot with comma thousands", raw: "1,234.56", want: 1234.56, ok: true},
		{name: "currency prefix", raw: "R$ 12,50", want: 12.50, ok: true},
		{name: "portuguese billions", raw: "2,3 bi", want: 2_300_000_000, ok: true},
		{name: "abbreviated billions with dot", raw: "1,5 bi.", want: 1_500_000_000, ok: true},
		{name: "overflowing magnitude", raw: strings.Repeat("9", 300) + "T", ok: false},
		{name: "percent", raw: "45%", want: 45, ok: true},
		{name: "negative percent", raw: "-1,25%", want: -1.25, ok: true},
		{name: "unicode minus", raw: "\u22123.2", want: -3.2, ok: true},
		{name: "non breaking space", raw: "R$\u00a038,45", want: 38.45, ok: true},
		{name: "narrow no-break space thousands", raw: "1\u202f234,5", want: 1234.5, ok: true},
		{name: "short billions", raw: "12.5B", want: 12_500_000_000, ok: true},
		{name: "trillions with currency code", raw: "2.44T BRL", want: 2_440_000_000_000, ok: true},
		{name: "millions", raw: "1.5M", want: 1_500_000, ok: true},
		{name: "portuguese millions", raw: "R$ 1,2 mi", want: 1_200_000, ok: true},
		{name: "portuguese millions abbreviation", raw: "7,8 mi.", want: 7_800_000, ok: true},
		{name: "portuguese thousands", raw: "850 mil", want: 850_000, ok: true},
		{name: "spelled out million", raw: "3 million", want: 3_000_000, ok: true},
		{name: "bilhoes with diacritic", raw: "4,1 bilhões", want: 4_100_000_000, ok: true},
		{name: "thousands", raw: "15K", want: 15_000, ok: true},
		{name: "repeated dots", raw: "1.234.567", want: 1_234_567, ok: true},
		{name: "repeated commas", raw: "1,234,567", want: 1_234_567, ok: true},
		{name: "plain integer", raw: "  42 ", want: 42, ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "blank", raw: "   ", ok: false},
		{name: "question mark", raw: "?", ok: false},
		{name: "dash placeholder", raw: "-", ok: false},
		{name: "em dash placeholder", raw: "\u2014", ok: false},
		{name: "letters only", raw: "abc", ok: false},
		{name: "magnitude without number", raw: "mil", ok: false},
		{name: "garbage separators", raw: "1-2-3", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-6*maxAbs(tt.want, 1))
			}
		})
	}
}

func maxAbs(v, floor float64) float64 {
	if v < 0 {
		v = -v
	}
	if v < floor {
		return floor
	}
	return v
}
