package indicator

import (
	"math"
	"strconv"
	"strings"
)

type magnitude struct {
	suffix     string
	multiplier float64
}

// Longest suffixes first so "mil" is not read as "m" + "il".
var magnitudes = []magnitude{
	{"trillion", 1e12},
	{"thousand", 1e3},
	{"billion", 1e9},
	{"bilhões", 1e9},
	{"bilhoes", 1e9},
	{"million", 1e6},
	{"milhões", 1e6},
	{"milhoes", 1e6},
	{"tri", 1e12},
	{"mil", 1e3},
	{"bi.", 1e9},
	{"mi.", 1e6},
	{"bn", 1e9},
	{"bi", 1e9},
	{"mi", 1e6},
	{"mm", 1e6},
	{"t", 1e12},
	{"b", 1e9},
	{"m", 1e6},
	{"k", 1e3},
}

var spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2212", "-")

// Normalize converts market-data numeric text ("R$ 12,50", "2,3 bi", "1,234.56", "45%")
// into a float. The second return is false for blank, placeholder or malformed input.
// Percent values keep their face value: "45%" is 45.
func Normalize(raw string) (float64, bool) {
	s := strings.TrimSpace(spaceReplacer.Replace(raw))
	switch s {
	case "", "?", "-", "\u2014", "\u2013", "N/A", "n/a":
		return 0, false
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	s, multiplier := stripMagnitude(stripCurrencyCode(strings.ToLower(s)))

	s = keepNumeric(s)
	s = normalizeSeparators(s)
	if s == "" || s == "-" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	v *= multiplier
	if math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// stripCurrencyCode drops a trailing ISO code such as the "BRL" in "2.44T BRL".
func stripCurrencyCode(s string) string {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 || len(s)-i-1 != 3 {
		return s
	}
	code := s[i+1:]
	for _, m := range magnitudes {
		if m.suffix == code {
			return s
		}
	}
	for j := 0; j < len(code); j++ {
		if code[j] < 'a' || code[j] > 'z' {
			return s
		}
	}
	return strings.TrimRight(s[:i], " ")
}

// stripMagnitude removes a trailing magnitude word. The suffix only counts when a digit
// precedes it, optionally separated by spaces, so currency prefixes are never mistaken for one.
func stripMagnitude(s string) (string, float64) {
	for _, m := range magnitudes {
		if !strings.HasSuffix(s, m.suffix) {
			continue
		}
		rest := strings.TrimRight(s[:len(s)-len(m.suffix)], " ")
		if rest == "" {
			continue
		}
		last := rest[len(rest)-1]
		if last < '0' || last > '9' {
			continue
		}
		return rest, m.multiplier
	}
	return s, 1
}

func keepNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeSeparators rewrites s so that "." is the only (decimal) separator.
// With both separators present the last one is the decimal mark; a lone comma is a decimal
// comma; repeated marks of the same kind are thousands separators.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
