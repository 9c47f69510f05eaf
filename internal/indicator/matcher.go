package indicator

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Layout describes where a quote page keeps its "label cell + value cell" stat rows.
type Layout struct {
	RowSelector    string `mapstructure:"row_selector"`
	LabelSelector  string `mapstructure:"label_selector"`
	ValueSelector  string `mapstructure:"value_selector"`
	MaxSiblingHops int    `mapstructure:"max_sibling_hops"`
}

// DefaultLayout is the Google Finance quote page layout.
func DefaultLayout() Layout {
	return Layout{
		RowSelector:    "div.P6K39c",
		LabelSelector:  "div.mfs7Fc",
		ValueSelector:  "div[jsname=U8sYAd]",
		MaxSiblingHops: 4,
	}
}

// Matcher resolves a metric to a number by trying its synonyms against the document.
type Matcher struct {
	layout Layout
}

// NewMatcher creates a Matcher; missing layout fields fall back to DefaultLayout.
func NewMatcher(layout Layout) *Matcher {
	def := DefaultLayout()
	if layout.RowSelector == "" {
		layout.RowSelector = def.RowSelector
	}
	if layout.LabelSelector == "" {
		layout.LabelSelector = def.LabelSelector
	}
	if layout.ValueSelector == "" {
		layout.ValueSelector = def.ValueSelector
	}
	if layout.MaxSiblingHops <= 0 {
		layout.MaxSiblingHops = def.MaxSiblingHops
	}
	return &Matcher{layout: layout}
}

// Resolve tries each synonym in order and returns the first value found.
// For each synonym: the stat rows, then a label node's value cell, then up to
// MaxSiblingHops following siblings of that label node.
func (m *Matcher) Resolve(doc Document, synonyms []string) (float64, bool) {
	for _, synonym := range synonyms {
		want := NormalizeLabel(synonym)
		if want == "" {
			continue
		}
		if v, ok := m.fromStatRows(doc, want); ok {
			return v, true
		}
		if v, ok := m.fromLabelNodes(doc, want); ok {
			return v, true
		}
	}
	return 0, false
}

// FindLabel returns the first node whose own text matches one of labels.
func (m *Matcher) FindLabel(doc Document, labels []string) (Node, bool) {
	for _, label := range labels {
		want := NormalizeLabel(label)
		if want == "" {
			continue
		}
		for _, node := range doc.Nodes() {
			if labelOf(node) == want {
				return node, true
			}
		}
	}
	return nil, false
}

func (m *Matcher) fromStatRows(doc Document, want string) (float64, bool) {
	for _, row := range doc.Select(m.layout.RowSelector) {
		label, ok := row.SelectFirst(m.layout.LabelSelector)
		if !ok || NormalizeLabel(label.Text()) != want {
			continue
		}
		value, ok := row.SelectFirst(m.layout.ValueSelector)
		if !ok {
			continue
		}
		if v, ok := Normalize(value.Text()); ok {
			return v, true
		}
	}
	return 0, false
}

func (m *Matcher) fromLabelNodes(doc Document, want string) (float64, bool) {
	for _, node := range doc.Nodes() {
		if labelOf(node) != want {
			continue
		}
		if parent, ok := node.Parent(); ok {
			if value, ok := parent.SelectFirst(m.layout.ValueSelector); ok {
				if v, ok := Normalize(value.Text()); ok {
					return v, true
				}
			}
		}
		sibling := node
		for hop := 0; hop < m.layout.MaxSiblingHops; hop++ {
			next, ok := sibling.NextSibling()
			if !ok {
				break
			}
			if v, ok := Normalize(next.Text()); ok {
				return v, true
			}
			sibling = next
		}
	}
	return 0, false
}

// labelOf is the normalized own text of a node. A wrapper without own text and
// with a single child element is labelled by its full text.
func labelOf(node Node) string {
	text := node.OwnText()
	if text == "" && len(node.Children()) == 1 {
		text = node.Text()
	}
	return NormalizeLabel(text)
}

// NormalizeLabel folds a label for comparison: diacritics removed, only letters
// and digits kept, lowercased. "Retorno sobre patrimônio" → "retornosobrepatrimonio".
func NormalizeLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
