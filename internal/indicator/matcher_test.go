package indicator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, page string) Document {
	t.Helper()
	doc, err := ParseHTML(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"Retorno sobre patrimônio": "retornosobrepatrimonio",
		"RETORNO SOBRE PATRIMONIO": "retornosobrepatrimonio",
		"Preço/Valor Patrimonial":  "precovalorpatrimonial",
		"P/E ratio":                "peratio",
		"Shareholders' equity":     "shareholdersequity",
		"Ações em circulação":      "acoesemcirculacao",
		"  ":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLabel(in), in)
	}
}

func TestMatcherResolve(t *testing.T) {
	m := NewMatcher(Layout{})

	t.Run("stat row ignores diacritics and case", func(t *testing.T) {
		doc := mustParse(t, `<div class="P6K39c"><div class="mfs7Fc">Retorno sobre patrimônio</div><div jsname="U8sYAd">18,5%</div></div>`)

		v, ok := m.Resolve(doc, []string{"retorno sobre patrimonio"})
		require.True(t, ok)
		assert.InDelta(t, 18.5, v, 1e-9)

		v, ok = m.Resolve(doc, []string{"RETORNO SOBRE PATRIMÔNIO"})
		require.True(t, ok)
		assert.InDelta(t, 18.5, v, 1e-9)
	})

	t.Run("value cell under the label parent", func(t *testing.T) {
		doc := mustParse(t, `<section><div><span>Lucro líquido</span><div jsname="U8sYAd">1,2 bi</div></div></section>`)

		v, ok := m.Resolve(doc, []string{"Lucro liquido"})
		require.True(t, ok)
		assert.InDelta(t, 1.2e9, v, 1)
	})

	t.Run("forward sibling walk skips placeholders", func(t *testing.T) {
		doc := mustParse(t, `<div><span>Total assets</span><span>n/a</span><span>—</span><span>98.7M</span></div>`)

		v, ok := m.Resolve(doc, []string{"Total assets"})
		require.True(t, ok)
		assert.InDelta(t, 98.7e6, v, 1)
	})

	t.Run("sibling walk stops after four hops", func(t *testing.T) {
		doc := mustParse(t, `<div><span>Total assets</span><i>a</i><i>b</i><i>c</i><i>d</i><span>5</span></div>`)

		_, ok := m.Resolve(doc, []string{"Total assets"})
		assert.False(t, ok)
	})

	t.Run("first resolvable synonym wins", func(t *testing.T) {
		doc := mustParse(t, `
			<div class="P6K39c"><div class="mfs7Fc">P/L</div><div jsname="U8sYAd">7,5</div></div>
			<div class="P6K39c"><div class="mfs7Fc">P/E ratio</div><div jsname="U8sYAd">8.1</div></div>`)

		v, ok := m.Resolve(doc, []string{"Price to earnings", "P/L", "P/E ratio"})
		require.True(t, ok)
		assert.InDelta(t, 7.5, v, 1e-9)
	})

	t.Run("unparseable stat value is absent", func(t *testing.T) {
		doc := mustParse(t, `<div class="P6K39c"><div class="mfs7Fc">EPS</div><div jsname="U8sYAd">—</div></div>`)

		_, ok := m.Resolve(doc, []string{"EPS"})
		assert.False(t, ok)
	})

	t.Run("no label at all", func(t *testing.T) {
		doc := mustParse(t, `<div><span>Something else</span><span>12</span></div>`)

		_, ok := m.Resolve(doc, []string{"Dividend yield", "Dividendos"})
		assert.False(t, ok)
	})
}

func TestMatcherFindLabel(t *testing.T) {
	doc := mustParse(t, `<div><div>Setor</div><div>Energia</div></div>`)
	m := NewMatcher(DefaultLayout())

	node, ok := m.FindLabel(doc, []string{"Sector", "Setor"})
	require.True(t, ok)
	next, ok := node.NextSibling()
	require.True(t, ok)
	assert.Equal(t, "Energia", next.Text())
}
