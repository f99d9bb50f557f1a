package pattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedPattern(t *testing.T) {
	tests := []struct {
		token string
		want  Pattern
	}{
		{"(string)", String{}},
		{"(number)", Number{}},
		{"(uuid)", UUID{}},
		{"(number?)", &Any{Alternatives: []Pattern{Number{}, Null{}}}},
		{"(string*)", &List{Element: String{}}},
		{"(Order*)", &List{Element: Deferred{Name: "(Order)"}}},
		{"(Order)", Deferred{Name: "(Order)"}},
		{" (boolean) ", Boolean{}},
		{"(id:number)", LookupRow{Pattern: Number{}, Key: "id"}},
		{"(ids:uuid*)", LookupRow{Pattern: &List{Element: UUID{}}, Key: "ids"}},
	}
	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsedPattern(tc.token))
		})
	}
}

func TestParsedPattern_LiteralText(t *testing.T) {
	assert.False(t, IsPatternToken("()"))
	assert.False(t, IsPatternToken("plain"))
	assert.IsType(t, ExactValue{}, ParsedPattern("plain"))
}

func TestTypeToken(t *testing.T) {
	assert.Equal(t, "(Order)", TypeToken("Order"))
	assert.Equal(t, "(Order)", TypeToken("(Order)"))
}

func TestRegistry(t *testing.T) {
	g := NewRegistry()
	require.NoError(t, g.Register("Order", NewObject(ObjectField("id", Number{}))))

	err := g.Register("(Order)", String{})
	assert.ErrorIs(t, err, ErrDuplicateType)

	_, ok := g.Get("Order")
	assert.True(t, ok)
	assert.Equal(t, []string{"(Order)"}, g.Names())

	g.Freeze()
	assert.True(t, g.Frozen())
	assert.ErrorIs(t, g.Register("Late", String{}), ErrRegistryFrozen)
}

func TestRegistry_Validate(t *testing.T) {
	g := NewRegistry()
	require.NoError(t, g.Register("Order", NewObject(
		ObjectField("id", Deferred{Name: "(uuid)"}),
		ObjectField("lines", NewList(Deferred{Name: "(Line)"})),
		ObjectField("customer?", Optional(Deferred{Name: "(Customer)"})),
	)))
	require.NoError(t, g.Register("Line", NewObject(ObjectField("sku", String{}))))

	err := g.Validate()
	require.Error(t, err)
	var le *LookupError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "(Customer)", le.Name)

	require.NoError(t, g.Register("Customer", String{}))
	assert.NoError(t, g.Validate())
}

func TestReferences(t *testing.T) {
	p := NewObject(
		ObjectField("a", Deferred{Name: "A"}),
		ObjectField("b", NewList(Deferred{Name: "(B)"})),
		ObjectField("c", Deferred{Name: "(A)"}),
	)
	assert.Equal(t, []string{"(A)", "(B)"}, References(p))
}

func TestResolver_Lookup(t *testing.T) {
	g := NewRegistry()
	require.NoError(t, g.Register("Order", Number{}))
	r := NewResolver(g)

	p, err := r.Lookup("(string)")
	require.NoError(t, err)
	assert.Equal(t, String{}, p)

	p, err = r.Lookup("Order")
	require.NoError(t, err)
	assert.Equal(t, Number{}, p)

	_, err = r.Lookup("Missing")
	var le *LookupError
	assert.ErrorAs(t, err, &le)
}

func TestResolver_WithKeepsRegistry(t *testing.T) {
	g := NewRegistry()
	r := NewResolver(g, WithMaxDepth(8))
	c := r.With(WithTolerant(true), WithGenerative(true))

	assert.Same(t, g, c.Registry())
	assert.True(t, c.Tolerant())
	assert.True(t, c.Generative())
	assert.False(t, r.Tolerant())
}

func TestTypeStack(t *testing.T) {
	var s TypeStack
	assert.False(t, s.Contains("(A)", "(B)"))

	s2 := s.With("(A)", "(B)")
	assert.True(t, s2.Contains("(A)", "(B)"))
	assert.False(t, s2.Contains("(B)", "(A)"))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, s2.Len())
}

func TestRow(t *testing.T) {
	r := NewRow([]string{"a", "b", "c"}, []string{"1", "2"})

	assert.Equal(t, []string{"a", "b"}, r.Columns())
	assert.True(t, r.Contains("b"))
	assert.False(t, r.Contains("c"))
	assert.Equal(t, "2", r.Get("b"))
	assert.True(t, Row{}.IsEmpty())

	ordered := RowOf(map[string]string{"x": "1", "y": "2"}, "y", "x", "z")
	assert.Equal(t, []string{"y", "x"}, ordered.Columns())
}
