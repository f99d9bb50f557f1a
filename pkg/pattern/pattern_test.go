package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

func mustParse(t *testing.T, text string) value.Value {
	t.Helper()
	v, err := value.ParseJSON(text)
	require.NoError(t, err)
	return v
}

// cyclicRegistry defines Node, a tree whose children are Nodes, and Loop,
// a name that resolves straight back to itself.
func cyclicRegistry(t *testing.T) *Registry {
	t.Helper()
	g := NewRegistry()
	require.NoError(t, g.Register("Node", NewObject(
		ObjectField("name", String{}),
		ObjectField("children?", NewList(Deferred{Name: "(Node)"})),
		ObjectField("parent?", Deferred{Name: "(Node)"}),
	)))
	require.NoError(t, g.Register("Loop", Deferred{Name: "(Loop)"}))
	g.Freeze()
	return g
}

func samplePatterns() map[string]Pattern {
	return map[string]Pattern{
		"string":   String{},
		"number":   Number{},
		"boolean":  Boolean{},
		"null":     Null{},
		"empty":    Empty{},
		"nothing":  NoContent{},
		"uuid":     UUID{},
		"datetime": DateTime{},
		"url":      URL{},
		"exact":    ExactValue{Value: value.String("pen")},
		"list":     NewList(Number{}),
		"optional": Optional(String{}),
		"object": NewObject(
			ObjectField("id", Number{}),
			ObjectField("tags?", NewList(String{})),
			ObjectField("note", Optional(String{})),
		),
		"deferred": Deferred{Name: "(Node)"},
		"row":      LookupRow{Pattern: Number{}, Key: "count"},
	}
}

func TestGenerateThenMatch(t *testing.T) {
	r := NewResolver(cyclicRegistry(t))
	generative := r.With(WithGenerative(true))

	for name, p := range samplePatterns() {
		for _, res := range []*Resolver{r, generative} {
			t.Run(name, func(t *testing.T) {
				v, err := p.Generate(res)
				require.NoError(t, err)
				assert.True(t, p.Matches(v, res).IsSuccess(), "generated %s", v)
			})
		}
	}
}

func TestEncompasses_Reflexive(t *testing.T) {
	r := NewResolver(cyclicRegistry(t))

	for name, p := range samplePatterns() {
		t.Run(name, func(t *testing.T) {
			res := p.Encompasses(p, r, r, TypeStack{})
			assert.True(t, res.IsSuccess(), res.Report())
		})
	}
}

func TestEncompasses_Transitive(t *testing.T) {
	r := NewResolver(nil)

	chains := []struct {
		name    string
		p, q, s Pattern
	}{
		{"string number literal", String{}, Number{}, ExactValue{Value: value.Number(5)}},
		{"optional number literal", Optional(Number{}), Number{}, ExactValue{Value: value.Number(5)}},
		{"union narrowing", &Any{Alternatives: []Pattern{String{}, Null{}, Boolean{}}}, Optional(String{}), Null{}},
		{"list of strings", NewList(String{}), NewList(UUID{}), NewList(ExactValue{Value: value.String("b2c9d1a0-4b8e-4a27-8f36-1c8b6c1b0f3e")})},
	}

	for _, tc := range chains {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.p.Encompasses(tc.q, r, r, TypeStack{}).IsSuccess())
			require.True(t, tc.q.Encompasses(tc.s, r, r, TypeStack{}).IsSuccess())
			assert.True(t, tc.p.Encompasses(tc.s, r, r, TypeStack{}).IsSuccess())
		})
	}
}

func TestEncompasses_Rejects(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name        string
		this, other Pattern
		path        string
	}{
		{"number is not a string", Number{}, String{}, ""},
		{"required value cannot become optional", Number{}, Optional(Number{}), ""},
		{"missing key", NewObject(ObjectField("id", Number{})), NewObject(), "id"},
		{"key became optional", NewObject(ObjectField("id", Number{})), NewObject(ObjectField("id?", Number{})), "id"},
		{"unexpected key", NewObject(), NewObject(ObjectField("extra", Number{})), "extra"},
		{"nested field", NewObject(ObjectField("items", NewList(NewObject(ObjectField("qty", Number{}))))),
			NewObject(ObjectField("items", NewList(NewObject(ObjectField("qty", String{}))))), "items[].qty"},
		{"literal fails to parse", Number{}, ExactValue{Value: value.String("ten")}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.this.Encompasses(tc.other, r, r, TypeStack{})
			require.True(t, res.IsFailure())
			assert.Equal(t, tc.path, res.PathString())
		})
	}
}

func TestEncompasses_StringLiteralReparsed(t *testing.T) {
	r := NewResolver(nil)

	assert.True(t, Number{}.Encompasses(ExactValue{Value: value.String("10")}, r, r, TypeStack{}).IsSuccess())
	assert.True(t, Boolean{}.Encompasses(ExactValue{Value: value.String("true")}, r, r, TypeStack{}).IsSuccess())
	assert.True(t, ExactValue{Value: value.Number(10)}.Encompasses(ExactValue{Value: value.String("10")}, r, r, TypeStack{}).IsSuccess())
}

func TestEncompasses_Tolerant(t *testing.T) {
	strict := NewResolver(nil)
	tolerant := NewResolver(nil, WithTolerant(true))
	old := NewObject(ObjectField("id", Number{}))
	grown := NewObject(ObjectField("id", Number{}), ObjectField("extra", String{}))

	assert.True(t, old.Encompasses(grown, strict, strict, TypeStack{}).IsFailure())
	assert.True(t, old.Encompasses(grown, tolerant, strict, TypeStack{}).IsSuccess())
}

func TestEncompasses_RecursiveAgainstInline(t *testing.T) {
	g := NewRegistry()
	require.NoError(t, g.Register("Tree", NewObject(
		ObjectField("v", Number{}),
		ObjectField("child?", Deferred{Name: "(Tree)"}),
	)))
	g.Freeze()
	r := NewResolver(g)
	tree := Deferred{Name: "(Tree)"}

	inline := NewObject(
		ObjectField("v", Number{}),
		ObjectField("child?", NewObject(ObjectField("v", Boolean{}))),
	)
	require.True(t, tree.Matches(mustParse(t, `{"v": 1, "child": {"v": true}}`), r).IsFailure())

	res := tree.Encompasses(inline, r, r, TypeStack{})
	require.True(t, res.IsFailure())
	assert.Equal(t, "child.v", res.PathString())

	res = inline.Encompasses(tree, r, r, TypeStack{})
	require.True(t, res.IsFailure())
	assert.Equal(t, "child.v", res.PathString())

	same := NewObject(
		ObjectField("v", Number{}),
		ObjectField("child?", NewObject(ObjectField("v", Number{}))),
	)
	assert.True(t, tree.Encompasses(same, r, r, TypeStack{}).IsSuccess())
}

func TestEncompasses_RecursiveOutOfStep(t *testing.T) {
	g := NewRegistry()
	require.NoError(t, g.Register("A", NewObject(ObjectField("x?", NewObject(ObjectField("x?", Deferred{Name: "(A)"}))))))
	require.NoError(t, g.Register("B", NewObject(ObjectField("x?", NewObject(ObjectField("x?", Deferred{Name: "(B)"}))))))
	g.Freeze()
	r := NewResolver(g)

	// A recurses at even depths, the inline wrapper around B at odd ones.
	a := Deferred{Name: "(A)"}
	shifted := NewObject(ObjectField("x?", Deferred{Name: "(B)"}))

	res := a.Encompasses(shifted, r, r, TypeStack{})
	assert.True(t, res.IsSuccess(), res.Report())
	res = shifted.Encompasses(a, r, r, TypeStack{})
	assert.True(t, res.IsSuccess(), res.Report())
}

func TestAny_MatchesIffAnAlternativeMatches(t *testing.T) {
	r := NewResolver(nil)
	a, b := Pattern(Number{}), Pattern(Boolean{})
	union, err := NewAny(a, b)
	require.NoError(t, err)

	values := []value.Value{
		value.Number(1), value.Boolean(false), value.String("x"), value.Null{}, value.List{},
	}
	for _, v := range values {
		want := a.Matches(v, r).IsSuccess() || b.Matches(v, r).IsSuccess()
		assert.Equal(t, want, union.Matches(v, r).IsSuccess(), "value %s", v)
	}
}

func TestAny_OptionalReportsInnerFailure(t *testing.T) {
	r := NewResolver(nil)
	p := Optional(NewObject(ObjectField("id", Number{})))

	res := p.Matches(mustParse(t, `{"id": "seven"}`), r)
	require.True(t, res.IsFailure())
	assert.Equal(t, "id", res.PathString())
	assert.Contains(t, res.Message(), "Expected number")
}

func TestNewAny_RequiresAlternatives(t *testing.T) {
	_, err := NewAny()
	assert.ErrorIs(t, err, ErrNoAlternatives)
}

func TestObject_Matches(t *testing.T) {
	r := NewResolver(nil)
	p := NewObject(
		ObjectField("id", Number{}),
		ObjectField("items", NewList(NewObject(ObjectField("name", String{})))),
		ObjectField("note?", String{}),
	)

	tests := []struct {
		name string
		json string
		path string
		ok   bool
	}{
		{"valid", `{"id": 1, "items": [{"name": "a"}]}`, "", true},
		{"optional present", `{"id": 1, "items": [], "note": "x"}`, "", true},
		{"missing key", `{"items": []}`, "id", false},
		{"unexpected key", `{"id": 1, "items": [], "extra": true}`, "extra", false},
		{"nested index", `{"id": 1, "items": [{"name": "a"}, {"name": "b"}, {"name": 3}]}`, "items[2].name", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := p.Matches(mustParse(t, tc.json), r)
			assert.Equal(t, tc.ok, res.IsSuccess(), res.Report())
			assert.Equal(t, tc.path, res.PathString())
		})
	}
}

func TestObject_TolerantAcceptsUnexpectedKeys(t *testing.T) {
	p := NewObject(ObjectField("id", Number{}))
	v := mustParse(t, `{"id": 1, "extra": true}`)

	assert.True(t, p.Matches(v, NewResolver(nil)).IsFailure())
	assert.True(t, p.Matches(v, NewResolver(nil, WithTolerant(true))).IsSuccess())
}

func TestObject_GenerateOptionalKeys(t *testing.T) {
	p := NewObject(ObjectField("id", Number{}), ObjectField("note?", String{}))

	minimal, err := p.Generate(NewResolver(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, minimal.(*value.Object).Keys())

	full, err := p.Generate(NewResolver(nil, WithGenerative(true)))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "note"}, full.(*value.Object).Keys())
}

func TestObject_NewBasedOn(t *testing.T) {
	r := NewResolver(nil)
	p := NewObject(
		ObjectField("id?", Number{}),
		ObjectField("status", Optional(String{})),
	)

	variants, err := p.NewBasedOn(RowOf(map[string]string{"id": "10"}), r)
	require.NoError(t, err)
	require.Len(t, variants, 2)

	for _, v := range variants {
		obj := v.(*Object)
		id, ok := obj.Field("id")
		require.True(t, ok)
		assert.False(t, id.Optional)
		assert.Equal(t, ExactValue{Value: value.Number(10)}, id.Pattern)
	}
}

func TestObject_NewBasedOnRejectsBadRow(t *testing.T) {
	p := NewObject(ObjectField("id", Number{}))

	_, err := p.NewBasedOn(RowOf(map[string]string{"id": "ten"}), NewResolver(nil))
	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "column id")
}

func TestLookupRow_PatternTokenNarrows(t *testing.T) {
	r := NewResolver(nil)
	p := LookupRow{Pattern: String{}, Key: "name"}

	variants, err := p.NewBasedOn(RowOf(map[string]string{"name": "(number)"}), r)
	require.NoError(t, err)
	assert.Equal(t, []Pattern{Number{}}, variants)
}

func TestLookupRow_LiteralBecomesExactValue(t *testing.T) {
	r := NewResolver(nil)
	p := LookupRow{Pattern: String{}, Key: "name"}

	variants, err := p.NewBasedOn(RowOf(map[string]string{"name": "Jane"}), r)
	require.NoError(t, err)
	assert.Equal(t, []Pattern{ExactValue{Value: value.String("Jane")}}, variants)

	variants, err = p.NewBasedOn(Row{}, r)
	require.NoError(t, err)
	assert.Equal(t, []Pattern{String{}}, variants)
}

func TestLookupRow_IncompatibleTokenIsContractError(t *testing.T) {
	p := LookupRow{Pattern: Number{}, Key: "count"}

	_, err := p.NewBasedOn(RowOf(map[string]string{"count": "(boolean)"}), NewResolver(nil))
	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Expected number but got (boolean) in row in column count", ce.Message)
	assert.True(t, ce.Cause.IsFailure())
}

func TestCyclicSchema_Terminates(t *testing.T) {
	r := NewResolver(cyclicRegistry(t))
	node := Deferred{Name: "(Node)"}

	v := mustParse(t, `{"name": "root", "children": [{"name": "a", "children": [{"name": "b"}]}], "parent": {"name": "p"}}`)
	assert.True(t, node.Matches(v, r).IsSuccess())

	bad := mustParse(t, `{"name": "root", "children": [{"name": 1}]}`)
	res := node.Matches(bad, r)
	require.True(t, res.IsFailure())
	assert.Equal(t, "children[0].name", res.PathString())

	assert.True(t, node.Encompasses(node, r, r, TypeStack{}).IsSuccess())

	loop := Deferred{Name: "(Loop)"}
	assert.True(t, loop.Matches(value.String("anything"), r).IsSuccess())
	assert.True(t, loop.Encompasses(loop, r, r, TypeStack{}).IsSuccess())
}

func TestCyclicSchema_AcrossContracts(t *testing.T) {
	older := NewRegistry()
	require.NoError(t, older.Register("A", NewObject(ObjectField("next?", Deferred{Name: "A"}), ObjectField("v", Number{}))))
	newer := NewRegistry()
	require.NoError(t, newer.Register("B", NewObject(ObjectField("next?", Deferred{Name: "B"}), ObjectField("v", Number{}))))

	res := Deferred{Name: "A"}.Encompasses(Deferred{Name: "B"}, NewResolver(older), NewResolver(newer), TypeStack{})
	assert.True(t, res.IsSuccess(), res.Report())
}

func TestCyclicSchema_GenerateStops(t *testing.T) {
	r := NewResolver(cyclicRegistry(t), WithGenerative(true))

	v, err := Deferred{Name: "(Node)"}.Generate(r)
	require.NoError(t, err)
	assert.True(t, Deferred{Name: "(Node)"}.Matches(v, r).IsSuccess())

	_, err = Deferred{Name: "(Loop)"}.Generate(r)
	var ce *CycleError
	assert.ErrorAs(t, err, &ce)
}

func TestMaxDepth(t *testing.T) {
	r := NewResolver(nil, WithMaxDepth(2))
	p := NewList(NewList(NewList(Number{})))

	res := p.Matches(mustParse(t, `[[[1]]]`), r)
	require.True(t, res.IsFailure())
	assert.Contains(t, res.Message(), "maximum nesting depth 2 exceeded")

	_, err := p.Generate(r)
	assert.ErrorIs(t, err, ErrMaxDepth)
}

func TestDeferred_UnknownTypeIsDefinitionFailure(t *testing.T) {
	r := NewResolver(nil)

	res := Deferred{Name: "(Missing)"}.Matches(value.String("x"), r)
	require.True(t, res.IsFailure())
	assert.Equal(t, result.KindDefinition, res.Kind())

	_, err := Deferred{Name: "(Missing)"}.Generate(r)
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "(Missing)", le.Name)
}

func TestEncompassesAll_LengthMessageVerbatim(t *testing.T) {
	r := NewResolver(nil)
	const msg = "The lengths of the expected and actual lists were different"

	res := EncompassesAll([]Pattern{Number{}}, []Pattern{Number{}, String{}}, r, r, TypeStack{}, msg)
	require.True(t, res.IsFailure())
	assert.Equal(t, result.KindLength, res.Kind())
	assert.Equal(t, msg, res.Message())

	res = EncompassesAll([]Pattern{Number{}, Number{}}, []Pattern{Number{}, String{}}, r, r, TypeStack{}, msg)
	require.True(t, res.IsFailure())
	assert.Equal(t, "[1]", res.PathString())

	assert.True(t, EncompassesAll(nil, nil, r, r, TypeStack{}, msg).IsSuccess())
}

func TestEncompassesNext(t *testing.T) {
	r := NewResolver(nil)

	assert.True(t, EncompassesNext(nil, nil, r, r, TypeStack{}).IsSuccess())
	assert.True(t, EncompassesNext([]Pattern{String{}}, nil, r, r, TypeStack{}).IsFailure())
	assert.True(t, EncompassesNext([]Pattern{String{}, Number{}}, []Pattern{UUID{}}, r, r, TypeStack{}).IsSuccess())
}

func TestFitsWithin(t *testing.T) {
	r := NewResolver(nil)

	assert.True(t, FitsWithin(Optional(Number{}), []Pattern{Number{}, Null{}}, r, r, TypeStack{}).IsSuccess())
	assert.True(t, FitsWithin(Optional(Number{}), []Pattern{Number{}}, r, r, TypeStack{}).IsFailure())
	assert.True(t, FitsWithin(Number{}, nil, r, r, TypeStack{}).IsFailure())
}
