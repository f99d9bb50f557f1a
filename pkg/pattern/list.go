package pattern

import (
	"fmt"

	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// generatedListLength is the number of elements Generate produces.
const generatedListLength = 2

// List accepts lists whose every element matches Element.
type List struct {
	Element Pattern
}

// NewList creates a list pattern.
func NewList(element Pattern) *List {
	return &List{Element: element}
}

func (l *List) Matches(v value.Value, r *Resolver) result.Result {
	items, ok := v.(value.List)
	if !ok {
		return result.Failuref("Expected list, got %s", describe(v))
	}
	child, res := r.descend()
	if res.IsFailure() {
		return res
	}
	for i, item := range items {
		if res := l.Element.Matches(item, child); res.IsFailure() {
			return res.BreadCrumb(indexCrumb(i))
		}
	}
	return result.Success()
}

// Generate produces a short list. When the element type cannot be
// generated without unbounded recursion the list is empty.
func (l *List) Generate(r *Resolver) (value.Value, error) {
	child, err := r.descendGenerate()
	if err != nil {
		return nil, err
	}
	values := make([]value.Value, 0, generatedListLength)
	for range generatedListLength {
		v, err := l.Element.Generate(child)
		if isCycle(err) {
			return l.Element.ListOf(nil, r), nil
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return l.Element.ListOf(values, r), nil
}

func (l *List) NewBasedOn(row Row, r *Resolver) ([]Pattern, error) {
	variants, err := l.Element.NewBasedOn(row, r)
	if err != nil {
		return nil, err
	}
	out := make([]Pattern, len(variants))
	for i, v := range variants {
		out[i] = &List{Element: v}
	}
	return out, nil
}

func (l *List) Parse(text string, _ *Resolver) (value.Value, error) {
	v, err := value.ParseJSON(text)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(value.List); !ok {
		return nil, fmt.Errorf("expected a list, got %s", v.TypeName())
	}
	return v, nil
}

func (l *List) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	other, stack, res, done := normalizeOther(l, other, thisR, otherR, stack)
	if done {
		return res
	}
	switch o := other.(type) {
	case *List:
		thisChild, res := thisR.descend()
		if res.IsFailure() {
			return res
		}
		otherChild, res := otherR.descend()
		if res.IsFailure() {
			return res
		}
		return l.Element.Encompasses(o.Element, thisChild, otherChild, stack).BreadCrumb("[]")
	case ExactValue:
		return l.Matches(o.Value, thisR)
	case *Any:
		return FitsWithin(o, []Pattern{l}, otherR, thisR, stack)
	}
	return result.Failuref("Expected %s, got %s", l.TypeName(), other.TypeName())
}

func (l *List) PatternSet(_ *Resolver) []Pattern { return []Pattern{l} }

func (l *List) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (l *List) TypeName() string { return "list of " + l.Element.TypeName() }

func indexCrumb(i int) string {
	return fmt.Sprintf("[%d]", i)
}
