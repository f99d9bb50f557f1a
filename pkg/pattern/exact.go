package pattern

import (
	"strconv"

	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// ExactValue accepts exactly one value.
type ExactValue struct {
	Value value.Value
}

func (e ExactValue) Matches(v value.Value, _ *Resolver) result.Result {
	if e.Value.Equal(orEmpty(v)) {
		return result.Success()
	}
	return result.Failuref("Expected %s, got %s", e.TypeName(), describe(v))
}

func (e ExactValue) Generate(_ *Resolver) (value.Value, error) { return e.Value, nil }

func (e ExactValue) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{e}, nil }

// Parse reads text as the same kind of value as the literal.
func (e ExactValue) Parse(text string, _ *Resolver) (value.Value, error) {
	switch e.Value.(type) {
	case value.String:
		return value.String(text), nil
	case value.Number:
		return value.ParseNumber(text)
	case value.Boolean:
		return value.ParseBoolean(text)
	case value.Null:
		return Null{}.Parse(text, nil)
	case *value.Object, value.List:
		return value.ParseJSON(text)
	case *value.XMLNode:
		return value.ParseXML(text)
	}
	return value.Parse(text)
}

func (e ExactValue) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	other, stack, res, done := normalizeOther(e, other, thisR, otherR, stack)
	if done {
		return res
	}
	switch o := other.(type) {
	case ExactValue:
		candidate := o.Value
		if s, ok := o.Value.(value.String); ok {
			parsed, err := e.Parse(string(s), thisR)
			if err != nil {
				return result.Failuref("Expected %s, got %s", e.TypeName(), describe(o.Value))
			}
			candidate = parsed
		}
		return e.Matches(candidate, thisR)
	case *Any:
		return FitsWithin(o, []Pattern{e}, otherR, thisR, stack)
	}
	return result.Failuref("Expected %s, got %s", e.TypeName(), other.TypeName())
}

func (e ExactValue) PatternSet(_ *Resolver) []Pattern { return []Pattern{e} }

func (ExactValue) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

// TypeName renders the literal itself.
func (e ExactValue) TypeName() string {
	if s, ok := e.Value.(value.String); ok {
		return strconv.Quote(string(s))
	}
	if e.Value == nil {
		return "nothing"
	}
	return e.Value.String()
}
