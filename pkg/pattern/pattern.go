package pattern

import (
	"fmt"

	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// Pattern describes a set of acceptable values.
type Pattern interface {
	// Matches checks v against the pattern.
	Matches(v value.Value, r *Resolver) result.Result

	// Generate produces a value the pattern accepts.
	Generate(r *Resolver) (value.Value, error)

	// NewBasedOn returns the variants of the pattern specialized by row.
	// The slice is never empty on success.
	NewBasedOn(row Row, r *Resolver) ([]Pattern, error)

	// Parse reads text according to the pattern's grammar.
	Parse(text string, r *Resolver) (value.Value, error)

	// Encompasses reports whether every value other accepts is accepted by
	// this pattern. thisR resolves this pattern, otherR resolves other.
	Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result

	// PatternSet returns the discrete patterns this pattern stands for.
	PatternSet(r *Resolver) []Pattern

	// ListOf wraps values the way a list of this pattern would.
	ListOf(values []value.Value, r *Resolver) value.Value

	// TypeName names the pattern in failure messages.
	TypeName() string
}

// FitsWithin reports whether every member of p's pattern set is encompassed
// by at least one of candidates. pR resolves p, candidatesR resolves the
// candidates. When a member fits nowhere, the failure against the first
// candidate is returned.
func FitsWithin(p Pattern, candidates []Pattern, pR, candidatesR *Resolver, stack TypeStack) result.Result {
	if len(candidates) == 0 {
		return result.Failuref("Expected nothing, got %s", p.TypeName())
	}

	for _, mine := range p.PatternSet(pR) {
		var first result.Result
		fits := false
		for i, c := range candidates {
			res := biggerEncompassesSmaller(c, mine, candidatesR, pR, stack)
			if res.IsSuccess() {
				fits = true
				break
			}
			if i == 0 {
				first = res
			}
		}
		if !fits {
			return first
		}
	}
	return result.Success()
}

// EncompassesNext compares the head of each list, as used when walking two
// positional structures in step.
func EncompassesNext(this, other []Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	switch {
	case len(this) == 0 && len(other) == 0:
		return result.Success()
	case len(this) == 0:
		return result.Failuref("Expected nothing, got %s", other[0].TypeName())
	case len(other) == 0:
		return result.Failuref("Expected %s, got nothing", this[0].TypeName())
	}
	return biggerEncompassesSmaller(this[0], other[0], thisR, otherR, stack)
}

// EncompassesAll compares two positional lists pairwise. Lists of differing
// lengths fail with lengthMessage, verbatim. Each failure is breadcrumbed
// with its index.
func EncompassesAll(this, other []Pattern, thisR, otherR *Resolver, stack TypeStack, lengthMessage string) result.Result {
	if len(this) != len(other) {
		return result.LengthMismatch(lengthMessage)
	}
	for i := range this {
		res := biggerEncompassesSmaller(this[i], other[i], thisR, otherR, stack)
		if res.IsFailure() {
			return res.BreadCrumb(indexCrumb(i))
		}
	}
	return result.Success()
}

func biggerEncompassesSmaller(bigger, smaller Pattern, biggerR, smallerR *Resolver, stack TypeStack) result.Result {
	return bigger.Encompasses(smaller, biggerR, smallerR, stack)
}

// normalizeOther prepares other for comparison against this: named
// references are resolved through the type stack, row lookups are unwrapped
// and string literals are re-read with this pattern's grammar. When done is
// true, res is the final answer.
func normalizeOther(this, other Pattern, thisR, otherR *Resolver, stack TypeStack) (out Pattern, next TypeStack, res result.Result, done bool) {
	for {
		switch o := other.(type) {
		case Deferred:
			key, keyed := typeKey(this)
			name := TypeToken(o.Name)
			if keyed && stack.Contains(key, name) {
				return nil, stack, result.Success(), true
			}
			resolved, err := otherR.Lookup(o.Name)
			if err != nil {
				return nil, stack, result.DefinitionFailure(err.Error()), true
			}
			if keyed {
				stack = stack.With(key, name)
			}
			other = resolved
		case LookupRow:
			other = o.Pattern
		case ExactValue:
			s, ok := o.Value.(value.String)
			if !ok {
				return other, stack, result.Success(), false
			}
			if _, isExact := this.(ExactValue); isExact {
				// Exact values re-read the literal themselves.
				return other, stack, result.Success(), false
			}
			parsed, err := this.Parse(string(s), thisR)
			if err != nil {
				return nil, stack, result.Failuref("Expected %s, got %q", this.TypeName(), string(s)), true
			}
			return ExactValue{Value: parsed}, stack, result.Success(), false
		default:
			return other, stack, result.Success(), false
		}
	}
}

// typeKey identifies p on the type stack: named types by name, structural
// patterns by identity. Leaf patterns have no key.
func typeKey(p Pattern) (string, bool) {
	switch t := p.(type) {
	case Deferred:
		return TypeToken(t.Name), true
	case *Object, *List, *Any:
		return fmt.Sprintf("%T@%p", t, t), true
	}
	return "", false
}

// scalarEncompasses implements Encompasses for leaf patterns that accept
// the patterns named by accepts.
func scalarEncompasses(this, other Pattern, thisR, otherR *Resolver, stack TypeStack, accepts func(Pattern) bool) result.Result {
	other, stack, res, done := normalizeOther(this, other, thisR, otherR, stack)
	if done {
		return res
	}
	switch o := other.(type) {
	case ExactValue:
		res := this.Matches(o.Value, thisR)
		if res.IsFailure() && accepts(scalarOf(o.Value)) {
			return result.Success()
		}
		return res
	case *Any:
		return FitsWithin(o, []Pattern{this}, otherR, thisR, stack)
	}
	if accepts(other) {
		return result.Success()
	}
	return result.Failuref("Expected %s, got %s", this.TypeName(), other.TypeName())
}

// scalarOf returns the type pattern of a scalar literal.
func scalarOf(v value.Value) Pattern {
	switch v.(type) {
	case value.Number:
		return Number{}
	case value.Boolean:
		return Boolean{}
	case value.Null:
		return Null{}
	}
	return ExactValue{Value: v}
}

func listOf(values []value.Value) value.Value {
	return value.List(append([]value.Value(nil), values...))
}

func orEmpty(v value.Value) value.Value {
	if v == nil {
		return value.EmptyString
	}
	return v
}

func describe(v value.Value) string {
	if v == nil {
		return "nothing"
	}
	if s, ok := v.(value.String); ok {
		if s == value.EmptyString {
			return "empty string"
		}
		return "string: \"" + string(s) + "\""
	}
	switch v.(type) {
	case *value.Object, value.List:
		return v.TypeName()
	}
	return v.TypeName() + ": " + v.String()
}
