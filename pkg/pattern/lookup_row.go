package pattern

import (
	"fmt"

	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// LookupRow wraps a pattern whose value may be supplied by the example row
// column Key.
type LookupRow struct {
	Pattern Pattern
	Key     string
}

func (l LookupRow) Matches(v value.Value, r *Resolver) result.Result {
	return l.Pattern.Matches(v, r)
}

func (l LookupRow) Generate(r *Resolver) (value.Value, error) {
	return l.Pattern.Generate(r)
}

// NewBasedOn substitutes the row's value when the row has the key column.
// A pattern token in the row narrows the pattern, a literal becomes an
// exact value. Without the column the inner pattern's variants are used.
func (l LookupRow) NewBasedOn(row Row, r *Resolver) ([]Pattern, error) {
	if l.Key != "" && row.Contains(l.Key) {
		return rowValueBasedOn(l.Pattern, l.Key, row, r)
	}
	return l.Pattern.NewBasedOn(row, r)
}

func (l LookupRow) Parse(text string, r *Resolver) (value.Value, error) {
	return l.Pattern.Parse(text, r)
}

func (l LookupRow) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return l.Pattern.Encompasses(other, thisR, otherR, stack)
}

func (l LookupRow) PatternSet(r *Resolver) []Pattern { return l.Pattern.PatternSet(r) }

func (l LookupRow) ListOf(values []value.Value, r *Resolver) value.Value {
	return l.Pattern.ListOf(values, r)
}

func (l LookupRow) TypeName() string { return l.Pattern.TypeName() }

// rowValueBasedOn specializes p with the value of column key.
func rowValueBasedOn(p Pattern, key string, row Row, r *Resolver) ([]Pattern, error) {
	text := row.Get(key)

	if IsPatternToken(text) {
		rowPattern := ParsedPattern(text)
		if res := p.Encompasses(rowPattern, r, r, TypeStack{}); res.IsFailure() {
			return nil, &ContractError{
				Message: fmt.Sprintf("Expected %s but got %s in row in column %s", p.TypeName(), text, key),
				Cause:   res,
			}
		}
		return []Pattern{rowPattern}, nil
	}

	v, err := p.Parse(text, r)
	if err != nil {
		return nil, &ContractError{
			Message: fmt.Sprintf("Could not read %q in column %s as %s: %v", text, key, p.TypeName(), err),
		}
	}
	if res := p.Matches(v, r); res.IsFailure() {
		return nil, &ContractError{
			Message: fmt.Sprintf("Value %q in column %s does not match %s", text, key, p.TypeName()),
			Cause:   res,
		}
	}
	return []Pattern{ExactValue{Value: v}}, nil
}
