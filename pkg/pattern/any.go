package pattern

import (
	"errors"
	"strings"

	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// ErrNoAlternatives is returned by NewAny without alternatives.
var ErrNoAlternatives = errors.New("a union needs at least one alternative")

// Any accepts a value matching any of its alternatives.
type Any struct {
	Alternatives []Pattern
}

// NewAny creates a union pattern.
func NewAny(alternatives ...Pattern) (*Any, error) {
	if len(alternatives) == 0 {
		return nil, ErrNoAlternatives
	}
	return &Any{Alternatives: alternatives}, nil
}

// Optional returns a union of p and null.
func Optional(p Pattern) *Any {
	return &Any{Alternatives: []Pattern{p, Null{}}}
}

// Matches succeeds on the first matching alternative. When the union is an
// optional value, the failure of the single non-null alternative is
// reported since it says more than the union does.
func (a *Any) Matches(v value.Value, r *Resolver) result.Result {
	var failures []result.Result
	for _, alt := range a.Alternatives {
		res := alt.Matches(v, r)
		if res.IsSuccess() {
			return res
		}
		if !a.nullish(alt, r) {
			failures = append(failures, res)
		}
	}
	if len(failures) == 1 {
		return failures[0]
	}
	return result.Failuref("Expected %s, got %s", a.TypeName(), describe(v))
}

// Generate tries the non-null alternatives in order, falling back to the
// null ones when every other alternative recurses without bound.
func (a *Any) Generate(r *Resolver) (value.Value, error) {
	var fallback []Pattern
	var lastErr error = ErrNoAlternatives
	for _, alt := range a.Alternatives {
		if a.nullish(alt, r) {
			fallback = append(fallback, alt)
			continue
		}
		v, err := alt.Generate(r)
		if err == nil {
			return v, nil
		}
		if !isCycle(err) {
			return nil, err
		}
		lastErr = err
	}
	for _, alt := range fallback {
		v, err := alt.Generate(r)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (a *Any) NewBasedOn(row Row, r *Resolver) ([]Pattern, error) {
	var out []Pattern
	for _, alt := range a.Alternatives {
		variants, err := alt.NewBasedOn(row, r)
		if err != nil {
			return nil, err
		}
		out = append(out, variants...)
	}
	return out, nil
}

// Parse returns the first alternative's reading of text that succeeds.
func (a *Any) Parse(text string, r *Resolver) (value.Value, error) {
	var errs []error
	for _, alt := range a.Alternatives {
		v, err := alt.Parse(text, r)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoAlternatives
	}
	return nil, errors.Join(errs...)
}

// Encompasses requires every member of other's pattern set to fit within
// one of the alternatives.
func (a *Any) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	other, stack, res, done := normalizeOther(a, other, thisR, otherR, stack)
	if done {
		return res
	}
	return FitsWithin(other, a.Alternatives, otherR, thisR, stack)
}

func (a *Any) PatternSet(_ *Resolver) []Pattern {
	return append([]Pattern(nil), a.Alternatives...)
}

func (a *Any) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (a *Any) TypeName() string {
	names := make([]string, len(a.Alternatives))
	for i, alt := range a.Alternatives {
		names[i] = alt.TypeName()
	}
	return strings.Join(names, " or ")
}

func (a *Any) nullish(p Pattern, r *Resolver) bool {
	if d, ok := p.(Deferred); ok {
		if resolved, err := r.Lookup(d.Name); err == nil {
			p = resolved
		}
	}
	return isNullish(p)
}
