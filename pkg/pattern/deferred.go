package pattern

import (
	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// Deferred refers to a named type, resolved through the Resolver when used.
type Deferred struct {
	Name string
}

// Matches resolves the name and matches against its pattern. A name that
// comes round again at the same value node is accepted: the value is as
// valid as the first expansion decides.
func (d Deferred) Matches(v value.Value, r *Resolver) result.Result {
	next, ok := r.expand(TypeToken(d.Name))
	if !ok {
		return result.Success()
	}
	p, err := r.Lookup(d.Name)
	if err != nil {
		return result.DefinitionFailure(err.Error())
	}
	return p.Matches(v, next)
}

func (d Deferred) Generate(r *Resolver) (value.Value, error) {
	next, err := r.enter(TypeToken(d.Name), generateRecursionLimit)
	if err != nil {
		return nil, err
	}
	p, err := r.Lookup(d.Name)
	if err != nil {
		return nil, err
	}
	return p.Generate(next)
}

// NewBasedOn expands the named type once per path; a self reference stays
// a reference.
func (d Deferred) NewBasedOn(row Row, r *Resolver) ([]Pattern, error) {
	next, err := r.enter(TypeToken(d.Name), 1)
	if err != nil {
		return []Pattern{d}, nil
	}
	p, err := r.Lookup(d.Name)
	if err != nil {
		return nil, err
	}
	return p.NewBasedOn(row, next)
}

func (d Deferred) Parse(text string, r *Resolver) (value.Value, error) {
	p, err := r.Lookup(d.Name)
	if err != nil {
		return nil, err
	}
	return p.Parse(text, r)
}

func (d Deferred) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	name := TypeToken(d.Name)
	key, keyed := typeKey(other)
	if keyed && stack.Contains(name, key) {
		return result.Success()
	}
	p, err := thisR.Lookup(d.Name)
	if err != nil {
		return result.DefinitionFailure(err.Error())
	}
	if keyed {
		stack = stack.With(name, key)
	}
	return p.Encompasses(other, thisR, otherR, stack)
}

func (d Deferred) PatternSet(r *Resolver) []Pattern {
	next, ok := r.expand(TypeToken(d.Name))
	if !ok {
		return []Pattern{d}
	}
	p, err := r.Lookup(d.Name)
	if err != nil {
		return []Pattern{d}
	}
	return p.PatternSet(next)
}

func (d Deferred) ListOf(values []value.Value, r *Resolver) value.Value {
	p, err := r.Lookup(d.Name)
	if err != nil {
		return listOf(values)
	}
	return p.ListOf(values, r)
}

func (d Deferred) TypeName() string { return TypeToken(d.Name) }
