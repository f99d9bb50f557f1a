package pattern

import (
	"fmt"
	"strings"

	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// Field is a key of an object pattern.
type Field struct {
	Name     string
	Pattern  Pattern
	Optional bool
}

// ObjectField builds a field from a contract key. A trailing "?" marks the
// key optional and is removed from the name.
func ObjectField(key string, p Pattern) Field {
	if name, ok := strings.CutSuffix(key, "?"); ok {
		return Field{Name: name, Pattern: p, Optional: true}
	}
	return Field{Name: key, Pattern: p}
}

// Object accepts JSON objects with the declared keys. Keys not declared are
// rejected unless the resolver is tolerant.
type Object struct {
	Fields []Field
}

// NewObject creates an object pattern. A repeated name keeps its first
// position and takes the last definition.
func NewObject(fields ...Field) *Object {
	o := &Object{}
	index := make(map[string]int, len(fields))
	for _, f := range fields {
		if i, exists := index[f.Name]; exists {
			o.Fields[i] = f
			continue
		}
		index[f.Name] = len(o.Fields)
		o.Fields = append(o.Fields, f)
	}
	return o
}

// Field returns the field with name.
func (o *Object) Field(name string) (Field, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (o *Object) Matches(v value.Value, r *Resolver) result.Result {
	obj, ok := v.(*value.Object)
	if !ok {
		return result.Failuref("Expected json object, got %s", describe(v))
	}

	for _, f := range o.Fields {
		if _, present := obj.Get(f.Name); !present && !f.Optional {
			return result.Failuref("Expected key named %q was missing", f.Name).BreadCrumb(f.Name)
		}
	}
	if !r.Tolerant() {
		for _, key := range obj.Keys() {
			if _, declared := o.Field(key); !declared {
				return result.Failuref("Key named %q was unexpected", key).BreadCrumb(key)
			}
		}
	}

	child, res := r.descend()
	if res.IsFailure() {
		return res
	}
	for _, f := range o.Fields {
		fv, present := obj.Get(f.Name)
		if !present {
			continue
		}
		if res := f.Pattern.Matches(fv, child); res.IsFailure() {
			return res.BreadCrumb(f.Name)
		}
	}
	return result.Success()
}

// Generate fills every required key. Optional keys are filled only in
// generative mode, and dropped when they recurse without bound.
func (o *Object) Generate(r *Resolver) (value.Value, error) {
	child, err := r.descendGenerate()
	if err != nil {
		return nil, err
	}
	fields := make([]value.Field, 0, len(o.Fields))
	for _, f := range o.Fields {
		if f.Optional && !r.Generative() {
			continue
		}
		v, err := f.Pattern.Generate(child)
		if err != nil {
			if f.Optional && isCycle(err) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		fields = append(fields, value.Field{Key: f.Name, Value: v})
	}
	return value.NewObject(fields...), nil
}

// NewBasedOn specializes each key. A key named by a row column takes the
// row's value and becomes required; the other keys keep their own variants.
// The result is the cross product of the per-key variants.
func (o *Object) NewBasedOn(row Row, r *Resolver) ([]Pattern, error) {
	combos := [][]Field{{}}
	for _, f := range o.Fields {
		var variants []Field
		if row.Contains(f.Name) {
			ps, err := rowValueBasedOn(f.Pattern, f.Name, row, r)
			if err != nil {
				return nil, err
			}
			for _, p := range ps {
				variants = append(variants, Field{Name: f.Name, Pattern: p})
			}
		} else {
			ps, err := f.Pattern.NewBasedOn(row, r)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			for _, p := range ps {
				variants = append(variants, Field{Name: f.Name, Pattern: p, Optional: f.Optional})
			}
		}

		next := make([][]Field, 0, len(combos)*len(variants))
		for _, combo := range combos {
			for _, v := range variants {
				extended := append(append(make([]Field, 0, len(combo)+1), combo...), v)
				next = append(next, extended)
			}
		}
		combos = next
	}

	out := make([]Pattern, len(combos))
	for i, combo := range combos {
		out[i] = &Object{Fields: combo}
	}
	return out, nil
}

func (o *Object) Parse(text string, _ *Resolver) (value.Value, error) {
	v, err := value.ParseJSON(text)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(*value.Object); !ok {
		return nil, fmt.Errorf("expected a json object, got %s", v.TypeName())
	}
	return v, nil
}

// Encompasses requires every key this object needs to be present, and
// required, in the other object, with a compatible pattern. Keys only the
// other object declares are rejected unless thisR is tolerant.
func (o *Object) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	other, stack, res, done := normalizeOther(o, other, thisR, otherR, stack)
	if done {
		return res
	}
	switch t := other.(type) {
	case *Object:
		return o.encompassesObject(t, thisR, otherR, stack)
	case ExactValue:
		return o.Matches(t.Value, thisR)
	case *Any:
		return FitsWithin(t, []Pattern{o}, otherR, thisR, stack)
	}
	return result.Failuref("Expected json object, got %s", other.TypeName())
}

func (o *Object) encompassesObject(other *Object, thisR, otherR *Resolver, stack TypeStack) result.Result {
	thisChild, res := thisR.descend()
	if res.IsFailure() {
		return res
	}
	otherChild, res := otherR.descend()
	if res.IsFailure() {
		return res
	}

	for _, f := range o.Fields {
		of, ok := other.Field(f.Name)
		if !ok {
			if f.Optional {
				continue
			}
			return result.Failuref("Expected key named %q was missing", f.Name).BreadCrumb(f.Name)
		}
		if !f.Optional && of.Optional {
			return result.Failuref("Expected required key named %q, but it is optional", f.Name).BreadCrumb(f.Name)
		}
		if res := f.Pattern.Encompasses(of.Pattern, thisChild, otherChild, stack); res.IsFailure() {
			return res.BreadCrumb(f.Name)
		}
	}

	if !thisR.Tolerant() {
		for _, of := range other.Fields {
			if _, ok := o.Field(of.Name); !ok {
				return result.Failuref("Key named %q was unexpected", of.Name).BreadCrumb(of.Name)
			}
		}
	}
	return result.Success()
}

func (o *Object) PatternSet(_ *Resolver) []Pattern { return []Pattern{o} }

func (o *Object) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (o *Object) TypeName() string { return "json object" }
