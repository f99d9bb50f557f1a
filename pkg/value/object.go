package value

import (
	"sort"
	"strconv"
	"strings"
)

// Field is a single key/value entry of an Object.
type Field struct {
	Key   string
	Value Value
}

// Object is an ordered mapping of unique keys to values.
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject builds an Object from fields in order. A repeated key keeps its
// first position and takes the last value.
func NewObject(fields ...Field) *Object {
	o := &Object{fields: make(map[string]Value, len(fields))}
	for _, f := range fields {
		if _, exists := o.fields[f.Key]; !exists {
			o.keys = append(o.keys, f.Key)
		}
		o.fields[f.Key] = f.Value
	}
	return o
}

// ObjectOf builds an Object from a map. Keys are sorted to keep the result
// deterministic.
func ObjectOf(m map[string]Value) *Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, len(keys))
	for i, k := range keys {
		fields[i] = Field{Key: k, Value: m[k]}
	}
	return NewObject(fields...)
}

// Keys returns the object's keys in order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// With returns a copy of the object with key set to v.
func (o *Object) With(key string, v Value) *Object {
	fields := make([]Field, 0, len(o.keys)+1)
	for _, k := range o.keys {
		fields = append(fields, Field{Key: k, Value: o.fields[k]})
	}
	fields = append(fields, Field{Key: key, Value: v})
	return NewObject(fields...)
}

func (o *Object) String() string {
	parts := make([]string, len(o.keys))
	for i, k := range o.keys {
		parts[i] = strconv.Quote(k) + ": " + quoted(o.fields[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (*Object) TypeName() string { return TypeObject }

func (o *Object) Native() any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = o.fields[k].Native()
	}
	return out
}

// Equal compares keys and values; key order is not significant.
func (o *Object) Equal(other Value) bool {
	p, ok := other.(*Object)
	if !ok || p.Len() != o.Len() {
		return false
	}
	for _, k := range o.keys {
		pv, ok := p.fields[k]
		if !ok || !o.fields[k].Equal(pv) {
			return false
		}
	}
	return true
}
