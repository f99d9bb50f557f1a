package value

import (
	"strconv"
	"strings"
)

// Value is a concrete runtime value.
type Value interface {
	// String returns the textual rendering of the value.
	String() string

	// TypeName returns a stable, human-readable name for the value's type.
	TypeName() string

	// Equal reports whether other is structurally equal to this value.
	Equal(other Value) bool

	// Native converts the value into plain Go types: nil, bool, float64,
	// string, []any and map[string]any.
	Native() any
}

// Type names reported by TypeName.
const (
	TypeNull      = "null"
	TypeBoolean   = "boolean"
	TypeNumber    = "number"
	TypeString    = "string"
	TypeList      = "list"
	TypeObject    = "json object"
	TypeXML       = "xml"
	TypeMultiPart = "multipart part"
	TypeMessage   = "message"
)

// Null is the null value.
type Null struct{}

func (Null) String() string { return "null" }
func (Null) TypeName() string { return TypeNull }
func (Null) Native() any { return nil }

func (Null) Equal(other Value) bool {
	_, ok := other.(Null)
	return ok
}

// Boolean is a true/false value.
type Boolean bool

func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }
func (Boolean) TypeName() string { return TypeBoolean }
func (b Boolean) Native() any { return bool(b) }

func (b Boolean) Equal(other Value) bool {
	o, ok := other.(Boolean)
	return ok && o == b
}

// Number is a numeric value. All numbers are carried as float64.
type Number float64

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }
func (Number) TypeName() string { return TypeNumber }
func (n Number) Native() any { return float64(n) }

func (n Number) Equal(other Value) bool {
	o, ok := other.(Number)
	return ok && o == n
}

// String is a text value.
type String string

// EmptyString is the empty text value, used for absent bodies and keys.
const EmptyString = String("")

func (s String) String() string { return string(s) }
func (String) TypeName() string { return TypeString }
func (s String) Native() any { return string(s) }

func (s String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && o == s
}

// List is an ordered sequence of values.
type List []Value

func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = quoted(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (List) TypeName() string { return TypeList }

func (l List) Native() any {
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = v.Native()
	}
	return out
}

func (l List) Equal(other Value) bool {
	o, ok := other.(List)
	if !ok || len(o) != len(l) {
		return false
	}
	for i := range l {
		if !l[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether v is absent or the empty string.
func IsEmpty(v Value) bool {
	if v == nil {
		return true
	}
	s, ok := v.(String)
	return ok && s == EmptyString
}

// quoted renders v the way it appears nested inside a composite.
func quoted(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	if v == nil {
		return "null"
	}
	return v.String()
}
