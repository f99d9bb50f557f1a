package pattern

import (
	"strings"

	"github.com/getmockd/contractd/pkg/value"
)

var builtins = map[string]Pattern{
	"(string)":   String{},
	"(number)":   Number{},
	"(boolean)":  Boolean{},
	"(null)":     Null{},
	"(empty)":    Empty{},
	"(nothing)":  NoContent{},
	"(uuid)":     UUID{},
	"(datetime)": DateTime{},
	"(url)":      URL{},
}

func builtin(token string) (Pattern, bool) {
	p, ok := builtins[token]
	return p, ok
}

// IsPatternToken reports whether text is a parenthesized pattern token.
func IsPatternToken(text string) bool {
	text = strings.TrimSpace(text)
	return len(text) > 2 && strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")")
}

// ParsedPattern converts a pattern token into a pattern:
//
//	(string)  a built-in type
//	(X?)      X or null
//	(X*)      a list of X
//	(col:X)   X, filled from the example row column col
//	(Name)    a reference to a named type
//
// Text that is not a token becomes an exact string value.
func ParsedPattern(token string) Pattern {
	token = strings.TrimSpace(token)
	if !IsPatternToken(token) {
		return ExactValue{Value: value.String(token)}
	}
	if p, ok := builtin(token); ok {
		return p
	}

	inner := strings.TrimSpace(token[1 : len(token)-1])
	if key, typ, ok := strings.Cut(inner, ":"); ok && key != "" && typ != "" {
		return LookupRow{Pattern: ParsedPattern("(" + typ + ")"), Key: strings.TrimSpace(key)}
	}
	switch {
	case strings.HasSuffix(inner, "?"):
		return &Any{Alternatives: []Pattern{
			ParsedPattern("(" + strings.TrimSuffix(inner, "?") + ")"),
			Null{},
		}}
	case strings.HasSuffix(inner, "*"):
		return &List{Element: ParsedPattern("(" + strings.TrimSuffix(inner, "*") + ")")}
	}
	return Deferred{Name: "(" + inner + ")"}
}
