package pattern

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

const randomStringLength = 5

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// String accepts any string value.
type String struct{}

func (String) Matches(v value.Value, _ *Resolver) result.Result {
	if _, ok := orEmpty(v).(value.String); ok {
		return result.Success()
	}
	return result.Failuref("Expected string, got %s", describe(v))
}

func (String) Generate(_ *Resolver) (value.Value, error) {
	b := make([]byte, randomStringLength)
	for i := range b {
		b[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return value.String(b), nil
}

func (s String) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{s}, nil }

func (String) Parse(text string, _ *Resolver) (value.Value, error) { return value.String(text), nil }

// Encompasses accepts every textual scalar pattern: numbers, booleans,
// UUIDs, timestamps and URLs all travel as text somewhere, and a row may
// narrow a string field to any of them.
func (s String) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return scalarEncompasses(s, other, thisR, otherR, stack, func(p Pattern) bool {
		switch p.(type) {
		case String, Number, Boolean, UUID, DateTime, URL:
			return true
		}
		return false
	})
}

func (s String) PatternSet(_ *Resolver) []Pattern { return []Pattern{s} }

func (String) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (String) TypeName() string { return "string" }

// Number accepts any number value.
type Number struct{}

func (Number) Matches(v value.Value, _ *Resolver) result.Result {
	if _, ok := v.(value.Number); ok {
		return result.Success()
	}
	return result.Failuref("Expected number, got %s", describe(v))
}

func (Number) Generate(_ *Resolver) (value.Value, error) {
	return value.Number(rand.IntN(1000)), nil
}

func (n Number) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{n}, nil }

func (Number) Parse(text string, _ *Resolver) (value.Value, error) {
	return value.ParseNumber(text)
}

func (n Number) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return scalarEncompasses(n, other, thisR, otherR, stack, func(p Pattern) bool {
		_, ok := p.(Number)
		return ok
	})
}

func (n Number) PatternSet(_ *Resolver) []Pattern { return []Pattern{n} }

func (Number) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (Number) TypeName() string { return "number" }

// Boolean accepts true and false.
type Boolean struct{}

func (Boolean) Matches(v value.Value, _ *Resolver) result.Result {
	if _, ok := v.(value.Boolean); ok {
		return result.Success()
	}
	return result.Failuref("Expected boolean, got %s", describe(v))
}

func (Boolean) Generate(_ *Resolver) (value.Value, error) {
	return value.Boolean(rand.IntN(2) == 0), nil
}

func (b Boolean) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{b}, nil }

func (Boolean) Parse(text string, _ *Resolver) (value.Value, error) {
	return value.ParseBoolean(text)
}

func (b Boolean) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return scalarEncompasses(b, other, thisR, otherR, stack, func(p Pattern) bool {
		_, ok := p.(Boolean)
		return ok
	})
}

func (b Boolean) PatternSet(_ *Resolver) []Pattern { return []Pattern{b} }

func (Boolean) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (Boolean) TypeName() string { return "boolean" }

// Null accepts null and the empty string.
type Null struct{}

func (Null) Matches(v value.Value, _ *Resolver) result.Result {
	if _, ok := v.(value.Null); ok || value.IsEmpty(v) {
		return result.Success()
	}
	return result.Failuref("Expected null, got %s", describe(v))
}

func (Null) Generate(_ *Resolver) (value.Value, error) { return value.Null{}, nil }

func (n Null) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{n}, nil }

func (Null) Parse(text string, _ *Resolver) (value.Value, error) {
	switch strings.TrimSpace(text) {
	case "", "null":
		return value.Null{}, nil
	}
	return nil, fmt.Errorf("%q is not null", text)
}

func (n Null) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return scalarEncompasses(n, other, thisR, otherR, stack, isNullish)
}

func (n Null) PatternSet(_ *Resolver) []Pattern { return []Pattern{n} }

func (Null) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (Null) TypeName() string { return "null" }

// NoContent accepts an absent body: null or the empty string.
type NoContent struct{}

func (NoContent) Matches(v value.Value, _ *Resolver) result.Result {
	if _, ok := v.(value.Null); ok || value.IsEmpty(v) {
		return result.Success()
	}
	return result.Failuref("Expected no content, got %s", describe(v))
}

func (NoContent) Generate(_ *Resolver) (value.Value, error) { return value.EmptyString, nil }

func (n NoContent) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{n}, nil }

func (NoContent) Parse(text string, _ *Resolver) (value.Value, error) {
	if strings.TrimSpace(text) == "" {
		return value.EmptyString, nil
	}
	return nil, fmt.Errorf("expected no content, got %q", text)
}

func (n NoContent) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return scalarEncompasses(n, other, thisR, otherR, stack, isNullish)
}

func (n NoContent) PatternSet(_ *Resolver) []Pattern { return []Pattern{n} }

func (NoContent) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (NoContent) TypeName() string { return "no content" }

// Empty accepts only the empty string.
type Empty struct{}

func (Empty) Matches(v value.Value, _ *Resolver) result.Result {
	if value.IsEmpty(v) {
		return result.Success()
	}
	return result.Failuref("Expected empty string, got %s", describe(v))
}

func (Empty) Generate(_ *Resolver) (value.Value, error) { return value.EmptyString, nil }

func (e Empty) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{e}, nil }

func (Empty) Parse(text string, _ *Resolver) (value.Value, error) {
	if text == "" {
		return value.EmptyString, nil
	}
	return nil, fmt.Errorf("expected empty string, got %q", text)
}

func (e Empty) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return scalarEncompasses(e, other, thisR, otherR, stack, func(p Pattern) bool {
		_, ok := p.(Empty)
		return ok
	})
}

func (e Empty) PatternSet(_ *Resolver) []Pattern { return []Pattern{e} }

func (Empty) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (Empty) TypeName() string { return "empty string" }

func isNullish(p Pattern) bool {
	switch p.(type) {
	case Null, NoContent, Empty:
		return true
	}
	return false
}

// UUID accepts strings holding a UUID.
type UUID struct{}

func (UUID) Matches(v value.Value, _ *Resolver) result.Result {
	s, ok := v.(value.String)
	if !ok {
		return result.Failuref("Expected uuid, got %s", describe(v))
	}
	if _, err := uuid.Parse(string(s)); err != nil {
		return result.Failuref("Expected uuid, got %s", describe(v))
	}
	return result.Success()
}

func (UUID) Generate(_ *Resolver) (value.Value, error) { return value.String(uuid.NewString()), nil }

func (u UUID) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{u}, nil }

func (UUID) Parse(text string, _ *Resolver) (value.Value, error) {
	id, err := uuid.Parse(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%q is not a uuid: %w", text, err)
	}
	return value.String(id.String()), nil
}

func (u UUID) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return scalarEncompasses(u, other, thisR, otherR, stack, func(p Pattern) bool {
		_, ok := p.(UUID)
		return ok
	})
}

func (u UUID) PatternSet(_ *Resolver) []Pattern { return []Pattern{u} }

func (UUID) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (UUID) TypeName() string { return "uuid" }

// DateTime accepts RFC 3339 timestamps.
type DateTime struct{}

func (DateTime) Matches(v value.Value, _ *Resolver) result.Result {
	s, ok := v.(value.String)
	if !ok {
		return result.Failuref("Expected datetime, got %s", describe(v))
	}
	if _, err := time.Parse(time.RFC3339, string(s)); err != nil {
		return result.Failuref("Expected datetime, got %s", describe(v))
	}
	return result.Success()
}

func (DateTime) Generate(_ *Resolver) (value.Value, error) {
	return value.String(time.Now().UTC().Format(time.RFC3339)), nil
}

func (d DateTime) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{d}, nil }

func (DateTime) Parse(text string, _ *Resolver) (value.Value, error) {
	text = strings.TrimSpace(text)
	if _, err := time.Parse(time.RFC3339, text); err != nil {
		return nil, fmt.Errorf("%q is not an RFC 3339 datetime: %w", text, err)
	}
	return value.String(text), nil
}

func (d DateTime) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return scalarEncompasses(d, other, thisR, otherR, stack, func(p Pattern) bool {
		_, ok := p.(DateTime)
		return ok
	})
}

func (d DateTime) PatternSet(_ *Resolver) []Pattern { return []Pattern{d} }

func (DateTime) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (DateTime) TypeName() string { return "datetime" }

// URL accepts absolute http and https URLs.
type URL struct{}

func (URL) Matches(v value.Value, _ *Resolver) result.Result {
	s, ok := v.(value.String)
	if !ok || !isWebURL(string(s)) {
		return result.Failuref("Expected url, got %s", describe(v))
	}
	return result.Success()
}

func (URL) Generate(_ *Resolver) (value.Value, error) {
	b := make([]byte, randomStringLength)
	for i := range b {
		b[i] = alphanumeric[rand.IntN(26)]
	}
	return value.String("https://" + string(b) + ".example.com"), nil
}

func (u URL) NewBasedOn(_ Row, _ *Resolver) ([]Pattern, error) { return []Pattern{u}, nil }

func (URL) Parse(text string, _ *Resolver) (value.Value, error) {
	text = strings.TrimSpace(text)
	if !isWebURL(text) {
		return nil, fmt.Errorf("%q is not an http or https url", text)
	}
	return value.String(text), nil
}

func (u URL) Encompasses(other Pattern, thisR, otherR *Resolver, stack TypeStack) result.Result {
	return scalarEncompasses(u, other, thisR, otherR, stack, func(p Pattern) bool {
		_, ok := p.(URL)
		return ok
	})
}

func (u URL) PatternSet(_ *Resolver) []Pattern { return []Pattern{u} }

func (URL) ListOf(values []value.Value, _ *Resolver) value.Value { return listOf(values) }

func (URL) TypeName() string { return "url" }

func isWebURL(text string) bool {
	u, err := url.ParseRequestURI(text)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
