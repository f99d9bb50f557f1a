package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidJSON is returned when text is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// Parse guesses the shape of text: a JSON object or array, an XML element,
// a number, a boolean, null, or otherwise plain text.
func Parse(text string) (Value, error) {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return EmptyString, nil
	case strings.HasPrefix(trimmed, "{"), strings.HasPrefix(trimmed, "["):
		return ParseJSON(trimmed)
	case strings.HasPrefix(trimmed, "<"):
		return ParseXML(trimmed)
	case trimmed == "null":
		return Null{}, nil
	case trimmed == "true":
		return Boolean(true), nil
	case trimmed == "false":
		return Boolean(false), nil
	}
	if n, err := ParseNumber(trimmed); err == nil {
		return n, nil
	}
	return String(text), nil
}

// ParseNumber parses text as a Number.
func ParseNumber(text string) (Number, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", text)
	}
	return Number(f), nil
}

// ParseBoolean parses text as a Boolean.
func ParseBoolean(text string) (Boolean, error) {
	switch strings.TrimSpace(text) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", text)
}

// ParseJSON parses text as JSON, preserving object key order.
func ParseJSON(text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	v, err := decodeJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrInvalidJSON)
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var fields []Field
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				fields = append(fields, Field{Key: key, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return NewObject(fields...), nil
		case '[':
			list := List{}
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case bool:
		return Boolean(t), nil
	case nil:
		return Null{}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// FromNative converts plain Go values (as produced by encoding/json, yaml.v3
// or JSONPath evaluation) into a Value. Maps become objects with sorted keys.
func FromNative(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Boolean(t)
	case string:
		return String(t)
	case float64:
		return Number(t)
	case float32:
		return Number(t)
	case int:
		return Number(t)
	case int64:
		return Number(t)
	case int32:
		return Number(t)
	case uint64:
		return Number(t)
	case json.Number:
		f, _ := t.Float64()
		return Number(f)
	case []any:
		list := make(List, len(t))
		for i, item := range t {
			list[i] = FromNative(item)
		}
		return list
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: FromNative(t[k])}
		}
		return NewObject(fields...)
	}
	return String(fmt.Sprint(v))
}

// MarshalJSON renders v as JSON text. XML nodes and parts are rendered
// through their native form.
func MarshalJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case *Object:
		buf.WriteByte('{')
		for i, k := range t.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(k)
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, t.fields[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case List:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		data, err := json.Marshal(v.Native())
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return nil
}
