package contract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getmockd/contractd/pkg/logging"
	"github.com/getmockd/contractd/pkg/pattern"
	"github.com/getmockd/contractd/pkg/value"
)

// ErrNoOperations is returned for an OpenAPI document without usable operations.
var ErrNoOperations = errors.New("openapi document has no operations")

const jsonMediaType = "application/json"

// LoadOpenAPI loads and validates an OpenAPI 3 document from a file.
func LoadOpenAPI(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document %s: %w", path, err)
	}
	return doc, nil
}

// LoadOpenAPIData loads an OpenAPI 3 document from bytes.
func LoadOpenAPIData(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// FromOpenAPI compiles an OpenAPI document into a contract. Component
// schemas become named types and every operation response with a status
// code becomes a scenario named "METHOD /path -> status".
func FromOpenAPI(doc *openapi3.T, log *slog.Logger) (*Compiled, error) {
	if log == nil {
		log = logging.Nop()
	}

	c := &Compiled{Registry: pattern.NewRegistry()}
	if doc.Info != nil {
		c.Name, c.Version = doc.Info.Title, doc.Info.Version
	}

	if doc.Components != nil {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ref := doc.Components.Schemas[name]
			if ref == nil || ref.Value == nil {
				continue
			}
			// Register the definition itself, not a reference to it.
			p := schemaPattern(&openapi3.SchemaRef{Value: ref.Value})
			if err := c.Registry.Register(name, p); err != nil {
				return nil, err
			}
		}
	}

	if doc.Paths != nil {
		paths := doc.Paths.Map()
		keys := make([]string, 0, len(paths))
		for k := range paths {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, path := range keys {
			scenarios, err := operationScenarios(path, paths[path])
			if err != nil {
				return nil, err
			}
			c.Scenarios = append(c.Scenarios, scenarios...)
		}
	}
	if len(c.Scenarios) == 0 {
		return nil, ErrNoOperations
	}

	if err := c.validateReferences(); err != nil {
		return nil, err
	}
	c.Registry.Freeze()

	log.Info("imported openapi document",
		"title", c.Name,
		"types", len(c.Registry.Names()),
		"scenarios", len(c.Scenarios))
	return c, nil
}

func operationScenarios(path string, item *openapi3.PathItem) ([]*CompiledScenario, error) {
	ops := item.Operations()
	methods := make([]string, 0, len(ops))
	for m := range ops {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	var out []*CompiledScenario
	for _, method := range methods {
		op := ops[method]
		req, err := openAPIRequest(method, path, item.Parameters, op)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		if op.Responses == nil {
			continue
		}

		responses := op.Responses.Map()
		codes := make([]string, 0, len(responses))
		for code := range responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			status, err := strconv.Atoi(code)
			if err != nil {
				continue // "default" and ranges like "2XX" have no concrete status
			}
			resp := &HTTPResponse{Status: status, Headers: pattern.NewObject(), Body: pattern.NoContent{}}
			if rr := responses[code]; rr != nil && rr.Value != nil {
				resp.Body = contentPattern(rr.Value.Content)
			}
			out = append(out, &CompiledScenario{
				Name:     fmt.Sprintf("%s %s -> %d", method, path, status),
				Request:  req,
				Response: resp,
			})
		}
	}
	return out, nil
}

func openAPIRequest(method, path string, shared openapi3.Parameters, op *openapi3.Operation) (*HTTPRequest, error) {
	params := map[string]*openapi3.Parameter{}
	for _, p := range append(append(openapi3.Parameters{}, shared...), op.Parameters...) {
		if p != nil && p.Value != nil {
			params[p.Value.In+":"+p.Value.Name] = p.Value
		}
	}

	var segments []pattern.Pattern
	for _, seg := range splitPath(path) {
		name, isParam := strings.CutPrefix(seg, "{")
		if !isParam {
			segments = append(segments, pattern.ExactValue{Value: value.String(seg)})
			continue
		}
		name = strings.TrimSuffix(name, "}")
		var p pattern.Pattern = pattern.String{}
		if param, ok := params[openapi3.ParameterInPath+":"+name]; ok && param.Schema != nil {
			p = schemaPattern(param.Schema)
		}
		segments = append(segments, pattern.LookupRow{Pattern: p, Key: name})
	}

	var query, headers []pattern.Field
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		param := params[k]
		var p pattern.Pattern = pattern.String{}
		if param.Schema != nil {
			p = schemaPattern(param.Schema)
		}
		switch param.In {
		case openapi3.ParameterInQuery:
			query = append(query, pattern.Field{Name: param.Name, Pattern: p, Optional: !param.Required})
		case openapi3.ParameterInHeader:
			headers = append(headers, pattern.Field{Name: strings.ToLower(param.Name), Pattern: p, Optional: !param.Required})
		}
	}

	var body pattern.Pattern = pattern.NoContent{}
	if op.RequestBody != nil && op.RequestBody.Value != nil {
		body = contentPattern(op.RequestBody.Value.Content)
		if !op.RequestBody.Value.Required {
			body = &pattern.Any{Alternatives: []pattern.Pattern{body, pattern.NoContent{}}}
		}
	}

	return &HTTPRequest{
		Method:  strings.ToUpper(method),
		Path:    segments,
		Headers: pattern.NewObject(headers...),
		Query:   pattern.NewObject(query...),
		Body:    body,
	}, nil
}

func contentPattern(content openapi3.Content) pattern.Pattern {
	if content == nil {
		return pattern.NoContent{}
	}
	mt := content.Get(jsonMediaType)
	if mt == nil || mt.Schema == nil {
		return pattern.String{}
	}
	return schemaPattern(mt.Schema)
}

// schemaPattern converts a schema to a pattern. References to component
// schemas stay named so recursive schemas terminate.
func schemaPattern(ref *openapi3.SchemaRef) pattern.Pattern {
	if ref == nil {
		return pattern.String{}
	}
	if ref.Ref != "" {
		name := ref.Ref[strings.LastIndex(ref.Ref, "/")+1:]
		return pattern.Deferred{Name: pattern.TypeToken(name)}
	}
	s := ref.Value
	if s == nil {
		return pattern.String{}
	}

	p := basePattern(s)
	if s.Nullable || slices.Contains(s.Type.Slice(), openapi3.TypeNull) {
		p = pattern.Optional(p)
	}
	return p
}

func basePattern(s *openapi3.Schema) pattern.Pattern {
	if len(s.Enum) > 0 {
		alts := make([]pattern.Pattern, 0, len(s.Enum))
		for _, e := range s.Enum {
			alts = append(alts, pattern.ExactValue{Value: value.FromNative(e)})
		}
		return &pattern.Any{Alternatives: alts}
	}
	if alts := s.OneOf; len(alts) > 0 {
		return anyOf(alts)
	}
	if alts := s.AnyOf; len(alts) > 0 {
		return anyOf(alts)
	}
	if len(s.AllOf) > 0 {
		return allOf(s)
	}

	switch schemaType(s) {
	case openapi3.TypeString:
		switch s.Format {
		case "uuid":
			return pattern.UUID{}
		case "date-time":
			return pattern.DateTime{}
		case "uri", "url":
			return pattern.URL{}
		}
		return pattern.String{}
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return pattern.Number{}
	case openapi3.TypeBoolean:
		return pattern.Boolean{}
	case openapi3.TypeArray:
		return pattern.NewList(schemaPattern(s.Items))
	case openapi3.TypeObject:
		return objectPattern(s)
	}
	if len(s.Properties) > 0 {
		return objectPattern(s)
	}
	return pattern.String{}
}

func anyOf(refs openapi3.SchemaRefs) pattern.Pattern {
	alts := make([]pattern.Pattern, 0, len(refs))
	for _, r := range refs {
		alts = append(alts, schemaPattern(r))
	}
	return &pattern.Any{Alternatives: alts}
}

// allOf merges the properties of inline member schemas; referenced members
// contribute the properties of their resolved definition.
func allOf(s *openapi3.Schema) pattern.Pattern {
	merged := &openapi3.Schema{Properties: openapi3.Schemas{}}
	for _, member := range append(openapi3.SchemaRefs{{Value: s}}, s.AllOf...) {
		if member == nil || member.Value == nil {
			continue
		}
		for name, prop := range member.Value.Properties {
			merged.Properties[name] = prop
		}
		merged.Required = append(merged.Required, member.Value.Required...)
	}
	return objectPattern(merged)
}

func objectPattern(s *openapi3.Schema) pattern.Pattern {
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]pattern.Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, pattern.Field{
			Name:     name,
			Pattern:  schemaPattern(s.Properties[name]),
			Optional: !required[name],
		})
	}
	return pattern.NewObject(fields...)
}

func schemaType(s *openapi3.Schema) string {
	for _, t := range s.Type.Slice() {
		if t != openapi3.TypeNull {
			return t
		}
	}
	return ""
}
