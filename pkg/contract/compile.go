package contract

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/contractd/pkg/logging"
	"github.com/getmockd/contractd/pkg/pattern"
	"github.com/getmockd/contractd/pkg/value"
)

// ErrInvalidPattern is returned for a contract node that has no pattern reading.
var ErrInvalidPattern = errors.New("invalid pattern")

// Compiled is a contract ready for matching: a frozen registry of named
// types and the scenarios expressed as patterns.
type Compiled struct {
	Name      string
	Version   string
	Registry  *pattern.Registry
	Scenarios []*CompiledScenario
}

// CompiledScenario is a scenario expressed as patterns. Exactly one of
// Request and Kafka is set; Response accompanies Request.
type CompiledScenario struct {
	Name     string
	Request  *HTTPRequest
	Response *HTTPResponse
	Kafka    *pattern.KafkaMessage
	Examples []pattern.Row
}

// IsMessage reports whether the scenario describes a published message.
func (s *CompiledScenario) IsMessage() bool {
	return s.Kafka != nil
}

// Rows returns the example rows, or a single empty row when there are none.
func (s *CompiledScenario) Rows() []pattern.Row {
	if len(s.Examples) == 0 {
		return []pattern.Row{{}}
	}
	return s.Examples
}

// Resolver returns a resolver over the contract's registry.
func (c *Compiled) Resolver(opts ...pattern.Option) *pattern.Resolver {
	return pattern.NewResolver(c.Registry, opts...)
}

// Scenario returns the scenario with name.
func (c *Compiled) Scenario(name string) (*CompiledScenario, bool) {
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Compile turns a validated document into patterns. Every named reference
// must resolve; the registry is frozen on success.
func Compile(doc *Document, log *slog.Logger) (*Compiled, error) {
	if log == nil {
		log = logging.Nop()
	}

	registry := pattern.NewRegistry()
	if doc.Types.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(doc.Types.Content); i += 2 {
			name := doc.Types.Content[i].Value
			p, err := nodePattern(doc.Types.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("type %s: %w", name, err)
			}
			if err := registry.Register(name, p); err != nil {
				return nil, err
			}
		}
	}

	c := &Compiled{Name: doc.Name, Version: doc.Version, Registry: registry}
	for _, s := range doc.Scenarios {
		cs, err := compileScenario(s)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		c.Scenarios = append(c.Scenarios, cs)
	}

	if err := c.validateReferences(); err != nil {
		return nil, err
	}
	registry.Freeze()

	log.Debug("compiled contract",
		"name", c.Name,
		"version", c.Version,
		"types", len(registry.Names()),
		"scenarios", len(c.Scenarios))
	return c, nil
}

func (c *Compiled) validateReferences() error {
	if err := c.Registry.Validate(); err != nil {
		return err
	}
	r := c.Resolver()
	var errs []error
	for _, s := range c.Scenarios {
		for _, p := range s.patterns() {
			for _, ref := range pattern.References(p) {
				if _, err := r.Lookup(ref); err != nil {
					errs = append(errs, fmt.Errorf("scenario %q: %w", s.Name, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// patterns lists every pattern of the scenario.
func (s *CompiledScenario) patterns() []pattern.Pattern {
	var out []pattern.Pattern
	if s.Kafka != nil {
		out = append(out, s.Kafka.Key, s.Kafka.Value)
	}
	if s.Request != nil {
		out = append(out, s.Request.Path...)
		out = append(out, s.Request.Headers, s.Request.Query, s.Request.Body)
		for _, part := range s.Request.Multipart {
			if content, ok := part.(pattern.MultiPartContent); ok {
				out = append(out, content.Content)
			}
		}
	}
	if s.Response != nil {
		out = append(out, s.Response.Headers, s.Response.Body)
	}
	return out
}

func compileScenario(s *Scenario) (*CompiledScenario, error) {
	cs := &CompiledScenario{Name: s.Name}
	for _, ex := range s.Examples {
		cs.Examples = append(cs.Examples, rowOf(ex))
	}

	if s.Kafka != nil {
		key := pattern.Pattern(pattern.NoContent{})
		if s.Kafka.Key.Kind != 0 {
			p, err := nodePattern(&s.Kafka.Key)
			if err != nil {
				return nil, fmt.Errorf("kafka key: %w", err)
			}
			key = p
		}
		val, err := nodePattern(&s.Kafka.Value)
		if err != nil {
			return nil, fmt.Errorf("kafka value: %w", err)
		}
		cs.Kafka = pattern.NewKafkaMessage(s.Kafka.Target, key, val)
		return cs, nil
	}

	req, err := compileRequest(s.Request)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	resp, err := compileResponse(s.Response)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	cs.Request, cs.Response = req, resp
	return cs, nil
}

func compileRequest(r *Request) (*HTTPRequest, error) {
	body, err := nodePattern(&r.Body)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	req := &HTTPRequest{
		Method:  strings.ToUpper(r.Method),
		Path:    PathPattern(r.Path),
		Headers: textObject(r.Headers, true),
		Query:   textObject(r.Query, false),
		Body:    body,
	}
	for _, part := range r.Multipart {
		if part.Filename != "" {
			req.Multipart = append(req.Multipart, pattern.MultiPartFile{
				Name:            part.Name,
				Filename:        part.Filename,
				ContentType:     part.ContentType,
				ContentEncoding: part.ContentEncoding,
			})
			continue
		}
		content, err := nodePattern(&part.Content)
		if err != nil {
			return nil, fmt.Errorf("multipart %s: %w", part.Name, err)
		}
		req.Multipart = append(req.Multipart, pattern.MultiPartContent{Name: part.Name, Content: content})
	}
	return req, nil
}

func compileResponse(r *Response) (*HTTPResponse, error) {
	body, err := nodePattern(&r.Body)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	return &HTTPResponse{
		Status:  r.Status,
		Headers: textObject(r.Headers, true),
		Body:    body,
	}, nil
}

// PathPattern splits a path template into segment patterns: literal
// segments match exactly, token segments such as "(id:number)" match by type.
func PathPattern(path string) []pattern.Pattern {
	var segments []pattern.Pattern
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		if pattern.IsPatternToken(seg) {
			segments = append(segments, pattern.ParsedPattern(seg))
			continue
		}
		segments = append(segments, pattern.ExactValue{Value: value.String(seg)})
	}
	return segments
}

// textObject builds an object pattern over textual entries such as headers
// or query parameters. Header names are case-insensitive.
func textObject(entries map[string]string, header bool) *pattern.Object {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]pattern.Field, 0, len(keys))
	for _, k := range keys {
		name := k
		if header {
			name = strings.ToLower(k)
		}
		fields = append(fields, pattern.ObjectField(name, pattern.ParsedPattern(entries[k])))
	}
	return pattern.NewObject(fields...)
}

func rowOf(example map[string]string) pattern.Row {
	keys := make([]string, 0, len(example))
	for k := range example {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return pattern.RowOf(example, keys...)
}

// nodePattern reads a contract node as a pattern:
//
//	(string), (Order*), (id:number)   pattern tokens
//	other scalars                     exact values
//	[ X ]                             a list of X
//	{ oneOf: [A, B] }                 A or B
//	{ key: X, key?: Y }               an object, "?" marking optional keys
//
// A missing node means no content.
func nodePattern(n *yaml.Node) (pattern.Pattern, error) {
	if n == nil || n.Kind == 0 {
		return pattern.NoContent{}, nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return pattern.NoContent{}, nil
		}
		return nodePattern(n.Content[0])

	case yaml.AliasNode:
		return nodePattern(n.Alias)

	case yaml.ScalarNode:
		return scalarPattern(n), nil

	case yaml.SequenceNode:
		switch len(n.Content) {
		case 0:
			return pattern.ExactValue{Value: value.List{}}, nil
		case 1:
			elem, err := nodePattern(n.Content[0])
			if err != nil {
				return nil, err
			}
			return pattern.NewList(elem), nil
		}
		return nil, fmt.Errorf("%w at line %d: a list pattern has exactly one element pattern, use oneOf for alternatives", ErrInvalidPattern, n.Line)

	case yaml.MappingNode:
		if len(n.Content) == 2 && n.Content[0].Value == "oneOf" {
			return oneOfPattern(n.Content[1])
		}
		fields := make([]pattern.Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			p, err := nodePattern(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", n.Content[i].Value, err)
			}
			fields = append(fields, pattern.ObjectField(n.Content[i].Value, p))
		}
		return pattern.NewObject(fields...), nil
	}
	return nil, fmt.Errorf("%w at line %d", ErrInvalidPattern, n.Line)
}

func oneOfPattern(n *yaml.Node) (pattern.Pattern, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return nil, fmt.Errorf("%w at line %d: oneOf needs a list of alternatives", ErrInvalidPattern, n.Line)
	}
	alts := make([]pattern.Pattern, 0, len(n.Content))
	for _, c := range n.Content {
		p, err := nodePattern(c)
		if err != nil {
			return nil, err
		}
		alts = append(alts, p)
	}
	return &pattern.Any{Alternatives: alts}, nil
}

func scalarPattern(n *yaml.Node) pattern.Pattern {
	switch n.ShortTag() {
	case "!!null":
		return pattern.Null{}
	case "!!bool":
		if b, err := value.ParseBoolean(n.Value); err == nil {
			return pattern.ExactValue{Value: b}
		}
	case "!!int", "!!float":
		if num, err := value.ParseNumber(n.Value); err == nil {
			return pattern.ExactValue{Value: num}
		}
	}
	if pattern.IsPatternToken(n.Value) {
		return pattern.ParsedPattern(n.Value)
	}
	return pattern.ExactValue{Value: value.String(n.Value)}
}
