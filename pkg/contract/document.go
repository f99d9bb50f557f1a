package contract

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a contract as written: named types plus scenarios. Type
// definitions and bodies stay YAML nodes until Compile turns them into
// patterns, so key order is preserved. A node with Kind zero is absent.
type Document struct {
	Name      string      `yaml:"name" json:"name"`
	Version   string      `yaml:"version,omitempty" json:"version,omitempty"`
	Types     yaml.Node   `yaml:"types,omitempty" json:"types,omitempty"`
	Scenarios []*Scenario `yaml:"scenarios" json:"scenarios"`
}

// Scenario is one interaction: an HTTP exchange or a published message.
type Scenario struct {
	Name     string              `yaml:"name" json:"name"`
	Request  *Request            `yaml:"request,omitempty" json:"request,omitempty"`
	Response *Response           `yaml:"response,omitempty" json:"response,omitempty"`
	Kafka    *Kafka              `yaml:"kafka,omitempty" json:"kafka,omitempty"`
	Examples []map[string]string `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// Request describes the HTTP request of a scenario.
type Request struct {
	Method    string            `yaml:"method" json:"method"`
	Path      string            `yaml:"path" json:"path"`
	Headers   map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Query     map[string]string `yaml:"query,omitempty" json:"query,omitempty"`
	Body      yaml.Node         `yaml:"body,omitempty" json:"body,omitempty"`
	Multipart []*Part           `yaml:"multipart,omitempty" json:"multipart,omitempty"`
}

// Response describes the HTTP response of a scenario.
type Response struct {
	Status  int               `yaml:"status" json:"status"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body    yaml.Node         `yaml:"body,omitempty" json:"body,omitempty"`
}

// Kafka describes a message published to a topic.
type Kafka struct {
	Target string    `yaml:"target" json:"target"`
	Key    yaml.Node `yaml:"key,omitempty" json:"key,omitempty"`
	Value  yaml.Node `yaml:"value,omitempty" json:"value,omitempty"`
}

// Part is a multipart/form-data part: a file when Filename is set,
// otherwise a field whose Content is a pattern.
type Part struct {
	Name            string    `yaml:"name" json:"name"`
	Filename        string    `yaml:"filename,omitempty" json:"filename,omitempty"`
	ContentType     string    `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	ContentEncoding string    `yaml:"contentEncoding,omitempty" json:"contentEncoding,omitempty"`
	Content         yaml.Node `yaml:"content,omitempty" json:"content,omitempty"`
}

// ValidationError reports an invalid field of a contract document.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

var validMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Validate checks the document's structure. Patterns are checked by Compile.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if d.Version != "" && !IsValidVersion(d.Version) {
		return &ValidationError{Field: "version", Message: fmt.Sprintf("%q is not a semantic version", d.Version)}
	}
	if d.Types.Kind != 0 && d.Types.Kind != yaml.MappingNode {
		return &ValidationError{Field: "types", Message: "must be a mapping of type names to definitions"}
	}
	if len(d.Scenarios) == 0 {
		return &ValidationError{Field: "scenarios", Message: "at least one scenario is required"}
	}

	seen := make(map[string]bool, len(d.Scenarios))
	for i, s := range d.Scenarios {
		field := fmt.Sprintf("scenarios[%d]", i)
		if s == nil {
			return &ValidationError{Field: field, Message: "is empty"}
		}
		if strings.TrimSpace(s.Name) == "" {
			return &ValidationError{Field: field + ".name", Message: "is required"}
		}
		if seen[s.Name] {
			return &ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate scenario %q", s.Name)}
		}
		seen[s.Name] = true
		if err := s.validate(field); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scenario) validate(field string) error {
	switch {
	case s.Request == nil && s.Kafka == nil:
		return &ValidationError{Field: field, Message: "needs a request or a kafka message"}
	case s.Request != nil && s.Kafka != nil:
		return &ValidationError{Field: field, Message: "cannot have both a request and a kafka message"}
	case s.Kafka != nil:
		if s.Kafka.Target == "" {
			return &ValidationError{Field: field + ".kafka.target", Message: "is required"}
		}
		return nil
	}

	req := s.Request
	if !validMethods[strings.ToUpper(req.Method)] {
		return &ValidationError{Field: field + ".request.method", Message: fmt.Sprintf("invalid HTTP method %q", req.Method)}
	}
	if !strings.HasPrefix(req.Path, "/") {
		return &ValidationError{Field: field + ".request.path", Message: "must start with /"}
	}
	if req.Body.Kind != 0 && len(req.Multipart) > 0 {
		return &ValidationError{Field: field + ".request", Message: "cannot have both a body and multipart parts"}
	}
	for i, p := range req.Multipart {
		pf := fmt.Sprintf("%s.request.multipart[%d]", field, i)
		if p == nil || p.Name == "" {
			return &ValidationError{Field: pf + ".name", Message: "is required"}
		}
		if (p.Filename == "") == (p.Content.Kind == 0) {
			return &ValidationError{Field: pf, Message: "needs exactly one of filename or content"}
		}
	}

	if s.Response == nil {
		return &ValidationError{Field: field + ".response", Message: "is required for a request"}
	}
	if s.Response.Status < 100 || s.Response.Status > 599 {
		return &ValidationError{Field: field + ".response.status", Message: fmt.Sprintf("invalid status code %d", s.Response.Status)}
	}
	return nil
}
