package stub

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/value"
)

// ErrInvalidStub is returned for a stub document that cannot be read.
var ErrInvalidStub = errors.New("invalid stub")

// File is the YAML form of a stub. Bodies, keys and values are plain YAML
// data.
type File struct {
	ID       string        `yaml:"id,omitempty" json:"id,omitempty"`
	Contract string        `yaml:"contract,omitempty" json:"contract,omitempty"`
	Scenario string        `yaml:"scenario" json:"scenario"`
	Request  *RequestFile  `yaml:"request,omitempty" json:"request,omitempty"`
	Response *ResponseFile `yaml:"response,omitempty" json:"response,omitempty"`
	Message  *MessageFile  `yaml:"message,omitempty" json:"message,omitempty"`
}

// RequestFile is the YAML form of a request.
type RequestFile struct {
	Method    string            `yaml:"method" json:"method"`
	Path      string            `yaml:"path" json:"path"`
	Headers   map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Query     map[string]string `yaml:"query,omitempty" json:"query,omitempty"`
	Body      any               `yaml:"body,omitempty" json:"body,omitempty"`
	Multipart []PartFile        `yaml:"multipart,omitempty" json:"multipart,omitempty"`
}

// PartFile is one multipart part: inline content or a file.
type PartFile struct {
	Name            string `yaml:"name" json:"name"`
	Content         any    `yaml:"content,omitempty" json:"content,omitempty"`
	Filename        string `yaml:"filename,omitempty" json:"filename,omitempty"`
	ContentType     string `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	ContentEncoding string `yaml:"contentEncoding,omitempty" json:"contentEncoding,omitempty"`
}

// ResponseFile is the YAML form of a response.
type ResponseFile struct {
	Status  int               `yaml:"status" json:"status"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body    any               `yaml:"body,omitempty" json:"body,omitempty"`
}

// MessageFile is the YAML form of a message. A missing key means the
// message has no key.
type MessageFile struct {
	Target string `yaml:"target" json:"target"`
	Key    any    `yaml:"key,omitempty" json:"key,omitempty"`
	Value  any    `yaml:"value" json:"value"`
}

// File converts the stub to its YAML form.
func (s *Stub) File() *File {
	f := &File{ID: s.ID, Contract: s.Contract, Scenario: s.Scenario}
	if s.Request != nil {
		f.Request = &RequestFile{
			Method:  s.Request.Method,
			Path:    s.Request.Path,
			Headers: s.Request.Headers,
			Query:   s.Request.Query,
			Body:    native(s.Request.Body),
		}
		for _, part := range s.Request.Multipart {
			f.Request.Multipart = append(f.Request.Multipart, partFile(part))
		}
	}
	if s.Response != nil {
		f.Response = &ResponseFile{
			Status:  s.Response.Status,
			Headers: s.Response.Headers,
			Body:    native(s.Response.Body),
		}
	}
	if s.Message != nil {
		f.Message = &MessageFile{
			Target: s.Message.Target,
			Key:    native(s.Message.Key),
			Value:  native(s.Message.Value),
		}
	}
	return f
}

// Stub converts the YAML form into an explicit stub.
func (f *File) Stub() (*Stub, error) {
	if f.Scenario == "" {
		return nil, fmt.Errorf("%w: scenario is required", ErrInvalidStub)
	}
	if (f.Message != nil) == (f.Request != nil) {
		return nil, fmt.Errorf("%w: stub for %q needs exactly one of request or message", ErrInvalidStub, f.Scenario)
	}

	s := &Stub{ID: f.ID, Contract: f.Contract, Scenario: f.Scenario, Priority: PriorityExplicit}
	if f.Message != nil {
		msg := value.Message{Target: f.Message.Target, Value: value.FromNative(f.Message.Value)}
		if f.Message.Key != nil {
			msg.Key = value.FromNative(f.Message.Key)
		}
		s.Message = &msg
		return s, nil
	}

	if f.Response == nil {
		return nil, fmt.Errorf("%w: stub for %q has a request but no response", ErrInvalidStub, f.Scenario)
	}
	s.Request = &contract.RequestValue{
		Method:  f.Request.Method,
		Path:    f.Request.Path,
		Headers: lowerKeys(f.Request.Headers),
		Query:   f.Request.Query,
		Body:    bodyValue(f.Request.Body),
	}
	for _, p := range f.Request.Multipart {
		if p.Filename != "" {
			s.Request.Multipart = append(s.Request.Multipart, value.MultiPartFile{
				Name:            p.Name,
				Filename:        p.Filename,
				ContentType:     p.ContentType,
				ContentEncoding: p.ContentEncoding,
			})
			continue
		}
		s.Request.Multipart = append(s.Request.Multipart, value.MultiPartContent{Name: p.Name, Content: bodyValue(p.Content)})
	}
	s.Response = &contract.ResponseValue{
		Status:  f.Response.Status,
		Headers: lowerKeys(f.Response.Headers),
		Body:    bodyValue(f.Response.Body),
	}
	return s, nil
}

// Encode writes stubs as a stream of YAML documents.
func Encode(w io.Writer, stubs []*Stub) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, s := range stubs {
		if err := enc.Encode(s.File()); err != nil {
			return fmt.Errorf("failed to encode stub %s: %w", s.ID, err)
		}
	}
	return enc.Close()
}

// Decode reads a stream of YAML stub documents.
func Decode(data []byte) ([]*Stub, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var stubs []*Stub
	for {
		var f File
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return stubs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStub, err)
		}
		s, err := f.Stub()
		if err != nil {
			return nil, err
		}
		stubs = append(stubs, s)
	}
}

// LoadFile reads stubs from a YAML file.
func LoadFile(path string) ([]*Stub, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stub file %s: %w", path, err)
	}
	return Decode(data)
}

func native(v value.Value) any {
	if value.IsEmpty(v) {
		return nil
	}
	return v.Native()
}

func partFile(part value.MultiPartFormData) PartFile {
	switch p := part.(type) {
	case value.MultiPartFile:
		return PartFile{Name: p.Name, Filename: p.Filename, ContentType: p.ContentType, ContentEncoding: p.ContentEncoding}
	case value.MultiPartContent:
		return PartFile{Name: p.Name, Content: native(p.Content)}
	}
	return PartFile{Name: part.PartName()}
}

// bodyValue reads a YAML body. A missing body is empty content.
func bodyValue(v any) value.Value {
	if v == nil {
		return value.EmptyString
	}
	return value.FromNative(v)
}

func lowerKeys(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
