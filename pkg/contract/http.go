package contract

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/getmockd/contractd/pkg/pattern"
	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// Breadcrumbs of HTTP results.
const (
	CrumbRequest   = "REQUEST"
	CrumbResponse  = "RESPONSE"
	CrumbMethod    = "METHOD"
	CrumbPath      = "PATH"
	CrumbQuery     = "QUERY"
	CrumbHeaders   = "HEADERS"
	CrumbBody      = "BODY"
	CrumbMultipart = "MULTIPART"
	CrumbStatus    = "STATUS"
)

// maxMultipartMemory bounds the in-memory part of a parsed multipart body.
const maxMultipartMemory = 32 << 20

// HTTPRequest is the request side of a scenario. A request has either a
// Body or Multipart parts.
type HTTPRequest struct {
	Method    string
	Path      []pattern.Pattern
	Headers   *pattern.Object
	Query     *pattern.Object
	Body      pattern.Pattern
	Multipart []pattern.MultiPartFormData
}

// HTTPResponse is the response side of a scenario.
type HTTPResponse struct {
	Status  int
	Headers *pattern.Object
	Body    pattern.Pattern
}

// RequestValue is a concrete HTTP request.
type RequestValue struct {
	Method    string                    `json:"method"`
	Path      string                    `json:"path"`
	Headers   map[string]string         `json:"headers,omitempty"`
	Query     map[string]string         `json:"query,omitempty"`
	Body      value.Value               `json:"-"`
	Multipart []value.MultiPartFormData `json:"-"`
}

// ResponseValue is a concrete HTTP response.
type ResponseValue struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    value.Value       `json:"-"`
}

// PathString renders the path template, showing typed segments as tokens.
func (h *HTTPRequest) PathString() string {
	var b strings.Builder
	for _, seg := range h.Path {
		b.WriteByte('/')
		if ev, ok := seg.(pattern.ExactValue); ok {
			b.WriteString(ev.Value.String())
			continue
		}
		b.WriteString("(" + seg.TypeName() + ")")
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// Matches checks a concrete request. Headers the contract does not name
// are ignored.
func (h *HTTPRequest) Matches(req *RequestValue, r *pattern.Resolver) result.Result {
	return h.matches(req, r).BreadCrumb(CrumbRequest)
}

func (h *HTTPRequest) matches(req *RequestValue, r *pattern.Resolver) result.Result {
	for _, check := range h.Checks(req, r) {
		if check.Result.IsFailure() {
			return check.Result
		}
	}
	return result.Success()
}

// Checks matches every part of req without stopping at the first failure.
// Results carry their part's breadcrumb but not REQUEST.
func (h *HTTPRequest) Checks(req *RequestValue, r *pattern.Resolver) []pattern.FieldCheck {
	method := result.Success()
	if !strings.EqualFold(h.Method, req.Method) {
		method = result.Failuref("Expected method %s, got %s", h.Method, req.Method).BreadCrumb(CrumbMethod)
	}
	checks := []pattern.FieldCheck{
		{Field: CrumbMethod, Result: method},
		{Field: CrumbPath, Result: matchPath(h.Path, req.Path, r).BreadCrumb(CrumbPath)},
		{Field: CrumbQuery, Result: matchText(h.Query, req.Query, false, r).BreadCrumb(CrumbQuery)},
		{Field: CrumbHeaders, Result: matchText(h.Headers, req.Headers, true, r).BreadCrumb(CrumbHeaders)},
	}
	if len(h.Multipart) > 0 {
		return append(checks, pattern.FieldCheck{
			Field:  CrumbMultipart,
			Result: pattern.MatchParts(h.Multipart, req.Multipart, r).BreadCrumb(CrumbMultipart),
		})
	}
	return append(checks, pattern.FieldCheck{
		Field:  CrumbBody,
		Result: h.Body.Matches(parseText(h.Body, req.Body, r), r).BreadCrumb(CrumbBody),
	})
}

// Generate produces a request the pattern accepts.
func (h *HTTPRequest) Generate(r *pattern.Resolver) (*RequestValue, error) {
	req := &RequestValue{Method: h.Method}

	segments := make([]string, len(h.Path))
	for i, seg := range h.Path {
		v, err := seg.Generate(r)
		if err != nil {
			return nil, fmt.Errorf("path segment %d: %w", i, err)
		}
		segments[i] = v.String()
	}
	req.Path = "/" + strings.Join(segments, "/")

	var err error
	if req.Query, err = generateText(h.Query, r); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if req.Headers, err = generateText(h.Headers, r); err != nil {
		return nil, fmt.Errorf("headers: %w", err)
	}
	if len(h.Multipart) > 0 {
		for _, part := range h.Multipart {
			v, err := part.Generate(r)
			if err != nil {
				return nil, fmt.Errorf("multipart %s: %w", part.PartName(), err)
			}
			req.Multipart = append(req.Multipart, v)
		}
		return req, nil
	}
	if req.Body, err = h.Body.Generate(r); err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	return req, nil
}

// NewBasedOn specializes every part of the request with row and returns the
// cross product of the variants.
func (h *HTTPRequest) NewBasedOn(row pattern.Row, r *pattern.Resolver) ([]*HTTPRequest, error) {
	segmentVariants := make([][]pattern.Pattern, len(h.Path))
	for i, seg := range h.Path {
		vs, err := seg.NewBasedOn(row, r)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		segmentVariants[i] = vs
	}
	queries, err := objectVariants(h.Query, row, r)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	headers, err := objectVariants(h.Headers, row, r)
	if err != nil {
		return nil, fmt.Errorf("headers: %w", err)
	}
	bodies, err := h.Body.NewBasedOn(row, r)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	partVariants := make([][]pattern.MultiPartFormData, len(h.Multipart))
	for i, part := range h.Multipart {
		vs, err := part.NewBasedOn(row, r)
		if err != nil {
			return nil, fmt.Errorf("multipart %s: %w", part.PartName(), err)
		}
		partVariants[i] = vs
	}

	var out []*HTTPRequest
	for _, path := range product(segmentVariants) {
		for _, q := range queries {
			for _, hd := range headers {
				for _, body := range bodies {
					for _, parts := range product(partVariants) {
						out = append(out, &HTTPRequest{
							Method:    h.Method,
							Path:      path,
							Headers:   hd,
							Query:     q,
							Body:      body,
							Multipart: parts,
						})
					}
				}
			}
		}
	}
	return out, nil
}

// Matches checks a concrete response. Headers the contract does not name
// are ignored.
func (h *HTTPResponse) Matches(resp *ResponseValue, r *pattern.Resolver) result.Result {
	return h.matches(resp, r).BreadCrumb(CrumbResponse)
}

func (h *HTTPResponse) matches(resp *ResponseValue, r *pattern.Resolver) result.Result {
	if resp.Status != h.Status {
		return result.Failuref("Expected status %d, got %d", h.Status, resp.Status).BreadCrumb(CrumbStatus)
	}
	if res := matchText(h.Headers, resp.Headers, true, r); res.IsFailure() {
		return res.BreadCrumb(CrumbHeaders)
	}
	return h.Body.Matches(parseText(h.Body, resp.Body, r), r).BreadCrumb(CrumbBody)
}

// Generate produces a response the pattern accepts.
func (h *HTTPResponse) Generate(r *pattern.Resolver) (*ResponseValue, error) {
	headers, err := generateText(h.Headers, r)
	if err != nil {
		return nil, fmt.Errorf("headers: %w", err)
	}
	body, err := h.Body.Generate(r)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	return &ResponseValue{Status: h.Status, Headers: headers, Body: body}, nil
}

// NewBasedOn specializes headers and body with row.
func (h *HTTPResponse) NewBasedOn(row pattern.Row, r *pattern.Resolver) ([]*HTTPResponse, error) {
	headers, err := objectVariants(h.Headers, row, r)
	if err != nil {
		return nil, fmt.Errorf("headers: %w", err)
	}
	bodies, err := h.Body.NewBasedOn(row, r)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	out := make([]*HTTPResponse, 0, len(headers)*len(bodies))
	for _, hd := range headers {
		for _, body := range bodies {
			out = append(out, &HTTPResponse{Status: h.Status, Headers: hd, Body: body})
		}
	}
	return out, nil
}

// RequestFromHTTP reads an *http.Request into a RequestValue. The body is
// consumed. Multipart form bodies become parts; other bodies are parsed
// with value.Parse.
func RequestFromHTTP(req *http.Request) (*RequestValue, error) {
	out := &RequestValue{
		Method:  req.Method,
		Path:    req.URL.Path,
		Headers: make(map[string]string, len(req.Header)),
		Query:   make(map[string]string),
	}
	for name, values := range req.Header {
		if len(values) > 0 {
			out.Headers[strings.ToLower(name)] = values[0]
		}
	}
	for name, values := range req.URL.Query() {
		if len(values) > 0 {
			out.Query[name] = values[0]
		}
	}

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, fmt.Errorf("failed to parse multipart body: %w", err)
		}
		out.Multipart = formParts(req)
		return out, nil
	}

	if req.Body == nil {
		out.Body = value.EmptyString
		return out, nil
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	out.Body = parseBody(data)
	return out, nil
}

func formParts(req *http.Request) []value.MultiPartFormData {
	var parts []value.MultiPartFormData
	names := make([]string, 0, len(req.MultipartForm.Value))
	for name := range req.MultipartForm.Value {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if vs := req.MultipartForm.Value[name]; len(vs) > 0 {
			parts = append(parts, value.MultiPartContent{Name: name, Content: value.String(vs[0])})
		}
	}

	names = names[:0]
	for name := range req.MultipartForm.File {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if fhs := req.MultipartForm.File[name]; len(fhs) > 0 {
			fh := fhs[0]
			parts = append(parts, value.MultiPartFile{
				Name:            name,
				Filename:        fh.Filename,
				ContentType:     fh.Header.Get("Content-Type"),
				ContentEncoding: fh.Header.Get("Content-Encoding"),
			})
		}
	}
	return parts
}

func parseBody(data []byte) value.Value {
	v, err := value.Parse(string(data))
	if err != nil {
		return value.String(data)
	}
	return v
}

func matchPath(segments []pattern.Pattern, path string, r *pattern.Resolver) result.Result {
	parts := splitPath(path)
	if len(parts) != len(segments) {
		return result.Failuref("Expected a path of %d segments, got %q", len(segments), path)
	}
	for i, seg := range segments {
		v, err := seg.Parse(parts[i], r)
		if err != nil {
			return result.Failuref("Expected %s, got %q", seg.TypeName(), parts[i]).BreadCrumb(strconv.Itoa(i))
		}
		if res := seg.Matches(v, r); res.IsFailure() {
			return res.BreadCrumb(strconv.Itoa(i))
		}
	}
	return result.Success()
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(strings.Trim(path, "/"), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// matchText matches textual entries against obj, reading each named entry
// with its field's grammar. Headers tolerate entries obj does not declare.
func matchText(obj *pattern.Object, entries map[string]string, header bool, r *pattern.Resolver) result.Result {
	v, res := textValue(obj, entries, header, r)
	if res.IsFailure() {
		return res
	}
	if header {
		r = r.With(pattern.WithTolerant(true))
	}
	return obj.Matches(v, r)
}

func textValue(obj *pattern.Object, entries map[string]string, header bool, r *pattern.Resolver) (value.Value, result.Result) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]value.Field, 0, len(keys))
	for _, k := range keys {
		text := entries[k]
		name := k
		if header {
			name = strings.ToLower(k)
		}
		f, ok := obj.Field(name)
		if !ok {
			fields = append(fields, value.Field{Key: name, Value: value.String(text)})
			continue
		}
		v, err := f.Pattern.Parse(text, r)
		if err != nil {
			return nil, result.Failuref("Expected %s, got %q", f.Pattern.TypeName(), text).BreadCrumb(name)
		}
		fields = append(fields, value.Field{Key: name, Value: v})
	}
	return value.NewObject(fields...), result.Success()
}

func generateText(obj *pattern.Object, r *pattern.Resolver) (map[string]string, error) {
	if obj == nil || len(obj.Fields) == 0 {
		return nil, nil
	}
	v, err := obj.Generate(r)
	if err != nil {
		return nil, err
	}
	generated := v.(*value.Object)
	out := make(map[string]string, generated.Len())
	for _, k := range generated.Keys() {
		fv, _ := generated.Get(k)
		out[k] = fv.String()
	}
	return out, nil
}

func objectVariants(obj *pattern.Object, row pattern.Row, r *pattern.Resolver) ([]*pattern.Object, error) {
	variants, err := obj.NewBasedOn(row, r)
	if err != nil {
		return nil, err
	}
	out := make([]*pattern.Object, len(variants))
	for i, v := range variants {
		out[i] = v.(*pattern.Object)
	}
	return out, nil
}

// parseText re-reads a textual body with p's grammar, since bodies arrive
// as raw text when the sender's content type is unknown.
func parseText(p pattern.Pattern, v value.Value, r *pattern.Resolver) value.Value {
	s, ok := v.(value.String)
	if !ok {
		return v
	}
	if parsed, err := p.Parse(string(s), r); err == nil {
		return parsed
	}
	return v
}

func product[T any](groups [][]T) [][]T {
	out := [][]T{nil}
	for _, g := range groups {
		next := make([][]T, 0, len(out)*len(g))
		for _, prefix := range out {
			for _, item := range g {
				next = append(next, append(slices.Clone(prefix), item))
			}
		}
		out = next
	}
	return out
}
