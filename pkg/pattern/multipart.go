package pattern

import (
	"fmt"
	"strings"

	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// MultiPartFormData is a pattern for one part of a multipart/form-data body.
type MultiPartFormData interface {
	PartName() string
	Matches(v value.MultiPartFormData, r *Resolver) result.Result
	Generate(r *Resolver) (value.MultiPartFormData, error)
	NewBasedOn(row Row, r *Resolver) ([]MultiPartFormData, error)
	Encompasses(other MultiPartFormData, thisR, otherR *Resolver, stack TypeStack) result.Result
}

// MultiPartContent is a form field whose content matches Content.
type MultiPartContent struct {
	Name    string
	Content Pattern
}

func (m MultiPartContent) PartName() string { return m.Name }

func (m MultiPartContent) Matches(v value.MultiPartFormData, r *Resolver) result.Result {
	part, ok := v.(value.MultiPartContent)
	if !ok {
		return result.Failuref("The contract expected content in part %s, but got a file", m.Name)
	}
	if part.Name != m.Name {
		return result.Failuref("The contract expected part name to be %s, but got %s", m.Name, part.Name).BreadCrumb("name")
	}

	content := part.Content
	if s, ok := content.(value.String); ok {
		parsed, err := m.Content.Parse(string(s), r)
		if err != nil {
			return result.Failuref("Expected %s, got %s", m.Content.TypeName(), describe(content)).BreadCrumb("content")
		}
		content = parsed
	}
	return m.Content.Matches(content, r).BreadCrumb("content")
}

func (m MultiPartContent) Generate(r *Resolver) (value.MultiPartFormData, error) {
	v, err := m.Content.Generate(r)
	if err != nil {
		return nil, err
	}
	return value.MultiPartContent{Name: m.Name, Content: v}, nil
}

func (m MultiPartContent) NewBasedOn(row Row, r *Resolver) ([]MultiPartFormData, error) {
	var variants []Pattern
	var err error
	if row.Contains(m.Name) {
		variants, err = rowValueBasedOn(m.Content, m.Name, row, r)
	} else {
		variants, err = m.Content.NewBasedOn(row, r)
	}
	if err != nil {
		return nil, err
	}
	out := make([]MultiPartFormData, len(variants))
	for i, p := range variants {
		out[i] = MultiPartContent{Name: m.Name, Content: p}
	}
	return out, nil
}

func (m MultiPartContent) Encompasses(other MultiPartFormData, thisR, otherR *Resolver, stack TypeStack) result.Result {
	o, ok := other.(MultiPartContent)
	if !ok {
		return result.Failuref("Expected content part %s, got a file part", m.Name)
	}
	if o.Name != m.Name {
		return result.Failuref("Expected part name %s, got %s", m.Name, o.Name).BreadCrumb("name")
	}
	return m.Content.Encompasses(o.Content, thisR, otherR, stack).BreadCrumb("content")
}

// MultiPartFile is a file upload part. Empty ContentType and
// ContentEncoding accept anything.
type MultiPartFile struct {
	Name            string
	Filename        string
	ContentType     string
	ContentEncoding string
}

func (m MultiPartFile) PartName() string { return m.Name }

func (m MultiPartFile) Matches(v value.MultiPartFormData, _ *Resolver) result.Result {
	part, ok := v.(value.MultiPartFile)
	if !ok {
		return result.Failuref("The contract expected a file in part %s, but got content", m.Name)
	}
	if part.Name != m.Name {
		return result.Failuref("The contract expected part name to be %s, but got %s", m.Name, part.Name).BreadCrumb("name")
	}
	if want, got := trimAt(m.Filename), trimAt(part.Filename); want != got {
		return result.Failuref("The contract expected filename %s, but got %s", want, got).BreadCrumb("filename")
	}
	if m.ContentType != part.ContentType {
		return result.Failuref("The contract expected %s, but got %s",
			partHeader("content type", m.ContentType), partHeader("content type", part.ContentType)).BreadCrumb("contentType")
	}
	if m.ContentEncoding != part.ContentEncoding {
		return result.Failuref("The contract expected %s, but got %s",
			partHeader("content encoding", m.ContentEncoding), partHeader("content encoding", part.ContentEncoding)).BreadCrumb("contentEncoding")
	}
	return result.Success()
}

// partHeader describes an optional part header for failure messages.
func partHeader(name, v string) string {
	if v == "" {
		return "no " + name
	}
	return name + " " + v
}

func (m MultiPartFile) Generate(_ *Resolver) (value.MultiPartFormData, error) {
	return value.MultiPartFile{
		Name:            m.Name,
		Filename:        trimAt(m.Filename),
		ContentType:     m.ContentType,
		ContentEncoding: m.ContentEncoding,
	}, nil
}

// NewBasedOn takes the filename from the row column named after the part.
func (m MultiPartFile) NewBasedOn(row Row, _ *Resolver) ([]MultiPartFormData, error) {
	if row.Contains(m.Name) {
		m.Filename = row.Get(m.Name)
	}
	return []MultiPartFormData{m}, nil
}

func (m MultiPartFile) Encompasses(other MultiPartFormData, _ *Resolver, _ *Resolver, _ TypeStack) result.Result {
	o, ok := other.(MultiPartFile)
	if !ok {
		return result.Failuref("Expected file part %s, got a content part", m.Name)
	}
	return m.Matches(value.MultiPartFile{
		Name:            o.Name,
		Filename:        o.Filename,
		ContentType:     o.ContentType,
		ContentEncoding: o.ContentEncoding,
	}, nil)
}

// MatchParts matches a multipart body against part patterns by name. Every
// pattern must find its part and no part may be left over.
func MatchParts(patterns []MultiPartFormData, parts []value.MultiPartFormData, r *Resolver) result.Result {
	byName := make(map[string]value.MultiPartFormData, len(parts))
	for _, p := range parts {
		byName[p.PartName()] = p
	}
	for _, p := range patterns {
		part, ok := byName[p.PartName()]
		if !ok {
			return result.Failuref("Expected part named %s was missing", p.PartName()).BreadCrumb(p.PartName())
		}
		if res := p.Matches(part, r); res.IsFailure() {
			return res.BreadCrumb(p.PartName())
		}
		delete(byName, p.PartName())
	}
	for _, part := range parts {
		if _, left := byName[part.PartName()]; left {
			return result.Failuref("Part named %s was unexpected", part.PartName()).BreadCrumb(part.PartName())
		}
	}
	return result.Success()
}

// PartsEncompass reports whether every part this requires is present in
// other with a compatible pattern.
func PartsEncompass(this, other []MultiPartFormData, thisR, otherR *Resolver) result.Result {
	for _, p := range this {
		var match MultiPartFormData
		for _, o := range other {
			if o.PartName() == p.PartName() {
				match = o
				break
			}
		}
		if match == nil {
			return result.Failuref("Expected part named %s was missing", p.PartName()).BreadCrumb(p.PartName())
		}
		if res := p.Encompasses(match, thisR, otherR, TypeStack{}); res.IsFailure() {
			return res.BreadCrumb(p.PartName())
		}
	}
	for _, o := range other {
		found := false
		for _, p := range this {
			if p.PartName() == o.PartName() {
				found = true
				break
			}
		}
		if !found {
			return result.Failuref("Part named %s was unexpected", o.PartName()).BreadCrumb(o.PartName())
		}
	}
	return result.Success()
}

func trimAt(filename string) string {
	return strings.TrimPrefix(filename, "@")
}

func (m MultiPartFile) String() string {
	return fmt.Sprintf("%s=@%s", m.Name, trimAt(m.Filename))
}
