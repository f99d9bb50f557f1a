package value

import "fmt"

// MultiPartFormData is a single part of a multipart/form-data body: either
// MultiPartContent or MultiPartFile.
type MultiPartFormData interface {
	Value
	PartName() string
}

// MultiPartContent is an inline content part.
type MultiPartContent struct {
	Name    string
	Content Value
}

func (p MultiPartContent) PartName() string { return p.Name }

func (p MultiPartContent) String() string {
	return fmt.Sprintf("%s=%s", p.Name, quoted(p.Content))
}

func (MultiPartContent) TypeName() string { return TypeMultiPart }

func (p MultiPartContent) Native() any {
	return map[string]any{"name": p.Name, "content": p.Content.Native()}
}

func (p MultiPartContent) Equal(other Value) bool {
	o, ok := other.(MultiPartContent)
	return ok && o.Name == p.Name && o.Content.Equal(p.Content)
}

// MultiPartFile is a file part. ContentType and ContentEncoding are empty
// when not supplied.
type MultiPartFile struct {
	Name            string
	Filename        string
	ContentType     string
	ContentEncoding string
}

func (p MultiPartFile) PartName() string { return p.Name }

func (p MultiPartFile) String() string {
	s := fmt.Sprintf("%s=@%s", p.Name, trimAt(p.Filename))
	if p.ContentType != "" {
		s += ";type=" + p.ContentType
	}
	if p.ContentEncoding != "" {
		s += ";encoding=" + p.ContentEncoding
	}
	return s
}

func (MultiPartFile) TypeName() string { return TypeMultiPart }

func (p MultiPartFile) Native() any {
	out := map[string]any{"name": p.Name, "filename": p.Filename}
	if p.ContentType != "" {
		out["contentType"] = p.ContentType
	}
	if p.ContentEncoding != "" {
		out["contentEncoding"] = p.ContentEncoding
	}
	return out
}

func (p MultiPartFile) Equal(other Value) bool {
	o, ok := other.(MultiPartFile)
	return ok && o == p
}

func trimAt(filename string) string {
	if len(filename) > 0 && filename[0] == '@' {
		return filename[1:]
	}
	return filename
}
