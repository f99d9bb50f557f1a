package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/contractd/pkg/value"
)

func TestMultiPartFile_Matches(t *testing.T) {
	r := NewResolver(nil)
	p := MultiPartFile{Name: "file", Filename: "@data.txt", ContentType: "text/plain"}

	ok := p.Matches(value.MultiPartFile{Name: "file", Filename: "data.txt", ContentType: "text/plain"}, r)
	assert.True(t, ok.IsSuccess())

	tests := []struct {
		name string
		part value.MultiPartFormData
		path string
	}{
		{"filename", value.MultiPartFile{Name: "file", Filename: "other.txt", ContentType: "text/plain"}, "filename"},
		{"part name", value.MultiPartFile{Name: "upload", Filename: "data.txt"}, "name"},
		{"content type", value.MultiPartFile{Name: "file", Filename: "data.txt", ContentType: "image/png"}, "contentType"},
		{"content instead of file", value.MultiPartContent{Name: "file", Content: value.String("x")}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := p.Matches(tc.part, r)
			require.True(t, res.IsFailure())
			assert.Equal(t, tc.path, res.PathString())
		})
	}
}

func TestMultiPartFile_ContentEncoding(t *testing.T) {
	p := MultiPartFile{Name: "file", Filename: "a.gz", ContentEncoding: "gzip"}

	res := p.Matches(value.MultiPartFile{Name: "file", Filename: "a.gz", ContentEncoding: "br"}, NewResolver(nil))
	require.True(t, res.IsFailure())
	assert.Equal(t, "contentEncoding", res.PathString())
	assert.Equal(t, "The contract expected content encoding gzip, but got content encoding br", res.Message())
}

func TestMultiPartFile_AbsentHeadersMatchExactly(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name    string
		pattern MultiPartFile
		part    value.MultiPartFile
		path    string
		message string
	}{
		{
			name:    "undeclared content type",
			pattern: MultiPartFile{Name: "file", Filename: "a.png"},
			part:    value.MultiPartFile{Name: "file", Filename: "a.png", ContentType: "image/png"},
			path:    "contentType",
			message: "The contract expected no content type, but got content type image/png",
		},
		{
			name:    "missing content type",
			pattern: MultiPartFile{Name: "file", Filename: "a.png", ContentType: "image/png"},
			part:    value.MultiPartFile{Name: "file", Filename: "a.png"},
			path:    "contentType",
			message: "The contract expected content type image/png, but got no content type",
		},
		{
			name:    "undeclared content encoding",
			pattern: MultiPartFile{Name: "file", Filename: "a.gz"},
			part:    value.MultiPartFile{Name: "file", Filename: "a.gz", ContentEncoding: "gzip"},
			path:    "contentEncoding",
			message: "The contract expected no content encoding, but got content encoding gzip",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.pattern.Matches(tc.part, r)
			require.True(t, res.IsFailure())
			assert.Equal(t, tc.path, res.PathString())
			assert.Equal(t, tc.message, res.Message())
		})
	}

	bare := MultiPartFile{Name: "file", Filename: "a.txt"}
	assert.True(t, bare.Matches(value.MultiPartFile{Name: "file", Filename: "a.txt"}, r).IsSuccess())
}

func TestMultiPartContent_ParsesText(t *testing.T) {
	r := NewResolver(nil)
	p := MultiPartContent{Name: "count", Content: Number{}}

	assert.True(t, p.Matches(value.MultiPartContent{Name: "count", Content: value.String("12")}, r).IsSuccess())

	res := p.Matches(value.MultiPartContent{Name: "count", Content: value.String("twelve")}, r)
	require.True(t, res.IsFailure())
	assert.Equal(t, "content", res.PathString())
}

func TestMultiPart_NewBasedOnAndGenerate(t *testing.T) {
	r := NewResolver(nil)
	row := RowOf(map[string]string{"count": "3", "file": "@report.csv"})

	contents, err := MultiPartContent{Name: "count", Content: Number{}}.NewBasedOn(row, r)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	part, err := contents[0].Generate(r)
	require.NoError(t, err)
	assert.Equal(t, value.MultiPartContent{Name: "count", Content: value.Number(3)}, part)

	files, err := MultiPartFile{Name: "file", Filename: "@data.txt"}.NewBasedOn(row, r)
	require.NoError(t, err)
	part, err = files[0].Generate(r)
	require.NoError(t, err)
	assert.Equal(t, "report.csv", part.(value.MultiPartFile).Filename)
}

func TestMatchParts(t *testing.T) {
	r := NewResolver(nil)
	patterns := []MultiPartFormData{
		MultiPartContent{Name: "title", Content: String{}},
		MultiPartFile{Name: "file", Filename: "@data.txt"},
	}

	parts := []value.MultiPartFormData{
		value.MultiPartFile{Name: "file", Filename: "data.txt"},
		value.MultiPartContent{Name: "title", Content: value.String("report")},
	}
	assert.True(t, MatchParts(patterns, parts, r).IsSuccess())

	res := MatchParts(patterns, parts[:1], r)
	require.True(t, res.IsFailure())
	assert.Equal(t, "title", res.PathString())

	extra := append(parts, value.MultiPartContent{Name: "extra", Content: value.String("x")})
	res = MatchParts(patterns, extra, r)
	require.True(t, res.IsFailure())
	assert.Equal(t, "extra", res.PathString())

	wrong := []value.MultiPartFormData{parts[1], value.MultiPartFile{Name: "file", Filename: "other.txt"}}
	res = MatchParts(patterns, wrong, r)
	require.True(t, res.IsFailure())
	assert.Equal(t, "file.filename", res.PathString())
}

func TestPartsEncompass(t *testing.T) {
	r := NewResolver(nil)
	old := []MultiPartFormData{MultiPartContent{Name: "count", Content: String{}}}

	assert.True(t, PartsEncompass(old, []MultiPartFormData{MultiPartContent{Name: "count", Content: Number{}}}, r, r).IsSuccess())

	res := PartsEncompass([]MultiPartFormData{MultiPartContent{Name: "count", Content: Number{}}},
		[]MultiPartFormData{MultiPartContent{Name: "count", Content: String{}}}, r, r)
	require.True(t, res.IsFailure())
	assert.Equal(t, "count.content", res.PathString())

	res = PartsEncompass(old, nil, r, r)
	require.True(t, res.IsFailure())
	assert.Equal(t, "count", res.PathString())
}

func TestKafkaMessage_Matches(t *testing.T) {
	r := NewResolver(nil)
	p := NewKafkaMessage("orders", String{}, NewObject(ObjectField("id", Number{})))

	ok := p.Matches(value.Message{Target: "orders", Key: value.String("k1"), Value: value.String(`{"id": 1}`)}, r)
	assert.True(t, ok.IsSuccess(), ok.Report())

	tests := []struct {
		name string
		msg  value.Message
		path string
	}{
		{"target", value.Message{Target: "payments", Key: value.String("k1"), Value: value.String(`{"id": 1}`)}, "KAFKA-MESSAGE.TARGET"},
		{"key", value.Message{Target: "orders", Key: value.Number(4), Value: value.String(`{"id": 1}`)}, "KAFKA-MESSAGE.KEY"},
		{"value", value.Message{Target: "orders", Key: value.String("k1"), Value: value.String(`{"id": "x"}`)}, "KAFKA-MESSAGE.VALUE.id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := p.Matches(tc.msg, r)
			require.True(t, res.IsFailure())
			assert.Equal(t, tc.path, res.PathString())
		})
	}
}

func TestKafkaMessage_Encompasses(t *testing.T) {
	r := NewResolver(nil)
	older := NewKafkaMessage("orders", nil, NewObject(ObjectField("id", Number{})))

	same := NewKafkaMessage("orders", nil, NewObject(ObjectField("id", Number{})))
	assert.True(t, older.Encompasses(same, r, r).IsSuccess())

	moved := NewKafkaMessage("payments", nil, NewObject(ObjectField("id", Number{})))
	assert.Equal(t, "KAFKA-MESSAGE.TARGET", older.Encompasses(moved, r, r).PathString())

	grown := NewKafkaMessage("orders", nil, NewObject(ObjectField("id", Number{}), ObjectField("total", Number{})))
	assert.Equal(t, "KAFKA-MESSAGE.VALUE.total", older.Encompasses(grown, r, r).PathString())
}

func TestKafkaMessage_GenerateWithoutKey(t *testing.T) {
	r := NewResolver(nil)
	p := NewKafkaMessage("orders", nil, nil)

	msg, err := p.Generate(r)
	require.NoError(t, err)
	assert.Nil(t, msg.Key)
	assert.Equal(t, "orders", msg.Target)
	assert.True(t, p.Matches(msg, r).IsSuccess())
}

func TestKafkaMessage_NewBasedOn(t *testing.T) {
	p := NewKafkaMessage("orders", nil, LookupRow{Pattern: Number{}, Key: "amount"})

	variants, err := p.NewBasedOn(RowOf(map[string]string{"amount": "42"}), NewResolver(nil))
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, ExactValue{Value: value.Number(42)}, variants[0].Value)
}
