package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersJSON = `{
  "name": "orders",
  "version": "2.0.0",
  "types": {
    "Item": {"name": "(string)", "qty": "(number)"}
  },
  "scenarios": [
    {
      "name": "list items",
      "request": {"method": "GET", "path": "/items"},
      "response": {"status": 200, "body": ["(Item)"]}
    }
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile_ValidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.yaml", ordersYAML)

	doc, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "orders", doc.Name)
	assert.Equal(t, "1.2.0", doc.Version)
	assert.Len(t, doc.Scenarios, 3)
	assert.Equal(t, "orders", doc.Scenarios[2].Kafka.Target)
}

func TestLoadFromFile_ValidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.json", ordersJSON)

	doc, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "orders", doc.Name)
	require.Len(t, doc.Scenarios, 1)
	assert.Equal(t, 200, doc.Scenarios[0].Response.Status)

	c, err := Compile(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"(Item)"}, c.Registry.Names())
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want error
	}{
		{
			name: "not found",
			path: filepath.Join(dir, "missing.yaml"),
			want: ErrFileNotFound,
		},
		{
			name: "empty",
			path: writeFile(t, dir, "empty.yaml", "  \n"),
			want: ErrEmptyFile,
		},
		{
			name: "invalid yaml",
			path: writeFile(t, dir, "bad.yaml", "name: [unclosed"),
			want: ErrInvalidYAML,
		},
		{
			name: "invalid json",
			path: writeFile(t, dir, "bad.json", "{ invalid json }"),
			want: ErrInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := LoadFromFile(tt.path)
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadFromFile_Directory(t *testing.T) {
	doc, err := LoadFromFile(t.TempDir())
	assert.Nil(t, doc)
	assert.ErrorContains(t, err, "is a directory")
}

func TestLoadFromFile_ValidationFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "noscenarios.yaml", "name: empty\n")

	_, err := LoadFromFile(path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "scenarios", verr.Field)
}

func TestLoadGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.yaml", ordersYAML)
	writeFile(t, dir, "nested/deeper/items.json", ordersJSON)
	writeFile(t, dir, "notes.txt", "not a contract")

	t.Run("flat", func(t *testing.T) {
		docs, err := LoadGlob(filepath.Join(dir, "*.yaml"))
		require.NoError(t, err)
		assert.Len(t, docs, 1)
		assert.Contains(t, docs, filepath.Join(dir, "orders.yaml"))
	})

	t.Run("recursive", func(t *testing.T) {
		docs, err := LoadGlob(filepath.Join(dir, "**", "*.json"))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "orders", docs[filepath.Join(dir, "nested", "deeper", "items.json")].Name)
	})

	t.Run("no matches", func(t *testing.T) {
		_, err := LoadGlob(filepath.Join(dir, "*.yml"))
		assert.ErrorIs(t, err, ErrNoMatches)
	})

	t.Run("invalid file", func(t *testing.T) {
		_, err := LoadGlob(filepath.Join(dir, "*.txt"))
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})
}

func TestToYAML_RoundTrip(t *testing.T) {
	doc, err := ParseYAML([]byte(ordersYAML))
	require.NoError(t, err)

	data, err := ToYAML(doc)
	require.NoError(t, err)

	again, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Name, again.Name)
	assert.Len(t, again.Scenarios, len(doc.Scenarios))

	c, err := Compile(again, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"(Item)", "(Order)"}, c.Registry.Names())

	_, err = ToYAML(nil)
	assert.Error(t, err)
}
