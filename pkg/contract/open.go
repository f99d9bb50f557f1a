package contract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Open compiles the contract at path. OpenAPI documents, recognized by a
// top-level "openapi" key, are imported; anything else is read as a
// contract document.
func Open(ctx context.Context, path string, log *slog.Logger) (*Compiled, error) {
	if isOpenAPI(path) {
		doc, err := LoadOpenAPI(ctx, path)
		if err != nil {
			return nil, err
		}
		return FromOpenAPI(doc, log)
	}

	doc, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(doc, log)
}

// isOpenAPI peeks at the top-level keys of a YAML or JSON file.
func isOpenAPI(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var head struct {
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return false
	}
	return head.OpenAPI != ""
}

// OpenAll compiles every contract matched by a doublestar glob, keyed by
// path.
func OpenAll(ctx context.Context, pattern string, log *slog.Logger) (map[string]*Compiled, error) {
	paths, err := expandGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
	}
	out := make(map[string]*Compiled, len(paths))
	for _, p := range paths {
		c, err := Open(ctx, p, log)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out[p] = c
	}
	return out, nil
}
