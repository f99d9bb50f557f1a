package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Lookup resolves path against v and returns the value found there.
//
// The path may be a JSONPath expression ("$.items[2].name") or a breadcrumb
// path as reported by failed matches ("items[2].name"). Segments that cannot
// be resolved yield false.
func Lookup(v Value, path string) (Value, bool) {
	expr, err := PathExpr(path)
	if err != nil {
		return nil, false
	}
	results := expr.Get(v.Native())
	if len(results) == 0 {
		return nil, false
	}
	return FromNative(results[0]), true
}

// PathExpr compiles a JSONPath expression or breadcrumb path into a jp.Expr.
func PathExpr(path string) (jp.Expr, error) {
	if strings.HasPrefix(path, "$") {
		return jp.ParseString(path)
	}

	expr := jp.R()
	for _, segment := range SplitPath(path) {
		if strings.HasPrefix(segment, "[") && strings.HasSuffix(segment, "]") {
			index, err := strconv.Atoi(segment[1 : len(segment)-1])
			if err != nil {
				return nil, fmt.Errorf("invalid index segment %q", segment)
			}
			expr = expr.N(index)
			continue
		}
		expr = expr.C(segment)
	}
	return expr, nil
}

// SplitPath splits a breadcrumb path such as "items[2].name" into its
// segments: "items", "[2]", "name".
func SplitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(path, ".") {
		for part != "" {
			open := strings.Index(part, "[")
			switch {
			case open < 0:
				segments = append(segments, part)
				part = ""
			case open > 0:
				segments = append(segments, part[:open])
				part = part[open:]
			default:
				end := strings.Index(part, "]")
				if end < 0 {
					segments = append(segments, part)
					part = ""
					continue
				}
				segments = append(segments, part[:end+1])
				part = part[end+1:]
			}
		}
	}
	return segments
}
