// Package result provides the outcome type of matching and compatibility
// checks: a success, or a failure carrying a message and the breadcrumb path
// from the contract root to the offending field.
package result

import (
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	// KindMismatch is a value or shape mismatch.
	KindMismatch Kind = iota + 1

	// KindLength is a positional list comparison with differing lengths.
	KindLength

	// KindDefinition is a broken contract, such as an unresolvable type name.
	KindDefinition
)

func (k Kind) String() string {
	switch k {
	case KindMismatch:
		return "mismatch"
	case KindLength:
		return "length"
	case KindDefinition:
		return "definition"
	default:
		return "success"
	}
}

// Result is the immutable outcome of a check. The zero value is a success.
type Result struct {
	kind    Kind
	message string
	path    []string
}

// Success returns a successful result.
func Success() Result {
	return Result{}
}

// Failure returns a mismatch failure with message.
func Failure(message string) Result {
	return Result{kind: KindMismatch, message: message}
}

// Failuref returns a mismatch failure with a formatted message.
func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

// LengthMismatch returns a failure for lists of differing lengths. The
// message is kept verbatim.
func LengthMismatch(message string) Result {
	return Result{kind: KindLength, message: message}
}

// DefinitionFailure returns a failure caused by a broken contract.
func DefinitionFailure(message string) Result {
	return Result{kind: KindDefinition, message: message}
}

// IsSuccess reports whether r is a success.
func (r Result) IsSuccess() bool {
	return r.kind == 0
}

// IsFailure reports whether r is a failure.
func (r Result) IsFailure() bool {
	return r.kind != 0
}

// Kind returns the failure kind, or 0 on success.
func (r Result) Kind() Kind {
	return r.kind
}

// Message returns the failure message.
func (r Result) Message() string {
	return r.message
}

// BreadCrumb returns a copy of r with segment prepended to its path.
// It is a no-op on success and for an empty segment.
func (r Result) BreadCrumb(segment string) Result {
	if r.IsSuccess() || segment == "" {
		return r
	}
	path := make([]string, 0, len(r.path)+1)
	path = append(path, segment)
	path = append(path, r.path...)
	return Result{kind: r.kind, message: r.message, path: path}
}

// Path returns the breadcrumb segments from the root.
func (r Result) Path() []string {
	return append([]string(nil), r.path...)
}

// PathString renders the path, joining segments with "." except for
// bracketed index segments: "BODY.items[2].name".
func (r Result) PathString() string {
	return JoinPath(r.path)
}

// Report renders a failure for display to a contract author.
func (r Result) Report() string {
	if r.IsSuccess() {
		return ""
	}
	if len(r.path) == 0 {
		return r.message
	}
	return fmt.Sprintf(">> %s\n\n%s", r.PathString(), r.message)
}

func (r Result) String() string {
	if r.IsSuccess() {
		return "success"
	}
	if len(r.path) == 0 {
		return r.message
	}
	return r.PathString() + ": " + r.message
}

// JoinPath renders breadcrumb segments as a single path.
func JoinPath(segments []string) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 && !strings.HasPrefix(s, "[") {
			b.WriteByte('.')
		}
		b.WriteString(s)
	}
	return b.String()
}

// FirstFailure returns the first failure among results, or success.
func FirstFailure(results ...Result) Result {
	for _, r := range results {
		if r.IsFailure() {
			return r
		}
	}
	return Success()
}
