package result

import (
	"fmt"
	"strings"
)

// Named is a result recorded under a name, typically a scenario name.
type Named struct {
	Name   string `json:"name"`
	Result Result `json:"-"`
}

// Results aggregates results across a batch of scenarios. Unlike a single
// check, which stops at its first failure, a batch keeps every result.
type Results struct {
	entries []Named
}

// Add records r under name.
func (rs *Results) Add(name string, r Result) {
	rs.entries = append(rs.entries, Named{Name: name, Result: r})
}

// Merge appends all entries of other.
func (rs *Results) Merge(other *Results) {
	if other == nil {
		return
	}
	rs.entries = append(rs.entries, other.entries...)
}

// Entries returns every recorded result in order.
func (rs *Results) Entries() []Named {
	return append([]Named(nil), rs.entries...)
}

// Failures returns the failed entries in order.
func (rs *Results) Failures() []Named {
	var out []Named
	for _, e := range rs.entries {
		if e.Result.IsFailure() {
			out = append(out, e)
		}
	}
	return out
}

// Success reports whether no entry failed.
func (rs *Results) Success() bool {
	return rs.FailureCount() == 0
}

// FailureCount returns the number of failed entries.
func (rs *Results) FailureCount() int {
	n := 0
	for _, e := range rs.entries {
		if e.Result.IsFailure() {
			n++
		}
	}
	return n
}

// SuccessCount returns the number of successful entries.
func (rs *Results) SuccessCount() int {
	return len(rs.entries) - rs.FailureCount()
}

// Report renders every failure followed by a summary line.
func (rs *Results) Report() string {
	var b strings.Builder
	for _, f := range rs.Failures() {
		fmt.Fprintf(&b, "In scenario %q\n%s\n\n", f.Name, f.Result.Report())
	}
	fmt.Fprintf(&b, "Tests run: %d, Passed: %d, Failed: %d", len(rs.entries), rs.SuccessCount(), rs.FailureCount())
	return b.String()
}
