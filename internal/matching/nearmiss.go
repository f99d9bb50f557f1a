package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/pattern"
	"github.com/getmockd/contractd/pkg/result"
	"github.com/getmockd/contractd/pkg/value"
)

// DefaultTopN is the number of near misses kept when topN is not positive.
const DefaultTopN = 3

// FieldResult describes whether a single part of the incoming value matched.
type FieldResult struct {
	Field    string `json:"field"`
	Matched  bool   `json:"matched"`
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message,omitempty"`
	Actual   any    `json:"actual,omitempty"`
}

// NearMiss is a stub that partially matched an incoming value.
type NearMiss struct {
	StubID           string        `json:"stubId"`
	Scenario         string        `json:"scenario"`
	Score            int           `json:"score"`
	MaxPossibleScore int           `json:"maxPossibleScore"`
	MatchPercentage  int           `json:"matchPercentage"`
	Fields           []FieldResult `json:"fields"`
	Reason           string        `json:"reason"`
}

// Candidate is a stub offered for near-miss analysis. Exactly one of
// Request and Message is set. Resolver belongs to the stub's contract.
type Candidate struct {
	StubID   string
	Scenario string
	Request  *contract.HTTPRequest
	Message  *pattern.KafkaMessage
	Resolver *pattern.Resolver
}

// RequestBreakdown matches every part of req against p without
// short-circuiting.
func RequestBreakdown(p *contract.HTTPRequest, req *contract.RequestValue, r *pattern.Resolver) *NearMiss {
	checks := p.Checks(req, r)
	return breakdown(checks, func(path []string) any { return requestActual(req, path) })
}

// MessageBreakdown matches target, key and value of msg against p without
// short-circuiting.
func MessageBreakdown(p *pattern.KafkaMessage, msg value.Message, r *pattern.Resolver) *NearMiss {
	checks := p.Checks(msg, r)
	return breakdown(checks, func(path []string) any { return messageActual(msg, path) })
}

func breakdown(checks []pattern.FieldCheck, actual func(path []string) any) *NearMiss {
	nm := &NearMiss{}
	for _, check := range checks {
		maxScore := fieldScore(check.Field)
		fr := FieldResult{Field: check.Field, Matched: check.Result.IsSuccess(), MaxScore: maxScore}
		if fr.Matched {
			fr.Score = maxScore
		} else {
			fr.Path = check.Result.PathString()
			fr.Message = check.Result.Message()
			fr.Actual = actual(check.Result.Path())
		}
		nm.Fields = append(nm.Fields, fr)
		nm.Score += fr.Score
		nm.MaxPossibleScore += maxScore
	}
	if nm.MaxPossibleScore > 0 {
		nm.MatchPercentage = (nm.Score * 100) / nm.MaxPossibleScore
	}
	nm.Reason = GenerateReason(nm.Fields)
	return nm
}

// requestActual returns the part of req a failure path points at.
func requestActual(req *contract.RequestValue, path []string) any {
	if len(path) == 0 {
		return nil
	}
	switch path[0] {
	case contract.CrumbMethod:
		return req.Method
	case contract.CrumbPath:
		return req.Path
	case contract.CrumbQuery:
		return entry(req.Query, path[1:])
	case contract.CrumbHeaders:
		return entry(req.Headers, path[1:])
	case contract.CrumbMultipart:
		names := make([]string, len(req.Multipart))
		for i, part := range req.Multipart {
			names[i] = part.PartName()
		}
		return names
	case contract.CrumbBody:
		return lookup(req.Body, path[1:])
	}
	return nil
}

// messageActual returns the part of msg a failure path points at.
func messageActual(msg value.Message, path []string) any {
	if len(path) == 0 {
		return nil
	}
	switch path[0] {
	case pattern.TargetCrumb:
		return msg.Target
	case pattern.KeyCrumb:
		return lookup(msg.Key, path[1:])
	case pattern.ValueCrumb:
		return lookup(msg.Value, path[1:])
	}
	return nil
}

func entry(entries map[string]string, rest []string) any {
	if len(rest) == 0 {
		return entries
	}
	if v, ok := entries[strings.ToLower(rest[0])]; ok {
		return v
	}
	if v, ok := entries[rest[0]]; ok {
		return v
	}
	return "(missing)"
}

func lookup(v value.Value, rest []string) any {
	if v == nil {
		return "(none)"
	}
	if len(rest) == 0 {
		return v.Native()
	}
	found, ok := value.Lookup(v, result.JoinPath(rest))
	if !ok {
		return "(missing)"
	}
	return found.Native()
}

// CollectRequestNearMisses evaluates every HTTP candidate against req and
// returns the top N by partial match score. Candidates with nothing matched
// are dropped. Only called when no stub matched.
func CollectRequestNearMisses(candidates []Candidate, req *contract.RequestValue, topN int) []NearMiss {
	var out []NearMiss
	for _, c := range candidates {
		if c.Request == nil {
			continue
		}
		nm := RequestBreakdown(c.Request, req, c.Resolver)
		if nm.Score == 0 {
			continue
		}
		nm.StubID, nm.Scenario = c.StubID, c.Scenario
		out = append(out, *nm)
	}
	return rank(out, topN)
}

// CollectMessageNearMisses is CollectRequestNearMisses for messages.
func CollectMessageNearMisses(candidates []Candidate, msg value.Message, topN int) []NearMiss {
	var out []NearMiss
	for _, c := range candidates {
		if c.Message == nil {
			continue
		}
		nm := MessageBreakdown(c.Message, msg, c.Resolver)
		if nm.Score == 0 {
			continue
		}
		nm.StubID, nm.Scenario = c.StubID, c.Scenario
		out = append(out, *nm)
	}
	return rank(out, topN)
}

// rank sorts by score, then percentage, both descending, keeping candidate
// order for ties, and keeps the first topN.
func rank(candidates []NearMiss, topN int) []NearMiss {
	if topN <= 0 {
		topN = DefaultTopN
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].MatchPercentage > candidates[j].MatchPercentage
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}

// GenerateReason creates a human-readable explanation of why a stub
// partially matched but ultimately failed.
func GenerateReason(fields []FieldResult) string {
	if len(fields) == 0 {
		return "no fields to compare"
	}

	var matched []string
	var firstMismatch *FieldResult
	for i := range fields {
		if fields[i].Matched {
			matched = append(matched, strings.ToLower(fields[i].Field))
		} else if firstMismatch == nil {
			firstMismatch = &fields[i]
		}
	}

	if firstMismatch == nil {
		return "all fields matched"
	}
	if len(matched) == 0 {
		return formatMismatch(firstMismatch)
	}
	return joinFields(matched) + " matched, but " + formatMismatch(firstMismatch)
}

// formatMismatch renders a field failure as "path: message".
func formatMismatch(f *FieldResult) string {
	path := f.Path
	if path == "" {
		path = f.Field
	}
	if f.Message == "" {
		return fmt.Sprintf("%s did not match", strings.ToLower(path))
	}
	return fmt.Sprintf("%s: %s", path, f.Message)
}

// joinFields joins field names with commas and "and".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}
