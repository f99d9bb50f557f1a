// Package matching explains why no stub matched an incoming value.
//
// When stub selection fails, every candidate stub is re-evaluated field by
// field without short-circuiting. Each field that matches earns its score
// (see scores.go); the candidates with the highest partial scores are
// reported as near misses, each with the failing breadcrumb path, the
// failure message and the actual value found at that path.
//
// Key types:
//
//   - NearMiss: a partially matching stub with per-field results
//   - FieldResult: the outcome for one field (method, path, body, ...)
//   - Candidate: a stub's request or message pattern plus its resolver
package matching
