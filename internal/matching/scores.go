// Package matching provides near-miss analysis for stub selection.
package matching

import (
	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/pattern"
)

// Field scores. More specific fields weigh more, so a candidate that only
// differs in its body ranks above one with the wrong path.
const (
	// ScoreMethod is the score for a method match.
	ScoreMethod = 10

	// ScorePath is the score for a path match.
	ScorePath = 15

	// ScoreQuery is the score for a query match.
	ScoreQuery = 5

	// ScoreHeaders is the score for a header match.
	ScoreHeaders = 10

	// ScoreBody is the score for a body or multipart match.
	ScoreBody = 25

	// ScoreTarget is the score for a message target (topic) match.
	ScoreTarget = 15

	// ScoreKey is the score for a message key match.
	ScoreKey = 10

	// ScoreValue is the score for a message value match.
	ScoreValue = 25
)

// fieldScore returns the maximum score of a checked field.
func fieldScore(field string) int {
	switch field {
	case contract.CrumbMethod:
		return ScoreMethod
	case contract.CrumbPath:
		return ScorePath
	case contract.CrumbQuery:
		return ScoreQuery
	case contract.CrumbHeaders:
		return ScoreHeaders
	case contract.CrumbBody, contract.CrumbMultipart:
		return ScoreBody
	case pattern.TargetCrumb:
		return ScoreTarget
	case pattern.KeyCrumb:
		return ScoreKey
	case pattern.ValueCrumb:
		return ScoreValue
	default:
		return 1
	}
}
