package pattern

import (
	"errors"
	"fmt"

	"github.com/getmockd/contractd/pkg/result"
)

// ErrMaxDepth is returned when generation nests deeper than the resolver allows.
var ErrMaxDepth = errors.New("maximum nesting depth exceeded")

// LookupError reports a type name that is not defined in the registry.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("type %s is not defined", e.Name)
}

// ContractError reports a contract authoring error found while building
// examples, such as a row value that the declared pattern cannot accept.
type ContractError struct {
	Message string

	// Cause is the compatibility failure behind the error, if any.
	Cause result.Result
}

func (e *ContractError) Error() string {
	if e.Cause.IsFailure() {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause)
	}
	return e.Message
}

// CycleError is returned by Generate when a self-referential type recurses
// past the allowed depth along one path.
type CycleError struct {
	Name string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("type %s refers to itself too deeply to generate", e.Name)
}

func isCycle(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
