package cli

import "errors"

// Command findings, reported with exit code 1.
var (
	ErrBreakingChanges = errors.New("contract has breaking changes")
	ErrInvalidStubs    = errors.New("stubs do not match the contract")
	ErrNoMatch         = errors.New("no stub matched")
)
