// Package id provides stub identifiers.
//
// Generated stubs get Derived IDs: UUID v5 values computed from the
// contract, scenario and variant, so regenerating a contract reproduces the
// same IDs. Stubs added by hand get a ULID from New, which sorts in
// creation order.
package id
