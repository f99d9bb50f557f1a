// Package compat checks that a new version of a contract is backward
// compatible with an old one.
//
// Requests are compared one way and responses the other: the new request
// pattern must accept everything an old client sends, and the old response
// pattern must accept everything the new server returns. Messages compare
// like responses. Every old scenario yields one named result; a scenario
// that disappeared is a failure.
//
// Breaking reports whether failures are breaking changes for the versions
// involved: a major version bump permits them.
package compat
