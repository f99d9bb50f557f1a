// Package cli provides the command-line interface for contractd.
//
// Commands:
//   - validate: Check contracts (and optionally stubs) for errors
//   - compat: Check that a new contract version is backward compatible
//   - generate: Generate stubs from scenarios and examples, optionally
//     publishing message stubs to Kafka or MQTT
//   - match: Find the stub answering a request or message, or explain
//     the near misses
//   - version: Show version information
//
// Every command accepts --json for machine-readable output. Findings (a
// breaking change, an invalid stub, no match) exit with status 1; other
// errors exit with status 2.
package cli
