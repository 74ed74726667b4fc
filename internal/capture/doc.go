// Package capture snapshots niconico API responses as fixture files with progress reporting.
//
// # Targets
//
// A [Target] names one API call: its [Category] (the fixture subdirectory), a file name,
// an operation from the registry and its [Params]. [DefaultTargets] is the built-in list
// for the sample account; [TargetsFromConfig] reads a list from TOML instead.
// [Validate] rejects unknown operations, bad params and duplicate paths before any
// network call is made.
//
// # Run
//
// [Engine.Run] is a linear batch job:
//
//  1. Verify the session with one Login call
//  2. For each target, wait on the rate limiter, then call the client
//  3. Truncate list results to the configured limit
//  4. Replace unstable fields with the [Stabilizer]
//  5. Record the response type with the [TypeMappingCollector]
//  6. Save fixtures/<category>/<name>.json through a [fixtures.Saver]
//
// After the last target the type mapping (JSON and Go source) and the run manifest are
// written next to the fixtures directory.
//
// # Failure Policy
//
// A failed target is logged with its identity and the run continues; [RunResult.Err]
// reports the failures afterwards. With FailFast set the first failure aborts the run.
// Filesystem errors and cancellation always abort, and the remaining targets are marked
// skipped. The mapping and manifest are still written so fixtures saved before the abort
// stay decodable.
//
// # Progress Reporting
//
// Updates use select with default so reporting never blocks a run.
package capture
