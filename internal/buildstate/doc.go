// Package buildstate persists the incremental build record of a project: the
// fingerprint and argument list of the last successful run of a command.
// A record that is missing or does not match the current state means the
// project must be rebuilt.
package buildstate
