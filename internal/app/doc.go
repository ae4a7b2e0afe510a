// Package app contains the core application logic. It wires the manifest,
// the dependency graph, the project selector and the scheduler into a
// single run of one command, decoupled from the command-line entrypoint.
package app
