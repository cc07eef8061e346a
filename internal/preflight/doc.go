// Package preflight validates the environment before a run dispatches
// anything: directory permissions on the configured roots and resolvability
// of the trainer executable.
package preflight
