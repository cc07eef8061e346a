// Package experiment reads the experiments root and classifies prior attempts
// as absent, incomplete, or complete. Completion is inferred solely from the
// terminal artifact file the trainer leaves behind; process exit codes are
// never consulted. The package performs read-only filesystem queries.
package experiment
