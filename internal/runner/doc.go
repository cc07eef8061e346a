// Package runner turns work items into running trainer processes. It expands
// the configured argument template, captures combined output per job, and
// hands back handles for liveness checks and drain joins. Launch never blocks
// on the child; one Launch call starts exactly one process.
package runner
