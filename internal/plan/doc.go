// Package plan expands a data root into the ordered (seed, checkpoint,
// method) work items a sweep dispatches. Enumeration is deterministic for a
// given directory tree: two passes over unchanged inputs yield identical
// sequences.
package plan
