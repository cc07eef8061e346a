// Package dispatch coordinates a sweep run: it bounds how many trainer
// processes run at once, decides per item whether to skip, quarantine, or
// launch, and drains every outstanding job before the run ends.
//
// The Controller supports two refill policies. Batch waits for a full batch
// to exit before starting the next one; eager hands a freed slot to the next
// item as soon as any job exits. Both observe the cooperative stop sentinel
// (signal or stop file) before every blocking wait and at every poll tick.
// Cancellation only suppresses new launches — in-flight trainers always run
// to their own conclusion.
//
// The job table is owned by the controller alone; exit notifications arrive
// over a channel and are folded in on the driver goroutine, so the table
// needs no lock.
package dispatch
