package dispatch

import (
	"context"
	"os"
)

// Sentinel is the cooperative stop signal. It combines the run context
// (cancelled by SIGINT/SIGTERM) with an externally touchable stop file, and is
// consulted before every blocking wait and at every poll tick. Observing it
// only suppresses new launches; running trainers are left alone.
type Sentinel struct {
	ctx      context.Context
	stopFile string
}

// NewSentinel builds a sentinel from the run context and an optional stop
// file path. An empty path disables the file check.
func NewSentinel(ctx context.Context, stopFile string) *Sentinel {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Sentinel{ctx: ctx, stopFile: stopFile}
}

// Stopped reports whether cancellation has been requested.
func (s *Sentinel) Stopped() bool {
	if s.ctx.Err() != nil {
		return true
	}
	if s.stopFile == "" {
		return false
	}
	_, err := os.Stat(s.stopFile)
	return err == nil
}

// Reason names the observed trigger for log lines. Only meaningful after
// Stopped has returned true.
func (s *Sentinel) Reason() string {
	if s.ctx.Err() != nil {
		return "signal"
	}
	return "stop file"
}
