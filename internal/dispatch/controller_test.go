package dispatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sweeper/internal/config"
	"sweeper/internal/dispatch"
	"sweeper/internal/logging"
)

type fakeJob struct {
	name string
	done chan struct{}
}

func newFakeJob(name string) *fakeJob {
	return &fakeJob{name: name, done: make(chan struct{})}
}

func (f *fakeJob) Done() <-chan struct{} { return f.done }

func (f *fakeJob) Wait() error {
	<-f.done
	return nil
}

func (f *fakeJob) Describe() string { return f.name }

func (f *fakeJob) finish() { close(f.done) }

func newController(t *testing.T, limit int, policy string, sentinel *dispatch.Sentinel) *dispatch.Controller {
	t.Helper()
	if sentinel == nil {
		sentinel = dispatch.NewSentinel(context.Background(), "")
	}
	return dispatch.NewController(config.Dispatch{
		MaxParallel:  limit,
		RefillPolicy: policy,
		PollInterval: 1,
	}, sentinel, logging.NewNop())
}

func acquireAsync(c *dispatch.Controller) <-chan error {
	result := make(chan error, 1)
	go func() { result <- c.Acquire() }()
	return result
}

func expectBlocked(t *testing.T, result <-chan error) {
	t.Helper()
	select {
	case err := <-result:
		t.Fatalf("Acquire returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func expectGranted(t *testing.T, result <-chan error) {
	t.Helper()
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not return")
	}
}

func TestAcquireUnderLimitDoesNotBlock(t *testing.T) {
	c := newController(t, 2, config.PolicyEager, nil)
	if err := c.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	c.Track(newFakeJob("a"))
	if err := c.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
}

func TestEagerRefillsOnFirstExit(t *testing.T) {
	c := newController(t, 2, config.PolicyEager, nil)
	first := newFakeJob("first")
	second := newFakeJob("second")
	for _, j := range []*fakeJob{first, second} {
		if err := c.Acquire(); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		c.Track(j)
	}

	result := acquireAsync(c)
	expectBlocked(t, result)

	// Not the earliest launch: slot reuse follows exit order.
	second.finish()
	expectGranted(t, result)
	if got := c.Running(); got != 1 {
		t.Fatalf("running = %d, want 1", got)
	}
	first.finish()
	c.Drain()
}

func TestBatchWaitsForWholeBatch(t *testing.T) {
	c := newController(t, 2, config.PolicyBatch, nil)
	first := newFakeJob("first")
	second := newFakeJob("second")
	for _, j := range []*fakeJob{first, second} {
		if err := c.Acquire(); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		c.Track(j)
	}

	result := acquireAsync(c)
	expectBlocked(t, result)

	first.finish()
	// One exit is not enough under the batch policy.
	expectBlocked(t, result)

	second.finish()
	expectGranted(t, result)
	if got := c.Running(); got != 0 {
		t.Fatalf("running = %d, want empty table after batch drain", got)
	}
}

func TestAcquireObservesStopFile(t *testing.T) {
	stopFile := filepath.Join(t.TempDir(), "STOP")
	sentinel := dispatch.NewSentinel(context.Background(), stopFile)
	c := newController(t, 1, config.PolicyEager, sentinel)

	if err := c.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	job := newFakeJob("busy")
	c.Track(job)

	result := acquireAsync(c)
	expectBlocked(t, result)

	if err := os.WriteFile(stopFile, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-result:
		if !errors.Is(err, dispatch.ErrCancelled) {
			t.Fatalf("err = %v, want ErrCancelled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Acquire did not observe stop file within poll interval")
	}

	// Cancellation must not touch the running job.
	if !jobStillRunning(job) {
		t.Fatal("in-flight job was affected by cancellation")
	}
	job.finish()
	c.Drain()
}

func TestAcquireObservesContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sentinel := dispatch.NewSentinel(ctx, "")
	c := newController(t, 1, config.PolicyBatch, sentinel)

	if err := c.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	job := newFakeJob("busy")
	c.Track(job)

	cancel()
	if err := c.Acquire(); !errors.Is(err, dispatch.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}

	job.finish()
	c.Drain()
	if got := c.Running(); got != 0 {
		t.Fatalf("running = %d after drain, want 0", got)
	}
}

func TestDrainJoinsEverything(t *testing.T) {
	c := newController(t, 3, config.PolicyEager, nil)
	jobs := []*fakeJob{newFakeJob("a"), newFakeJob("b"), newFakeJob("c")}
	for _, j := range jobs {
		if err := c.Acquire(); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		c.Track(j)
	}
	for _, j := range jobs {
		j.finish()
	}
	c.Drain()
	if got := c.Running(); got != 0 {
		t.Fatalf("running = %d after drain, want 0", got)
	}
}

func jobStillRunning(j *fakeJob) bool {
	select {
	case <-j.done:
		return false
	default:
		return true
	}
}
