package accel

import "sync"

// Completion is the observable cell shared between the engine's
// asynchronous done notification and the session's wait loop. The zero
// value of the cell (elapsed == 0) is the "not yet complete" sentinel,
// exactly one completion may be pending at a time, and a new run must
// not start before the previous value was consumed by Reset.
type Completion struct {
	mu      sync.Mutex
	cond    *sync.Cond
	elapsed uint32 // microseconds; 0 means not complete
}

func NewCompletion() *Completion {
	c := &Completion{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Signal records the elapsed time and wakes the waiter. Called from the
// engine's completion notification (the interrupt handler equivalent).
// A zero elapsed time is clamped to 1 so completion stays observable.
func (c *Completion) Signal(elapsedUS uint32) {
	if elapsedUS == 0 {
		elapsedUS = 1
	}
	c.mu.Lock()
	c.elapsed = elapsedUS
	c.mu.Unlock()
	c.cond.Broadcast()
}

// Wait blocks until a completion arrives, re-checking the cell after
// every wake to tolerate spurious wake-ups. There is no timeout, so a
// stalled engine blocks the pipeline.
func (c *Completion) Wait() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.elapsed == 0 {
		c.cond.Wait()
	}
	return c.elapsed
}

// Pending reports whether an unconsumed completion is latched.
func (c *Completion) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed != 0
}

// Reset consumes the latched completion, restoring the sentinel.
func (c *Completion) Reset() {
	c.mu.Lock()
	c.elapsed = 0
	c.mu.Unlock()
}
