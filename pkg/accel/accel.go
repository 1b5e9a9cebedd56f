// Package accel drives the fixed-function inference engine through its
// load/start/wait/unload protocol. The hardware registers are hidden
// behind the Engine capability interface so the session logic runs
// unchanged against a simulated engine.
package accel

import "errors"

var (
	// ErrUnavailable reports an operation issued in the wrong session
	// state. Precondition violation, never retried.
	ErrUnavailable = errors.New("accel: session unavailable")
	// ErrInvalidArgument reports a nil or empty buffer.
	ErrInvalidArgument = errors.New("accel: invalid argument")
)

// Engine is the narrow register-level surface of the accelerator.
type Engine interface {
	// InputFull reads the FIFO "full" status bit. A word may only be
	// pushed while it reads false; pushing while full is undefined.
	InputFull() bool
	// PushWord writes one packed input word into the FIFO.
	PushWord(w uint32)
	// Start kicks off the computation over the loaded input.
	Start()
	// Unload copies the raw per-class outputs into out.
	Unload(out []int32)
	// PowerDown and PowerUp bracket the engine clock. PowerUp does not
	// reload weights.
	PowerDown()
	PowerUp()
}
