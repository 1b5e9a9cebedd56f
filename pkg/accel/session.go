package accel

import "runtime"

// State of a session. Transitions: Idle → Loaded → Running → Done,
// with Done → Loaded on the next LoadInput. Disable parks the session
// in Disabled; Enable returns it to Done only after a prior successful
// load (weights survive a power cycle, FIFO contents do not).
type State uint8

const (
	Idle State = iota
	Loaded
	Running
	Done
	Disabled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Running:
		return "running"
	case Done:
		return "done"
	case Disabled:
		return "disabled"
	}
	return "unknown"
}

// Result carries the raw outcome of one accelerator run.
type Result struct {
	Raw    []int32 // one raw fixed-point score per class
	TimeUS uint32  // elapsed inference time in microseconds
}

// Session owns one engine and its completion cell. Not safe for
// concurrent use; captures are strictly sequential.
type Session struct {
	engine  Engine
	done    *Completion
	classes int
	state   State
	loaded  bool // a successful load happened at least once
}

// NewSession wires an engine and its completion cell for a model with
// the given class count.
func NewSession(engine Engine, done *Completion, classes int) *Session {
	return &Session{engine: engine, done: done, classes: classes}
}

func (s *Session) State() State { return s.state }

// Completion exposes the cell so the engine's notification side
// (hardware ISR or simulator goroutine) can signal it.
func (s *Session) Completion() *Completion { return s.done }

// LoadInput pushes the packed tensor words through the input FIFO,
// spinning on the full bit before each word.
func (s *Session) LoadInput(words []uint32) error {
	if s.state == Running || s.state == Disabled {
		return ErrUnavailable
	}
	if len(words) == 0 {
		return ErrInvalidArgument
	}
	for _, w := range words {
		for s.engine.InputFull() {
			runtime.Gosched()
		}
		s.engine.PushWord(w)
	}
	s.state = Loaded
	s.loaded = true
	return nil
}

// Start resets the elapsed-time sentinel and issues the start signal.
// A start with the previous completion still latched is refused: the
// cell holds at most one pending completion.
func (s *Session) Start() error {
	if s.state != Loaded {
		return ErrUnavailable
	}
	if s.done.Pending() {
		return ErrUnavailable
	}
	s.done.Reset()
	s.engine.Start()
	s.state = Running
	return nil
}

// Wait suspends until the completion notification arrives, then
// unloads the raw outputs and the elapsed time into res.
func (s *Session) Wait(res *Result) error {
	if res == nil {
		return ErrInvalidArgument
	}
	if s.state != Running {
		return ErrUnavailable
	}

	res.TimeUS = s.done.Wait()
	s.done.Reset()

	if cap(res.Raw) < s.classes {
		res.Raw = make([]int32, s.classes)
	}
	res.Raw = res.Raw[:s.classes]
	s.engine.Unload(res.Raw)
	s.state = Done
	return nil
}

// Run is the fused convenience form of Start followed by Wait.
func (s *Session) Run(res *Result) error {
	if err := s.Start(); err != nil {
		return err
	}
	return s.Wait(res)
}

// Disable powers the engine down between captures.
func (s *Session) Disable() {
	s.engine.PowerDown()
	s.state = Disabled
}

// Enable powers the engine back up. It does not reload weights, so it
// is only valid after a prior successful load; a session that was never
// loaded needs full re-initialization by the bring-up code.
func (s *Session) Enable() error {
	if s.state != Disabled || !s.loaded {
		return ErrUnavailable
	}
	s.engine.PowerUp()
	s.state = Done
	return nil
}
