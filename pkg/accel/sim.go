package accel

import (
	"sync"
	"time"

	"github.com/edgevision/inferpipe/pkg/pixel"
)

// SimEngine is a software stand-in for the accelerator. It scores each
// class by the mean signed value of one color channel (class i reads
// channel i mod 3), scaled into the q17.14 range the interpreter
// expects. Deterministic, so tests can pin exact outputs.
type SimEngine struct {
	// Latency is the simulated inference time. Zero completes
	// immediately with a 1µs elapsed time.
	Latency time.Duration
	// FullEvery makes the FIFO full bit read true once every n polls,
	// exercising the caller's poll loop. Zero never reads full.
	FullEvery int

	classes int
	done    *Completion

	mu    sync.Mutex
	words []uint32
	out   []int32
	polls int
}

// NewSimEngine returns an engine for the given class count signalling
// the provided completion cell.
func NewSimEngine(classes int, done *Completion) *SimEngine {
	return &SimEngine{classes: classes, done: done}
}

func (e *SimEngine) InputFull() bool {
	if e.FullEvery <= 0 {
		return false
	}
	e.polls++
	return e.polls%e.FullEvery == 0
}

func (e *SimEngine) PushWord(w uint32) {
	e.mu.Lock()
	e.words = append(e.words, w)
	e.mu.Unlock()
}

func (e *SimEngine) Start() {
	go func() {
		started := time.Now()
		if e.Latency > 0 {
			time.Sleep(e.Latency)
		}
		e.mu.Lock()
		e.out = e.score()
		e.words = e.words[:0]
		e.mu.Unlock()
		e.done.Signal(uint32(time.Since(started).Microseconds()))
	}()
}

func (e *SimEngine) Unload(out []int32) {
	e.mu.Lock()
	copy(out, e.out)
	e.mu.Unlock()
}

func (e *SimEngine) PowerDown() {}
func (e *SimEngine) PowerUp()   {}

func (e *SimEngine) score() []int32 {
	scores := make([]int64, e.classes)
	for _, w := range e.words {
		r, g, b := pixel.Unpack(w)
		ch := [3]int64{int64(r) - 128, int64(g) - 128, int64(b) - 128}
		for c := range scores {
			scores[c] += ch[c%3]
		}
	}
	out := make([]int32, e.classes)
	if len(e.words) == 0 {
		return out
	}
	for c, s := range scores {
		// mean channel value in [-128,127], scaled to roughly ±4.0 q17.14
		out[c] = int32(s/int64(len(e.words))) << 9
	}
	return out
}
