// Package frame assembles streamed scanlines from a sensor line source
// into the fixed-size accelerator tensor and an optional display buffer.
package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow reports that the source produced data faster than it
	// could be drained; the frame contents must be discarded.
	ErrOverflow = errors.New("frame: stream overflow")
	// ErrInvalidArgument reports a nil buffer or zero-sized call.
	ErrInvalidArgument = errors.New("frame: invalid argument")
)

// BytesPerSample is the raw scanline stride per pixel: R, G, B and a
// padding byte, as delivered by the sensor DMA.
const BytesPerSample = 4

// Frame owns the two capture buffers of one capture cycle. The caller
// allocates it once and reuses it between strictly sequential cycles.
type Frame struct {
	W, H int

	// Accel holds one packed accelerator word per pixel, len == W*H.
	Accel []uint32
	// Display optionally holds one RGB565 word per pixel; may be nil.
	Display []uint16
}

// New allocates a frame for the given dimensions, with a display buffer
// when withDisplay is set. Capacity invariants are enforced here so the
// assembler can rely on len() alone.
func New(w, h int, withDisplay bool) (*Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidArgument, w, h)
	}
	f := &Frame{W: w, H: h, Accel: make([]uint32, w*h)}
	if withDisplay {
		f.Display = make([]uint16, w*h)
	}
	return f, nil
}
