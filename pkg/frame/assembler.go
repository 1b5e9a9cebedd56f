package frame

import (
	"github.com/edgevision/inferpipe/pkg/pixel"
)

// LineSource yields one raw scanline at a time from a streaming sensor.
// Implementations mirror the line-buffered camera driver: NextLine may
// block until the driver has a buffer ready, Release hands the buffer
// back before the next request, and Overflow reports the cumulative
// overflow counter of the current capture pass.
type LineSource interface {
	// Begin arms a capture pass and reports the source dimensions,
	// which may exceed the frame's configured capacity.
	Begin() (w, h int, err error)
	// NextLine blocks until one scanline of BytesPerSample*w raw bytes
	// is available. The returned slice is only valid until Release.
	NextLine() ([]byte, error)
	// Release returns the scanline buffer to the source.
	Release()
	// Overflow returns the cumulative overflow count of the pass.
	Overflow() int
}

// Assembler converts scanlines into packed accelerator words.
type Assembler struct {
	// OnOverflow, when set, is invoked with the overflow count before
	// Capture fails. Stands in for the overflow indicator LED.
	OnOverflow func(count int)
}

// Capture drains one full frame from src into f. Pixels beyond the
// frame's declared capacity are dropped, never written out of bounds.
// A non-zero source overflow counter is terminal: Capture returns
// ErrOverflow and the frame contents must not be trusted.
func (a *Assembler) Capture(src LineSource, f *Frame) error {
	if src == nil || f == nil || len(f.Accel) == 0 {
		return ErrInvalidArgument
	}

	srcW, srcH, err := src.Begin()
	if err != nil {
		return err
	}

	cnt := 0
	disp := 0
	for row := 0; row < srcH; row++ {
		line, err := src.NextLine()
		if err != nil {
			return err
		}
		for k := 0; k+2 < len(line) && k < BytesPerSample*srcW; k += BytesPerSample {
			r, g, b := line[k], line[k+1], line[k+2]
			if cnt < len(f.Accel) {
				f.Accel[cnt] = pixel.Pack(r, g, b)
				cnt++
			}
			if f.Display != nil && disp < len(f.Display) {
				f.Display[disp] = pixel.ToRGB565(r, g, b)
				disp++
			}
		}
		src.Release()
	}

	if n := src.Overflow(); n > 0 {
		if a.OnOverflow != nil {
			a.OnOverflow(n)
		}
		return ErrOverflow
	}
	return nil
}
