// Package preview renders a captured frame as ASCII art on a terminal.
package preview

import (
	"bufio"
	"errors"
	"io"

	"github.com/edgevision/inferpipe/pkg/pixel"
)

// ErrInvalidArgument reports a nil buffer or zero-sized render call.
var ErrInvalidArgument = errors.New("preview: invalid argument")

// RampStandard is the 10-glyph brightness ramp, dark to bright.
const RampStandard = "@%#*+=-:. "

// RampExtended is the 70-glyph ramp for higher perceptual detail.
const RampExtended = "$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'. "

// Render downsamples the frame by ratio horizontally and 2*ratio
// vertically (terminal cells are about twice as tall as wide) and maps
// each sampled pixel's luminance onto the ramp: the ramps run dense to
// sparse, so dark pixels pick dense glyphs and white maps to space.
func Render(w io.Writer, accel []uint32, width, height, ratio int, ramp string) error {
	if accel == nil || width <= 0 || height <= 0 || len(accel) < width*height || len(ramp) == 0 {
		return ErrInvalidArgument
	}
	if ratio < 1 {
		ratio = 1
	}
	xStep, yStep := ratio, ratio*2

	n := len(ramp)
	bw := bufio.NewWriter(w)
	for y := 0; y < height; y += yStep {
		for x := 0; x < width; x += xStep {
			r, g, b := pixel.Unpack(accel[y*width+x])
			lum := int(pixel.Luma(r, g, b))
			bw.WriteByte(ramp[lum*(n-1)/255])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
