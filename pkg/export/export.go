// Package export renders a captured accelerator-format frame into the
// textual wire formats the external verification tooling decodes. All
// framing here is a byte-for-byte contract with that tooling; change
// nothing without changing the decoder in lockstep.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/edgevision/inferpipe/pkg/pixel"
)

// ErrInvalidArgument reports a nil buffer or zero-sized export call.
// No partial output is produced.
var ErrInvalidArgument = errors.New("export: invalid argument")

// Format names accepted by ByName.
const (
	FormatPPM    = "ppm"
	FormatBase64 = "base64"
	FormatHex    = "hex"
)

// Func renders one frame into w.
type Func func(w io.Writer, accel []uint32, width, height int) error

// ByName resolves a configured format name to its encoder.
func ByName(name string) (Func, error) {
	switch name {
	case FormatPPM:
		return PPM, nil
	case FormatBase64:
		return Base64, nil
	case FormatHex:
		return Hex, nil
	}
	return nil, fmt.Errorf("export: unknown format %q", name)
}

func check(accel []uint32, width, height int) error {
	if accel == nil || width <= 0 || height <= 0 || len(accel) < width*height {
		return ErrInvalidArgument
	}
	return nil
}

// PPM writes the frame as a plain-text P3 image: header, then decimal
// "R G B " triples row-major with a line break after every 8 pixels
// and after each row.
func PPM(w io.Writer, accel []uint32, width, height int) error {
	if err := check(accel, width, height); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n# inferpipe capture\n%d %d\n255\n", width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			r, g, b := pixel.Unpack(accel[row*width+col])
			fmt.Fprintf(bw, "%d %d %d ", r, g, b)
			if (col+1)%8 == 0 {
				bw.WriteByte('\n')
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Hex writes the frame as uppercase hex digits, six per pixel, one row
// per line, between literal banner lines.
func Hex(w io.Writer, accel []uint32, width, height int) error {
	if err := check(accel, width, height); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\nSize: %dx%d\n", hexBanner, width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			r, g, b := pixel.Unpack(accel[row*width+col])
			fmt.Fprintf(bw, "%02X%02X%02X", r, g, b)
		}
		bw.WriteByte('\n')
	}
	bw.WriteString(hexEndBanner + "\n")
	return bw.Flush()
}
