package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/edgevision/inferpipe/pkg/pixel"
)

const base64Table = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// base64LineWidth is the forced line break interval of the body.
const base64LineWidth = 76

// Base64 writes the frame's channel bytes (R,G,B per pixel, row-major)
// base64-encoded between literal marker lines.
//
// The encoder is hand-rolled rather than encoding/base64: the contract
// demands a newline only after complete 76-character lines plus one
// unconditional newline before the end marker, which the stdlib
// splitter does not reproduce.
func Base64(w io.Writer, accel []uint32, width, height int) error {
	if err := check(accel, width, height); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\nWIDTH:%d,HEIGHT:%d\n", base64StartMarker, width, height)

	enc := base64Encoder{w: bw}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			r, g, b := pixel.Unpack(accel[row*width+col])
			enc.put(r)
			enc.put(g)
			enc.put(b)
		}
	}
	enc.finish()

	bw.WriteString("\n" + base64EndMarker + "\n")
	return bw.Flush()
}

// base64Encoder streams bytes into 4-character groups with 76-column
// wrapping and trailing '=' padding.
type base64Encoder struct {
	w       *bufio.Writer
	triplet [3]byte
	n       int
	lineLen int
}

func (e *base64Encoder) put(b byte) {
	e.triplet[e.n] = b
	e.n++
	if e.n < 3 {
		return
	}
	e.n = 0
	e.w.WriteByte(base64Table[e.triplet[0]>>2&0x3F])
	e.w.WriteByte(base64Table[(e.triplet[0]&0x03)<<4|e.triplet[1]>>4&0x0F])
	e.w.WriteByte(base64Table[(e.triplet[1]&0x0F)<<2|e.triplet[2]>>6&0x03])
	e.w.WriteByte(base64Table[e.triplet[2]&0x3F])
	e.lineLen += 4
	if e.lineLen >= base64LineWidth {
		e.w.WriteByte('\n')
		e.lineLen = 0
	}
}

// finish flushes a final partial group with '=' padding: two for one
// leftover byte, one for two.
func (e *base64Encoder) finish() {
	if e.n == 0 {
		return
	}
	for i := e.n; i < 3; i++ {
		e.triplet[i] = 0
	}
	e.w.WriteByte(base64Table[e.triplet[0]>>2&0x3F])
	e.w.WriteByte(base64Table[(e.triplet[0]&0x03)<<4|e.triplet[1]>>4&0x0F])
	if e.n > 1 {
		e.w.WriteByte(base64Table[(e.triplet[1]&0x0F)<<2|e.triplet[2]>>6&0x03])
	} else {
		e.w.WriteByte('=')
	}
	e.w.WriteByte('=')
	e.n = 0
}
