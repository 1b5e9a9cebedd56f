package export

import (
	"bufio"
	"fmt"
	"io"
)

// Capture session markers recognized by the external capture tool.
const (
	imgStartMarker = "<<<IMG_START>>>"
	imgEndMarker   = "<<<IMG_END>>>"
	resultMarker   = "<<<RESULT>>>"

	base64StartMarker = "<<<BASE64_IMG_START>>>"
	base64EndMarker   = "<<<BASE64_IMG_END>>>"
	hexBanner         = "=== HEX IMAGE DATA ==="
	hexEndBanner      = "=== END HEX DATA ==="
)

// ImageStart writes the capture framing prologue: marker, dimensions,
// capture id, pixel format tag and the payload start line.
func ImageStart(w io.Writer, width, height, captureID int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidArgument
	}
	_, err := fmt.Fprintf(w, "\n%s\nWIDTH:%d\nHEIGHT:%d\nCAPTURE_ID:%d\nFORMAT:RGB888\nDATA_START\n",
		imgStartMarker, width, height, captureID)
	return err
}

// ImageEnd closes the capture framing.
func ImageEnd(w io.Writer) error {
	_, err := fmt.Fprintf(w, "DATA_END\n%s\n\n", imgEndMarker)
	return err
}

// Result writes the classification block tied to a capture id.
func Result(w io.Writer, captureID int, class string, confidence int, timeUS uint32) error {
	if class == "" {
		return ErrInvalidArgument
	}
	_, err := fmt.Fprintf(w, "\n%s\nCAPTURE_ID:%d\nCLASS:%s\nCONFIDENCE:%d\nINFERENCE_TIME_US:%d\n%s\n\n",
		resultMarker, captureID, class, confidence, timeUS, resultMarker)
	return err
}

// Image writes a complete framed capture: prologue, the frame payload
// in the given format, epilogue.
func Image(w io.Writer, f Func, accel []uint32, width, height, captureID int) error {
	if f == nil {
		return ErrInvalidArgument
	}
	if err := check(accel, width, height); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := ImageStart(bw, width, height, captureID); err != nil {
		return err
	}
	if err := f(bw, accel, width, height); err != nil {
		return err
	}
	if err := ImageEnd(bw); err != nil {
		return err
	}
	return bw.Flush()
}
