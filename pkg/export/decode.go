package export

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/edgevision/inferpipe/pkg/pixel"
)

// DecodedImage is one capture recovered from a console stream. Pixels
// use the same packed word layout as live frames.
type DecodedImage struct {
	Width, Height int
	CaptureID     int
	Pixels        []uint32
}

// DecodedResult is one classification block recovered from a stream.
type DecodedResult struct {
	CaptureID  int
	Class      string
	Confidence int
	TimeUS     uint32
}

// Stream holds everything recovered from one console capture log.
type Stream struct {
	Images  []DecodedImage
	Results []DecodedResult
}

// DecodeStream parses a console capture log: framed images in any of
// the three payload formats plus their classification blocks. Text
// outside the markers (log lines, previews) is ignored.
func DecodeStream(r io.Reader) (*Stream, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out Stream
	for sc.Scan() {
		switch strings.TrimSpace(sc.Text()) {
		case imgStartMarker:
			img, err := decodeImage(sc)
			if err != nil {
				return nil, err
			}
			out.Images = append(out.Images, *img)
		case resultMarker:
			res, err := decodeResult(sc)
			if err != nil {
				return nil, err
			}
			out.Results = append(out.Results, *res)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("export: stream read: %w", err)
	}
	return &out, nil
}

func decodeImage(sc *bufio.Scanner) (*DecodedImage, error) {
	img := &DecodedImage{}
	var payload []string
	inData := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == imgEndMarker:
			return img, decodePayload(img, payload)
		case line == "DATA_START":
			inData = true
		case line == "DATA_END":
			inData = false
		case inData:
			payload = append(payload, line)
		case strings.HasPrefix(line, "WIDTH:"):
			img.Width, _ = strconv.Atoi(line[len("WIDTH:"):])
		case strings.HasPrefix(line, "HEIGHT:"):
			img.Height, _ = strconv.Atoi(line[len("HEIGHT:"):])
		case strings.HasPrefix(line, "CAPTURE_ID:"):
			img.CaptureID, _ = strconv.Atoi(line[len("CAPTURE_ID:"):])
		}
	}
	return nil, fmt.Errorf("export: capture %d: truncated image block", img.CaptureID)
}

func decodeResult(sc *bufio.Scanner) (*DecodedResult, error) {
	res := &DecodedResult{}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == resultMarker:
			return res, nil
		case strings.HasPrefix(line, "CAPTURE_ID:"):
			res.CaptureID, _ = strconv.Atoi(line[len("CAPTURE_ID:"):])
		case strings.HasPrefix(line, "CLASS:"):
			res.Class = line[len("CLASS:"):]
		case strings.HasPrefix(line, "CONFIDENCE:"):
			res.Confidence, _ = strconv.Atoi(line[len("CONFIDENCE:"):])
		case strings.HasPrefix(line, "INFERENCE_TIME_US:"):
			us, _ := strconv.ParseUint(line[len("INFERENCE_TIME_US:"):], 10, 32)
			res.TimeUS = uint32(us)
		}
	}
	return nil, fmt.Errorf("export: capture %d: truncated result block", res.CaptureID)
}

// decodePayload detects the payload format by its first line.
func decodePayload(img *DecodedImage, lines []string) error {
	if len(lines) == 0 {
		return fmt.Errorf("export: capture %d: empty payload", img.CaptureID)
	}
	var rgb []byte
	var err error
	switch {
	case lines[0] == "P3":
		rgb, err = decodePPM(lines)
	case lines[0] == base64StartMarker:
		rgb, err = decodeBase64(lines)
	case lines[0] == hexBanner:
		rgb, err = decodeHex(lines)
	default:
		err = fmt.Errorf("unrecognized payload head %q", lines[0])
	}
	if err != nil {
		return fmt.Errorf("export: capture %d: %w", img.CaptureID, err)
	}
	want := img.Width * img.Height * 3
	if len(rgb) < want {
		return fmt.Errorf("export: capture %d: payload holds %d bytes, want %d", img.CaptureID, len(rgb), want)
	}
	img.Pixels = make([]uint32, img.Width*img.Height)
	for i := range img.Pixels {
		img.Pixels[i] = pixel.Pack(rgb[3*i], rgb[3*i+1], rgb[3*i+2])
	}
	return nil
}

func decodePPM(lines []string) ([]byte, error) {
	var values []byte
	header := 0 // tokens seen of: magic, width, height, maxval
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, tok := range strings.Fields(line) {
			if header < 4 {
				header++
				continue
			}
			v, err := strconv.Atoi(tok)
			if err != nil || v < 0 || v > 255 {
				return nil, fmt.Errorf("bad ppm sample %q", tok)
			}
			values = append(values, byte(v))
		}
	}
	return values, nil
}

func decodeBase64(lines []string) ([]byte, error) {
	var sb strings.Builder
	for _, line := range lines[1:] {
		if line == base64EndMarker {
			break
		}
		if strings.HasPrefix(line, "WIDTH:") || line == "" {
			continue
		}
		sb.WriteString(line)
	}
	data, err := base64.StdEncoding.DecodeString(sb.String())
	if err != nil {
		return nil, fmt.Errorf("bad base64 payload: %w", err)
	}
	return data, nil
}

func decodeHex(lines []string) ([]byte, error) {
	var sb strings.Builder
	for _, line := range lines[1:] {
		if line == hexEndBanner {
			break
		}
		if strings.HasPrefix(line, "Size:") || line == "" {
			continue
		}
		sb.WriteString(line)
	}
	data, err := hex.DecodeString(sb.String())
	if err != nil {
		return nil, fmt.Errorf("bad hex payload: %w", err)
	}
	return data, nil
}
