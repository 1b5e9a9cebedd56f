package frame

import (
	"bufio"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Serial framing used by the sensor firmware: a "FRAME <w> <h>" header
// line, h raw scanlines of BytesPerSample*w bytes, then a "STAT <n>"
// trailer carrying the overflow counter of the pass.
const (
	frameHeader  = "FRAME"
	frameTrailer = "STAT"
	captureCmd   = "CAP\n"
)

// SerialSource is a LineSource backed by a UART-attached sensor.
type SerialSource struct {
	port serial.Port
	br   *bufio.Reader

	w, h     int
	rows     int
	line     []byte
	overflow int
}

// OpenSerial opens the sensor device at the given baud rate.
func OpenSerial(device string, baud int) (*SerialSource, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("frame: open %s: %w", device, err)
	}
	return NewSerialSource(port), nil
}

// NewSerialSource wraps an already-open port. Split from OpenSerial so
// tests can substitute an in-memory port.
func NewSerialSource(port serial.Port) *SerialSource {
	return &SerialSource{port: port, br: bufio.NewReaderSize(port, 1<<14)}
}

func (s *SerialSource) Begin() (int, int, error) {
	if _, err := s.port.Write([]byte(captureCmd)); err != nil {
		return 0, 0, fmt.Errorf("frame: trigger capture: %w", err)
	}
	header, err := s.readLine()
	if err != nil {
		return 0, 0, err
	}
	var tag string
	if _, err := fmt.Sscanf(header, "%s %d %d", &tag, &s.w, &s.h); err != nil || tag != frameHeader {
		return 0, 0, fmt.Errorf("frame: bad header %q", header)
	}
	if cap(s.line) < BytesPerSample*s.w {
		s.line = make([]byte, BytesPerSample*s.w)
	}
	s.line = s.line[:BytesPerSample*s.w]
	s.rows = 0
	s.overflow = 0
	return s.w, s.h, nil
}

func (s *SerialSource) NextLine() ([]byte, error) {
	if _, err := io.ReadFull(s.br, s.line); err != nil {
		return nil, fmt.Errorf("frame: scanline read: %w", err)
	}
	return s.line, nil
}

func (s *SerialSource) Release() {
	s.rows++
	if s.rows == s.h {
		// Frame drained, pick up the overflow counter.
		if trailer, err := s.readLine(); err == nil {
			var tag string
			fmt.Sscanf(trailer, "%s %d", &tag, &s.overflow)
		}
	}
}

func (s *SerialSource) Overflow() int { return s.overflow }

func (s *SerialSource) Close() error { return s.port.Close() }

func (s *SerialSource) readLine() (string, error) {
	line, err := s.br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("frame: header read: %w", err)
	}
	return line[:len(line)-1], nil
}
