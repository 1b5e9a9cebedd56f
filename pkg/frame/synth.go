package frame

// SynthSource is a LineSource producing a deterministic test pattern.
// It is the default camera driver when no sensor hardware is attached
// and doubles as the capture source in tests.
type SynthSource struct {
	W, H int
	// Pattern returns the RGB sample at (x, y). Defaults to a
	// diagonal gradient when nil.
	Pattern func(x, y int) (r, g, b uint8)
	// ForceOverflow makes every pass report an overflowed stream.
	ForceOverflow int

	row  int
	line []byte
}

func (s *SynthSource) Begin() (int, int, error) {
	if s.W <= 0 || s.H <= 0 {
		return 0, 0, ErrInvalidArgument
	}
	s.row = 0
	if len(s.line) != BytesPerSample*s.W {
		s.line = make([]byte, BytesPerSample*s.W)
	}
	return s.W, s.H, nil
}

func (s *SynthSource) NextLine() ([]byte, error) {
	pat := s.Pattern
	if pat == nil {
		pat = gradient
	}
	for x := 0; x < s.W; x++ {
		r, g, b := pat(x, s.row)
		i := x * BytesPerSample
		s.line[i], s.line[i+1], s.line[i+2], s.line[i+3] = r, g, b, 0
	}
	return s.line, nil
}

func (s *SynthSource) Release() { s.row++ }

func (s *SynthSource) Overflow() int { return s.ForceOverflow }

func gradient(x, y int) (uint8, uint8, uint8) {
	return uint8(x), uint8(y), uint8(x + y)
}
