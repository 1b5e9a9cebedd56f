package pixel

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	// Full byte range on each channel against fixed values on the others,
	// plus the diagonal. Covers all byte values in every position.
	for v := 0; v < 256; v++ {
		b := uint8(v)
		cases := [][3]uint8{
			{b, 0x00, 0xFF},
			{0x12, b, 0x34},
			{0xFE, 0x01, b},
			{b, b, b},
		}
		for _, c := range cases {
			r2, g2, b2 := Unpack(Pack(c[0], c[1], c[2]))
			if r2 != c[0] || g2 != c[1] || b2 != c[2] {
				t.Fatalf("round trip (%d,%d,%d) -> (%d,%d,%d)", c[0], c[1], c[2], r2, g2, b2)
			}
		}
	}
}

func TestPackLayout(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    uint32
	}{
		{0, 0, 0, 0x00808080},
		{0xFF, 0xFF, 0xFF, 0x007F7F7F},
		{0x80, 0x80, 0x80, 0x00000000},
		{0x01, 0x02, 0x03, 0x00838281},
	}
	for _, tc := range tests {
		if got := Pack(tc.r, tc.g, tc.b); got != tc.want {
			t.Errorf("Pack(%d,%d,%d) = %08X, want %08X", tc.r, tc.g, tc.b, got, tc.want)
		}
	}
}

func TestToRGB565(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    uint16
	}{
		{0, 0, 0, 0x0000},
		{0xFF, 0xFF, 0xFF, 0xFFFF},
		{0xFF, 0, 0, 0xF800},
		{0, 0xFF, 0, 0x07E0},
		{0, 0, 0xFF, 0x001F},
		{0x08, 0x04, 0x08, 0x0821},
	}
	for _, tc := range tests {
		if got := ToRGB565(tc.r, tc.g, tc.b); got != tc.want {
			t.Errorf("ToRGB565(%d,%d,%d) = %04X, want %04X", tc.r, tc.g, tc.b, got, tc.want)
		}
	}
}

func TestLuma(t *testing.T) {
	if y := Luma(0, 0, 0); y != 0 {
		t.Errorf("black luma = %d, want 0", y)
	}
	if y := Luma(255, 255, 255); y != 255 {
		t.Errorf("white luma = %d, want 255", y)
	}
	// (77*255)>>8 = 76
	if y := Luma(255, 0, 0); y != 76 {
		t.Errorf("red luma = %d, want 76", y)
	}
}
