package preview

import (
	"errors"
	"strings"
	"testing"

	"github.com/edgevision/inferpipe/pkg/pixel"
)

func TestRenderLuminanceExtremes(t *testing.T) {
	// Pure black picks the densest glyph, pure white the sparsest.
	accel := []uint32{
		pixel.Pack(0, 0, 0), pixel.Pack(255, 255, 255),
	}
	var sb strings.Builder
	if err := Render(&sb, accel, 2, 1, 1, RampStandard); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "@ \n" {
		t.Fatalf("render = %q, want %q", sb.String(), "@ \n")
	}
}

func TestRenderAspectRatioStep(t *testing.T) {
	// 4x4 frame with ratio 1: every column sampled, every second row.
	accel := make([]uint32, 16)
	for i := range accel {
		accel[i] = pixel.Pack(0, 0, 0)
	}
	var sb strings.Builder
	if err := Render(&sb, accel, 4, 4, 1, RampStandard); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "@@@@\n@@@@\n" {
		t.Fatalf("render = %q, want two rows of four glyphs", sb.String())
	}
}

func TestRenderRatioClamp(t *testing.T) {
	accel := []uint32{pixel.Pack(0, 0, 0)}
	var sb strings.Builder
	if err := Render(&sb, accel, 1, 1, 0, RampExtended); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "$\n" {
		t.Fatalf("render = %q, want %q", sb.String(), "$\n")
	}
}

func TestRenderInvalidArgs(t *testing.T) {
	var sb strings.Builder
	if err := Render(&sb, nil, 1, 1, 1, RampStandard); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if err := Render(&sb, []uint32{0}, 1, 1, 1, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty ramp err = %v, want ErrInvalidArgument", err)
	}
}

func TestRampLengths(t *testing.T) {
	if len(RampStandard) != 10 {
		t.Fatalf("standard ramp has %d glyphs, want 10", len(RampStandard))
	}
	if len(RampExtended) != 70 {
		t.Fatalf("extended ramp has %d glyphs, want 70", len(RampExtended))
	}
}
