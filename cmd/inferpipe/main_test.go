package main

import (
	"testing"

	"github.com/edgevision/inferpipe/pkg/accel"
	"github.com/edgevision/inferpipe/pkg/config"
	"github.com/edgevision/inferpipe/pkg/frame"
)

func TestNewEngineDispatch(t *testing.T) {
	done := accel.NewCompletion()
	eng, err := newEngine(config.Accelerator{Driver: "sim", Classes: []string{"Horse", "Human"}}, done)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := eng.(*accel.SimEngine); !ok {
		t.Fatalf("sim driver produced %T", eng)
	}

	if _, err := newEngine(config.Accelerator{Driver: "npu"}, done); err == nil {
		t.Fatal("unknown accelerator driver accepted")
	}
}

func TestNewSourceDispatch(t *testing.T) {
	src, closeSrc, err := newSource(config.Camera{Driver: "synth", Width: 2, Height: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer closeSrc()
	synth, ok := src.(*frame.SynthSource)
	if !ok {
		t.Fatalf("synth driver produced %T", src)
	}
	if synth.W != 2 || synth.H != 2 {
		t.Fatalf("source dims %dx%d, want 2x2", synth.W, synth.H)
	}
}
