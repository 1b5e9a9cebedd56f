package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edgevision/inferpipe/pkg/accel"
	"github.com/edgevision/inferpipe/pkg/config"
	"github.com/edgevision/inferpipe/pkg/frame"
	"github.com/edgevision/inferpipe/pkg/logger"
)

func testConfig(w, h int) config.Config {
	var conf config.Config
	conf.Camera.Width, conf.Camera.Height = w, h
	conf.Accelerator.InputWords = w * h
	conf.Accelerator.Classes = []string{"Horse", "Human"}
	conf.Stream.Format = "ppm"
	return conf
}

func testSession(classes int) *accel.Session {
	done := accel.NewCompletion()
	return accel.NewSession(accel.NewSimEngine(classes, done), done, classes)
}

type capturingPublisher struct {
	payloads [][]byte
}

func (c *capturingPublisher) Publish(data []byte) {
	c.payloads = append(c.payloads, append([]byte(nil), data...))
}

func TestCaptureOnceClassifiesRedFrame(t *testing.T) {
	conf := testConfig(4, 4)
	src := &frame.SynthSource{W: 4, H: 4, Pattern: func(x, y int) (uint8, uint8, uint8) {
		return 255, 0, 0
	}}
	var out bytes.Buffer
	p, err := New(conf, src, testSession(2), &out, logger.Default())
	if err != nil {
		t.Fatal(err)
	}

	o, err := p.CaptureOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if o.Class != 0 {
		t.Fatalf("class = %d, want 0 (red channel dominates)", o.Class)
	}
	if o.Confidence < 90 {
		t.Fatalf("confidence = %d, want >= 90", o.Confidence)
	}

	text := out.String()
	for _, want := range []string{
		"<<<IMG_START>>>", "WIDTH:4", "CAPTURE_ID:0", "FORMAT:RGB888",
		"P3\n", "<<<IMG_END>>>", "<<<RESULT>>>", "CLASS:Horse",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output misses %q", want)
		}
	}
}

func TestNewRejectsFrameOverCapacity(t *testing.T) {
	conf := testConfig(4, 4)
	conf.Accelerator.InputWords = 8 // 16 pixels will not fit
	src := &frame.SynthSource{W: 4, H: 4}
	var out bytes.Buffer
	if _, err := New(conf, src, testSession(2), &out, logger.Default()); err == nil {
		t.Fatal("oversized frame accepted")
	}
}

func TestCaptureOnceIncrementsCaptureID(t *testing.T) {
	conf := testConfig(2, 2)
	src := &frame.SynthSource{W: 2, H: 2}
	var out bytes.Buffer
	p, err := New(conf, src, testSession(2), &out, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := p.CaptureOnce(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if !strings.Contains(out.String(), "CAPTURE_ID:1") {
		t.Fatal("second capture did not advance the capture id")
	}
}

func TestCaptureOnceDropsOverflowedFrame(t *testing.T) {
	conf := testConfig(2, 2)
	src := &frame.SynthSource{W: 2, H: 2, ForceOverflow: 3}
	var out bytes.Buffer
	p, err := New(conf, src, testSession(2), &out, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.CaptureOnce(context.Background()); !errors.Is(err, frame.ErrOverflow) {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
	if out.Len() != 0 {
		t.Fatal("overflowed capture produced output")
	}
}

func TestCaptureOncePublishes(t *testing.T) {
	conf := testConfig(2, 2)
	src := &frame.SynthSource{W: 2, H: 2}
	pub := &capturingPublisher{}
	var out bytes.Buffer
	p, err := New(conf, src, testSession(2), &out, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	p.WithPublisher(pub)
	if _, err := p.CaptureOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(pub.payloads) != 1 {
		t.Fatalf("published %d payloads, want 1", len(pub.payloads))
	}
	if !bytes.Equal(pub.payloads[0], out.Bytes()) {
		t.Fatal("published payload differs from console output")
	}
}

func TestCaptureOncePreview(t *testing.T) {
	conf := testConfig(2, 2)
	conf.Stream.Preview = true
	conf.Stream.PreviewRatio = 1
	src := &frame.SynthSource{W: 2, H: 2, Pattern: func(x, y int) (uint8, uint8, uint8) {
		return 0, 0, 0
	}}
	var out bytes.Buffer
	p, err := New(conf, src, testSession(2), &out, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.CaptureOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "@@\n") {
		t.Fatalf("preview missing from output head: %q", out.String()[:16])
	}
}

func TestDetailedBreakdown(t *testing.T) {
	conf := testConfig(2, 2)
	conf.Stream.Detailed = true
	src := &frame.SynthSource{W: 2, H: 2}
	var out bytes.Buffer
	p, err := New(conf, src, testSession(2), &out, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.CaptureOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "Classification results:") {
		t.Fatal("detailed mode misses the breakdown header")
	}
	if !strings.Contains(text, "Horse:") || !strings.Contains(text, "Human:") {
		t.Fatalf("breakdown misses class rows:\n%s", text)
	}
	if !strings.Contains(text, "Prediction: ") {
		t.Fatal("detailed mode misses the prediction line")
	}
}
