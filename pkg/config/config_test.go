package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefaults(t *testing.T) {
	var conf Config
	if err := LoadConfigEnv(&conf); err != nil {
		t.Fatal(err)
	}
	if conf.Camera.Driver != "synth" {
		t.Errorf("camera driver = %q, want synth", conf.Camera.Driver)
	}
	if conf.Camera.Width != 128 || conf.Camera.Height != 128 {
		t.Errorf("camera dims = %dx%d, want 128x128", conf.Camera.Width, conf.Camera.Height)
	}
	if conf.Accelerator.InputWords != 16384 {
		t.Errorf("input words = %d, want 16384", conf.Accelerator.InputWords)
	}
	if len(conf.Accelerator.Classes) != 2 || conf.Accelerator.Classes[0] != "Horse" {
		t.Errorf("classes = %v, want [Horse Human]", conf.Accelerator.Classes)
	}
	if conf.Stream.Format != "ppm" {
		t.Errorf("stream format = %q, want ppm", conf.Stream.Format)
	}
	if conf.LiveFeed.Delay() != 50*time.Millisecond {
		t.Errorf("live feed delay = %v, want 50ms", conf.LiveFeed.Delay())
	}
}

func TestFlagOverrides(t *testing.T) {
	var conf Config
	if err := LoadConfigEnv(&conf); err != nil {
		t.Fatal(err)
	}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	conf.WithFlags(fs)
	err := fs.Parse([]string{"--camera.driver=serial", "--live", "--debug"})
	if err != nil {
		t.Fatal(err)
	}
	if conf.Camera.Driver != "serial" {
		t.Errorf("camera driver = %q, want serial", conf.Camera.Driver)
	}
	if !conf.LiveFeed.Enabled || !conf.Environment.Debug {
		t.Error("boolean flags were not applied")
	}
	// untouched values keep their loaded defaults
	if conf.Camera.Baud != 921600 {
		t.Errorf("baud = %d, want default 921600", conf.Camera.Baud)
	}
}
