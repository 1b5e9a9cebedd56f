package config

import (
	"errors"
	"time"

	"github.com/kkyr/fig"
	"github.com/spf13/pflag"
)

// Config is the root configuration of the inferpipe daemon.
type Config struct {
	Camera      Camera
	Accelerator Accelerator
	Stream      Stream
	LiveFeed    LiveFeed `fig:"live_feed"`
	Weights     Weights
	History     History
	Archive     Archive
	Monitoring  Monitoring
	Environment Environment
}

// Camera describes the sensor line source.
type Camera struct {
	// Driver selects the line source implementation: serial or synth.
	Driver string `fig:"driver" default:"synth"`
	// Device is the serial device path when the driver is serial.
	Device string `fig:"device" default:"/dev/ttyUSB0"`
	Baud   int    `fig:"baud" default:"921600"`
	Width  int    `fig:"width" default:"128"`
	Height int    `fig:"height" default:"128"`
}

// Accelerator describes the inference engine wiring.
type Accelerator struct {
	// Driver selects the engine implementation; sim is the only
	// built-in.
	Driver string `fig:"driver" default:"sim"`
	// InputWords is the capacity of the packed-pixel tensor in 32-bit words.
	InputWords int `fig:"input_words" default:"16384"`
	// Classes are the model output labels, in output-unit order.
	Classes []string `fig:"classes" default:"[Horse,Human]"`
}

// Stream configures the capture re-export surface.
type Stream struct {
	// Format of the exported frame payload: ppm, base64 or hex.
	Format string `fig:"format" default:"ppm"`
	// Port of the websocket tail server, 0 disables it.
	Port         int  `fig:"port"`
	Preview      bool `fig:"preview"`
	PreviewRatio int  `fig:"preview_ratio" default:"2"`
	// Detailed switches the preview to the 70-glyph ramp.
	Detailed bool `fig:"detailed"`
}

// LiveFeed configures the continuous capture mode.
type LiveFeed struct {
	Enabled bool `fig:"enabled"`
	DelayMs int  `fig:"delay_ms" default:"50"`
}

func (l LiveFeed) Delay() time.Duration { return time.Duration(l.DelayMs) * time.Millisecond }

// Weights configures the model bundle location.
type Weights struct {
	// URL to fetch the weights bundle from when Dir misses it.
	URL string `fig:"url"`
	Dir string `fig:"dir" default:".inferpipe/weights"`
	// Watch re-arms the session when the bundle changes on disk.
	Watch bool `fig:"watch"`
}

// History configures the capture log.
type History struct {
	Path string `fig:"path" default:".inferpipe/captures.db"`
}

// Archive configures cloud upload of export files.
type Archive struct {
	Enabled bool   `fig:"enabled"`
	Bucket  string `fig:"bucket" default:"inferpipe-captures"`
	Dir     string `fig:"dir" default:".inferpipe/exports"`
}

// Monitoring configures the pprof/metrics endpoint.
type Monitoring struct {
	Port             int    `fig:"port"`
	URLPrefix        string `fig:"url_prefix"`
	MetricEnabled    bool   `fig:"metric_enabled"`
	ProfilingEnabled bool   `fig:"profiling_enabled"`
}

// Environment holds daemon-wide toggles.
type Environment struct {
	Debug   bool   `fig:"debug"`
	NoColor bool   `fig:"no_color"`
	DataDir string `fig:"data_dir" default:".inferpipe"`
}

var configPath string

// NewConfig loads the daemon configuration. A missing config file is
// not an error, defaults and environment variables still apply.
func NewConfig() (Config, error) {
	var conf Config
	err := LoadConfig(&conf, configPath)
	if errors.Is(err, fig.ErrFileNotFound) {
		err = LoadConfigEnv(&conf)
	}
	return conf, err
}

// ParseFlags applies command-line overrides and re-reads the config
// file when a custom path was given with --conf. File values from a
// --conf file win over flags set in the same invocation.
func (c *Config) ParseFlags() error {
	c.WithFlags(pflag.CommandLine)
	pflag.Parse()
	if configPath == "" {
		return nil
	}
	return LoadConfig(c, configPath)
}

// WithFlags binds command-line overrides onto the config.
func (c *Config) WithFlags(fs *pflag.FlagSet) *Config {
	fs.StringVar(&c.Camera.Driver, "camera.driver", c.Camera.Driver, "Line source driver (serial|synth)")
	fs.StringVar(&c.Camera.Device, "camera.device", c.Camera.Device, "Serial device of the sensor")
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	fs.IntVar(&c.Stream.Port, "stream.port", c.Stream.Port, "Websocket tail server port")
	fs.BoolVar(&c.LiveFeed.Enabled, "live", c.LiveFeed.Enabled, "Run the continuous live feed mode")
	fs.BoolVar(&c.Environment.Debug, "debug", c.Environment.Debug, "Enable debug logging")
	fs.StringVarP(&configPath, "conf", "c", "", "Set custom configuration file path")
	return c
}
