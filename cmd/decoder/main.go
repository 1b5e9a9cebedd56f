// Command decoder recovers PNG images and classification results from
// a console capture log produced by the inferpipe daemon.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/edgevision/inferpipe/pkg/export"
	"github.com/edgevision/inferpipe/pkg/logger"
	"github.com/edgevision/inferpipe/pkg/pixel"
)

func main() {
	in := flag.StringP("in", "i", "", "Capture log to decode (default stdin)")
	outDir := flag.StringP("out", "o", ".", "Directory for the decoded PNG files")
	flag.Parse()

	log := logger.NewConsole(false, "dec", false)

	src := os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatal().Err(err).Msg("open capture log")
		}
		defer f.Close()
		src = f
	}

	stream, err := export.DecodeStream(src)
	if err != nil {
		log.Fatal().Err(err).Msg("decode capture log")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output dir")
	}

	results := make(map[int]export.DecodedResult, len(stream.Results))
	for _, r := range stream.Results {
		results[r.CaptureID] = r
	}

	for _, img := range stream.Images {
		name := filepath.Join(*outDir, fmt.Sprintf("capture_%04d.png", img.CaptureID))
		if err := writePNG(name, &img); err != nil {
			log.Fatal().Err(err).Str("file", name).Msg("write png")
		}
		ev := log.Info().Str("file", name)
		if r, ok := results[img.CaptureID]; ok {
			ev = ev.Str("class", r.Class).Int("confidence", r.Confidence).Uint32("us", r.TimeUS)
		}
		ev.Msg("Capture decoded")
	}
	log.Info().Int("images", len(stream.Images)).Int("results", len(stream.Results)).Msg("Done")
}

func writePNG(name string, src *export.DecodedImage) error {
	img := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			r, g, b := pixel.Unpack(src.Pixels[y*src.Width+x])
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
