// Package pipeline drives one capture device end to end: drain a frame
// from the sensor, run it through the accelerator, interpret the
// scores and re-export everything to the attached consumers.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid"

	"github.com/edgevision/inferpipe/pkg/accel"
	"github.com/edgevision/inferpipe/pkg/config"
	"github.com/edgevision/inferpipe/pkg/export"
	"github.com/edgevision/inferpipe/pkg/frame"
	"github.com/edgevision/inferpipe/pkg/history"
	"github.com/edgevision/inferpipe/pkg/infer"
	"github.com/edgevision/inferpipe/pkg/logger"
	"github.com/edgevision/inferpipe/pkg/os"
	"github.com/edgevision/inferpipe/pkg/preview"
	"github.com/edgevision/inferpipe/pkg/storage"
)

// Publisher receives every exported text block, e.g. a websocket feed.
type Publisher interface {
	Publish(data []byte)
}

// Pipeline owns one capture loop. Not safe for concurrent use;
// captures are strictly sequential, matching the single shared frame.
type Pipeline struct {
	conf config.Config
	log  *logger.Logger

	src  frame.LineSource
	asm  frame.Assembler
	frm  *frame.Frame
	sess *accel.Session

	exportFn export.Func
	out      io.Writer

	hist *history.Store
	arch storage.CloudStorage
	pub  Publisher

	runID     string
	captureID int
	res       accel.Result
	outcome   infer.Outcome

	stop chan struct{}
	done chan struct{}
}

// New wires a pipeline from an armed line source and accelerator
// session. Console output goes to out; history, archive and publisher
// are attached with the With* methods.
func New(conf config.Config, src frame.LineSource, sess *accel.Session, out io.Writer, log *logger.Logger) (*Pipeline, error) {
	exportFn, err := export.ByName(conf.Stream.Format)
	if err != nil {
		return nil, err
	}
	if n := conf.Accelerator.InputWords; n > 0 && conf.Camera.Width*conf.Camera.Height > n {
		return nil, fmt.Errorf("pipeline: %dx%d frame needs %d words, accelerator holds %d",
			conf.Camera.Width, conf.Camera.Height, conf.Camera.Width*conf.Camera.Height, n)
	}
	frm, err := frame.New(conf.Camera.Width, conf.Camera.Height, false)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		conf:     conf,
		log:      log,
		src:      src,
		frm:      frm,
		sess:     sess,
		exportFn: exportFn,
		out:      out,
		runID:    id.String(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.asm.OnOverflow = func(count int) {
		metricOverflows.Inc()
		p.log.Error().Int("count", count).Msg("Sensor FIFO overflow, frame dropped")
	}
	return p, nil
}

func (p *Pipeline) WithHistory(h *history.Store) *Pipeline     { p.hist = h; return p }
func (p *Pipeline) WithArchive(a storage.CloudStorage) *Pipeline { p.arch = a; return p }
func (p *Pipeline) WithPublisher(pub Publisher) *Pipeline      { p.pub = pub; return p }

func (p *Pipeline) RunID() string { return p.runID }

// CaptureOnce runs one full capture pass: frame, preview, export,
// inference, result. Overflowed frames are dropped without reaching
// the accelerator.
func (p *Pipeline) CaptureOnce(ctx context.Context) (*infer.Outcome, error) {
	id := p.captureID
	p.captureID++

	if err := p.asm.Capture(p.src, p.frm); err != nil {
		if errors.Is(err, frame.ErrOverflow) && p.hist != nil {
			_ = p.hist.Add(ctx, history.Record{
				RunID: p.runID, CaptureID: id, Class: "", Overflow: true,
			})
		}
		return nil, err
	}
	metricCaptures.Inc()

	if p.conf.Stream.Preview {
		ramp := preview.RampStandard
		if p.conf.Stream.Detailed {
			ramp = preview.RampExtended
		}
		if err := preview.Render(p.out, p.frm.Accel, p.frm.W, p.frm.H, p.conf.Stream.PreviewRatio, ramp); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := export.Image(&buf, p.exportFn, p.frm.Accel, p.frm.W, p.frm.H, id); err != nil {
		return nil, err
	}
	metricExports.WithLabelValues(p.conf.Stream.Format).Inc()

	if err := p.infer(id); err != nil {
		return nil, err
	}
	o := &p.outcome

	if err := export.Result(&buf, id, p.className(o.Class), o.Confidence, o.TimeUS); err != nil {
		return nil, err
	}
	if _, err := p.out.Write(buf.Bytes()); err != nil {
		return nil, err
	}
	if p.conf.Stream.Detailed {
		p.printBreakdown(o)
	}
	p.publish(ctx, id, buf.Bytes())

	if p.hist != nil {
		err := p.hist.Add(ctx, history.Record{
			RunID:      p.runID,
			CaptureID:  id,
			Class:      p.className(o.Class),
			Confidence: o.Confidence,
			TimeUS:     o.TimeUS,
		})
		if err != nil {
			p.log.Error().Err(err).Msg("History write failed")
		}
	}

	p.log.Info().
		Int("capture", id).
		Str("class", p.className(o.Class)).
		Int("confidence", o.Confidence).
		Uint32("us", o.TimeUS).
		Msg("Capture classified")
	return o, nil
}

// infer feeds the packed frame to the accelerator and interprets the
// raw scores in place.
func (p *Pipeline) infer(id int) error {
	if err := p.sess.LoadInput(p.frm.Accel); err != nil {
		return fmt.Errorf("load capture %d: %w", id, err)
	}
	if err := p.sess.Run(&p.res); err != nil {
		return fmt.Errorf("run capture %d: %w", id, err)
	}
	metricInference.Observe(float64(p.res.TimeUS) / 1e6)

	p.outcome.Raw = p.res.Raw
	p.outcome.TimeUS = p.res.TimeUS
	infer.Interpret(&p.outcome)
	return nil
}

// printBreakdown writes the per-class probability table in tenths of
// a percent plus the prediction line, the way the serial console
// reports it.
func (p *Pipeline) printBreakdown(o *infer.Outcome) {
	fmt.Fprintf(p.out, "Classification results:\n")
	for i, v := range o.Softmax {
		digits, tenths := infer.PerMille(v)
		fmt.Fprintf(p.out, "[%7d] -> %20s: %d.%d%%\n", o.Raw[i], p.className(i), digits, tenths)
	}
	fmt.Fprintf(p.out, "\nApproximate inference time: %d us\n\n", o.TimeUS)
	fmt.Fprintf(p.out, "Prediction: %s (%d%% confidence)\n\n", p.className(o.Class), o.Confidence)
}

func (p *Pipeline) publish(ctx context.Context, id int, data []byte) {
	if p.pub != nil {
		p.pub.Publish(data)
	}
	if p.arch == nil || !p.conf.Archive.Enabled {
		return
	}
	name := fmt.Sprintf("%s-%06d.%s.txt", p.runID, id, p.conf.Stream.Format)
	if err := os.CheckCreateDir(p.conf.Archive.Dir); err == nil {
		if err := os.WriteFile(filepath.Join(p.conf.Archive.Dir, name), data, 0o644); err != nil {
			p.log.Error().Err(err).Msg("Local export copy failed")
		}
	}
	if err := p.arch.Save(ctx, name, data); err != nil {
		p.log.Error().Err(err).Str("object", name).Msg("Archive upload failed")
	}
}

func (p *Pipeline) className(i int) string {
	if i < 0 || i >= len(p.conf.Accelerator.Classes) {
		return fmt.Sprintf("class-%d", i)
	}
	return p.conf.Accelerator.Classes[i]
}

// Run executes the continuous live feed until Shutdown. Overflowed
// frames are skipped, any other failure stops the loop.
func (p *Pipeline) Run() {
	go func() {
		defer close(p.done)
		delay := p.conf.LiveFeed.Delay()
		if delay <= 0 {
			delay = time.Millisecond
		}
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				if _, err := p.CaptureOnce(context.Background()); err != nil {
					if errors.Is(err, frame.ErrOverflow) {
						continue
					}
					p.log.Error().Err(err).Msg("Live feed stopped")
					return
				}
			}
		}
	}()
}

func (p *Pipeline) Shutdown(ctx context.Context) error {
	close(p.stop)
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) String() string { return "pipeline: " + p.runID }
