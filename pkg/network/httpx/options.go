package httpx

import (
	"time"

	"github.com/edgevision/inferpipe/pkg/logger"
)

type Option func(*Options)

type Options struct {
	PortRoll     bool
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *logger.Logger
}

func (o *Options) override(options ...Option) {
	for _, opt := range options {
		opt(o)
	}
}

func WithPortRoll(v bool) Option            { return func(o *Options) { o.PortRoll = v } }
func WithLogger(log *logger.Logger) Option  { return func(o *Options) { o.Logger = log } }
func WithWriteTimeout(d time.Duration) Option { return func(o *Options) { o.WriteTimeout = d } }
