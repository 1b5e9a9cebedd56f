package service

import (
	"context"
	"errors"
	"fmt"
)

// Runnable is a long-lived background service of the daemon
// (monitoring endpoint, stream server, and so on).
type Runnable interface {
	Run()
	Shutdown(ctx context.Context) error
}

// Group runs a bunch of services together.
type Group struct {
	list []Runnable
}

func (g *Group) Add(services ...Runnable) { g.list = append(g.list, services...) }

// Start starts each service in the group in order.
func (g *Group) Start() {
	for _, s := range g.list {
		s.Run()
	}
}

// Shutdown stops every service, collecting failures instead of
// stopping at the first one.
func (g *Group) Shutdown(ctx context.Context) error {
	var errs []error
	for _, s := range g.list {
		if err := s.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, fmt.Errorf("service %v stop: %w", s, err))
		}
	}
	return errors.Join(errs...)
}
