// Package keyboard keeps the active keyboard layout and answers sequence
// queries against it.
//
// The layout comes from the Keymapp database when it can be read and decoded
// and from the built-in standard board otherwise. It is reloaded when the
// database changes or a keyboard is plugged in or out.
package keyboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/victorgalvez56/nvim-voice/internal/device"
	"github.com/victorgalvez56/nvim-voice/internal/geometry"
	"github.com/victorgalvez56/nvim-voice/internal/layout"
	"github.com/victorgalvez56/nvim-voice/internal/metrics"
	"github.com/victorgalvez56/nvim-voice/internal/sequence"
	"github.com/victorgalvez56/nvim-voice/internal/watcher"
)

// Source supplies decoded Keymapp layouts. LoadLayout is given the
// fingerprint of the active document and returns a nil layout when the
// newest document still has that fingerprint. Decode failures wrap
// layout.ErrNoLayout; anything else is a read failure.
type Source interface {
	LoadLayout(ctx context.Context, prev string) (*layout.KeyboardLayout, string, error)
}

// Origin says where the active layout came from.
type Origin string

const (
	OriginKeymapp  Origin = "keymapp"
	OriginStandard Origin = "standard"
)

// Status describes the outcome of a reload.
type Status struct {
	Origin   Origin
	Title    string
	Geometry geometry.Geometry
	Version  uint64
	// Changed is false when the reload found the same document as before.
	Changed bool
	// Reason holds the load or decode failure that caused a fallback.
	Reason string
}

// Service owns the active layout snapshot.
type Service struct {
	src  Source
	snap *layout.Snapshot
	log  *slog.Logger

	watchPaths []string
	debounce   time.Duration
	monitor    *device.Monitor
	metrics    *metrics.Layout

	// reloadMu serializes reloads; readers go through snap.
	reloadMu    sync.Mutex
	fingerprint string
	status      Status
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithWatch reloads whenever any of paths settles after a change.
func WithWatch(paths []string, debounce time.Duration) Option {
	return func(s *Service) {
		s.watchPaths = paths
		s.debounce = debounce
	}
}

// WithMonitor reloads whenever m reports a connect or disconnect.
func WithMonitor(m *device.Monitor) Option {
	return func(s *Service) { s.monitor = m }
}

// WithMetrics records reloads, fallbacks and resolutions in m.
func WithMetrics(m *metrics.Layout) Option {
	return func(s *Service) { s.metrics = m }
}

const standardFingerprint = "standard"

// New returns a Service holding the standard layout until the first Reload.
func New(src Source, opts ...Option) *Service {
	std := layout.Standard()
	s := &Service{
		src:         src,
		snap:        layout.NewSnapshot(std),
		log:         slog.Default(),
		debounce:    500 * time.Millisecond,
		fingerprint: standardFingerprint,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status = Status{
		Origin:   OriginStandard,
		Title:    std.Title,
		Geometry: std.Geometry,
		Version:  s.snap.Version(),
	}
	return s
}

// Layout returns the active layout.
func (s *Service) Layout() *layout.KeyboardLayout {
	return s.snap.Load()
}

// Version returns the number of layouts published so far.
func (s *Service) Version() uint64 {
	return s.snap.Version()
}

// Status returns the outcome of the most recent reload.
func (s *Service) Status() Status {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.status
}

// Resolve resolves seq against the active layout.
func (s *Service) Resolve(seq string) sequence.HighlightMap {
	if s.metrics != nil {
		s.metrics.Resolves.Inc()
	}
	return sequence.Resolve(seq, s.snap.Load())
}

// Explain renders seq as finger hints for the active layout.
func (s *Service) Explain(seq string) string {
	return sequence.Explain(seq, s.snap.Load())
}

// Describe lists the active layout's base-layer keys.
func (s *Service) Describe() []layout.KeyDescription {
	return layout.Describe(s.snap.Load())
}

// Reload reads the source and publishes the resulting layout. Any failure
// publishes the standard layout instead; Reload itself never fails. A
// document identical to the active one is not republished.
func (s *Service) Reload(ctx context.Context) Status {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.metrics != nil {
		start := time.Now()
		defer func() { s.record(start) }()
	}

	if s.src == nil {
		return s.fallback("no layout source configured")
	}

	l, fp, err := s.src.LoadLayout(ctx, s.fingerprint)
	switch {
	case errors.Is(err, layout.ErrNoLayout):
		s.log.Warn("keymapp layout rejected", "error", err)
		return s.fallback(err.Error())
	case err != nil:
		s.log.Info("keymapp layout unavailable", "error", err)
		return s.fallback(err.Error())
	case l == nil:
		s.status.Changed = false
		return s.status
	}

	s.fingerprint = fp
	s.status = Status{
		Origin:   OriginKeymapp,
		Title:    l.Title,
		Geometry: l.Geometry,
		Version:  s.snap.Store(l),
		Changed:  true,
	}
	s.log.Info("loaded keyboard layout",
		"title", l.Title,
		"geometry", l.Geometry.DisplayName(),
		"layers", len(l.Layers),
		"version", s.status.Version,
	)
	return s.status
}

// record updates the metrics after a reload. Called with reloadMu held.
func (s *Service) record(start time.Time) {
	m := s.metrics
	m.Reloads.Inc()
	m.ReloadDuration.Since(start)
	if !s.status.Changed {
		m.Unchanged.Inc()
	}
	if s.status.Reason != "" {
		m.Fallbacks.Inc()
	}
	m.Version.Set(int64(s.status.Version))
	m.Keymapp.SetBool(s.status.Origin == OriginKeymapp)
}

// fallback publishes the standard layout unless it is already active.
// Called with reloadMu held.
func (s *Service) fallback(reason string) Status {
	if s.fingerprint == standardFingerprint {
		s.status.Changed = false
		s.status.Reason = reason
		return s.status
	}
	std := layout.Standard()
	s.fingerprint = standardFingerprint
	s.status = Status{
		Origin:   OriginStandard,
		Title:    std.Title,
		Geometry: std.Geometry,
		Version:  s.snap.Store(std),
		Changed:  true,
		Reason:   reason,
	}
	s.log.Info("using standard layout", "reason", reason, "version", s.status.Version)
	return s.status
}

// Run reloads once and then keeps the layout current until ctx is
// cancelled. Watch and device failures are logged; the service keeps
// serving whatever layout it has.
func (s *Service) Run(ctx context.Context) error {
	s.Reload(ctx)

	trigger := make(chan string, 1)
	notify := func(why string) {
		select {
		case trigger <- why:
		default:
		}
	}

	var events <-chan watcher.Event
	var watchErrs <-chan error
	if len(s.watchPaths) > 0 {
		w, err := watcher.New(s.watchPaths, s.debounce)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			s.log.Warn("layout watch disabled", "error", err)
			if w != nil {
				w.Stop()
			}
		} else {
			defer w.Stop()
			events, watchErrs = w.Events(), w.Errors()
		}
	}

	if s.monitor != nil {
		s.monitor.OnChange(func(connected bool, _ []device.Info) {
			if s.metrics != nil {
				s.metrics.Connected.SetBool(connected)
			}
			if connected {
				notify("keyboard connected")
			} else {
				notify("keyboard disconnected")
			}
		})
		go s.monitor.Run(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.log.Debug("keymapp database changed", "path", ev.Path)
			s.Reload(ctx)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			s.log.Warn("layout watch error", "error", err)
		case why := <-trigger:
			s.log.Debug("reloading layout", "trigger", why)
			s.Reload(ctx)
		}
	}
}
