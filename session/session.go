// Package session owns one interactive relaxation: the configuration, the
// mask it was built from, the grid and the engine.
//
// Configuration changes that keep the grid meaningful (metric, policy,
// randomness, iteration budget, time limit) are applied to the live engine.
// Changes to the district count, seed or mask rebuild the grid from scratch.
// If a rebuild fails, for instance because the mask file cannot be decoded,
// the previous grid and configuration stay in place.
//
// A Session is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/katalvlaran/redistrict/config"
	"github.com/katalvlaran/redistrict/grid"
	"github.com/katalvlaran/redistrict/mask"
	"github.com/katalvlaran/redistrict/relax"
)

// ErrNotInitialized is returned by Update before the first successful
// Restart or Apply.
var ErrNotInitialized = errors.New("session: not initialized")

// Observer receives the stats of every Update together with the grid.
type Observer func(st relax.Stats, g *grid.Grid)

// Session couples a configuration with a running engine.
type Session struct {
	cfg    config.Config
	logger *slog.Logger

	mask     grid.Mask
	maskKey  config.MaskConfig
	hasMask  bool
	grid     *grid.Grid
	engine   *relax.Engine
	gen      int
	total    relax.Stats
	watchers []Observer
}

// New validates cfg and returns an uninitialised session; call Restart to
// build the grid. A nil logger discards output.
func New(cfg config.Config, logger *slog.Logger) (*Session, error) {
	cfg, err := config.Validate(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Session{cfg: cfg, logger: logger}, nil
}

// Config returns the active configuration.
func (s *Session) Config() config.Config { return s.cfg }

// Grid returns the current grid, or nil before initialisation.
func (s *Session) Grid() *grid.Grid { return s.grid }

// Generation counts successful (re)initialisations.
func (s *Session) Generation() int { return s.gen }

// Totals returns the stats accumulated since the last initialisation.
func (s *Session) Totals() relax.Stats { return s.total }

// Observe registers fn to run after every Update.
func (s *Session) Observe(fn Observer) {
	if fn != nil {
		s.watchers = append(s.watchers, fn)
	}
}

// Restart rebuilds the grid from the active configuration. The mask is
// reloaded only if it was never loaded.
func (s *Session) Restart(ctx context.Context) error {
	return s.rebuild(ctx, s.cfg, !s.hasMask)
}

// Apply switches to cfg. Live settings are forwarded to the engine; a new
// district count, seed or mask rebuilds the grid. On error the previous
// configuration and grid are kept.
func (s *Session) Apply(ctx context.Context, cfg config.Config) error {
	cfg, err := config.Validate(cfg)
	if err != nil {
		return err
	}

	reloadMask := !s.hasMask || cfg.Mask != s.maskKey
	if s.engine == nil || reloadMask || cfg.Districts != s.cfg.Districts || cfg.Seed != s.cfg.Seed {
		return s.rebuild(ctx, cfg, reloadMask)
	}

	m, err := cfg.MetricValue()
	if err != nil {
		return err
	}
	p, err := cfg.PolicyValue()
	if err != nil {
		return err
	}
	e := s.engine
	if err := errors.Join(
		e.SetMetric(m),
		e.SetPolicy(p),
		e.SetRandomness(cfg.Randomness),
		e.SetIterationBudget(cfg.Iterations),
		e.SetTimeLimit(cfg.TimeLimit),
	); err != nil {
		return err
	}
	if changed := diff(s.cfg, cfg); len(changed) > 0 {
		s.logger.Info("settings changed", changed...)
	}
	s.cfg = cfg

	return nil
}

// Update runs one engine step and notifies observers.
func (s *Session) Update(ctx context.Context) (relax.Stats, error) {
	if s.engine == nil {
		return relax.Stats{}, ErrNotInitialized
	}
	st, err := s.engine.Update(ctx)
	s.total.Add(st)
	for _, fn := range s.watchers {
		fn(st, s.grid)
	}

	return st, err
}

func (s *Session) rebuild(ctx context.Context, cfg config.Config, reloadMask bool) error {
	m := s.mask
	if reloadMask {
		loaded, err := mask.Load(ctx, cfg.Mask.Source, mask.Options{
			Threshold: cfg.Mask.Threshold,
			Width:     cfg.Mask.Width,
		})
		if err != nil {
			s.logger.Error("mask load failed", "source", cfg.Mask.Source, "err", err)
			return fmt.Errorf("session: load mask: %w", err)
		}
		m = loaded
	}

	g, err := grid.New(m, cfg.Districts)
	if err != nil {
		s.logger.Error("grid init failed", "source", cfg.Mask.Source, "err", err)
		return fmt.Errorf("session: init grid: %w", err)
	}
	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}
	e, err := relax.New(g, opts...)
	if err != nil {
		return fmt.Errorf("session: init engine: %w", err)
	}

	s.mask, s.maskKey, s.hasMask = m, cfg.Mask, true
	s.cfg, s.grid, s.engine = cfg, g, e
	s.total = relax.Stats{}
	s.gen++
	s.logger.Info("grid initialized",
		"generation", s.gen,
		"source", cfg.Mask.Source,
		"width", g.Width(),
		"height", g.Height(),
		"active", m.Count(),
		"districts", g.Districts(),
	)

	return nil
}

// engineOptions translates cfg into relax options.
func engineOptions(cfg config.Config) ([]relax.Option, error) {
	m, err := cfg.MetricValue()
	if err != nil {
		return nil, err
	}
	p, err := cfg.PolicyValue()
	if err != nil {
		return nil, err
	}

	return []relax.Option{
		relax.WithMetric(m),
		relax.WithPolicy(p),
		relax.WithRandomness(cfg.Randomness),
		relax.WithIterationBudget(cfg.Iterations),
		relax.WithTimeLimit(cfg.TimeLimit),
		relax.WithSeed(cfg.Seed),
	}, nil
}

// diff lists live settings that differ between a and b as slog key/values.
func diff(a, b config.Config) []any {
	var kv []any
	if a.Metric != b.Metric {
		kv = append(kv, "metric", b.Metric)
	}
	if a.Policy != b.Policy {
		kv = append(kv, "policy", b.Policy)
	}
	if a.Randomness != b.Randomness {
		kv = append(kv, "randomness", b.Randomness)
	}
	if a.Iterations != b.Iterations {
		kv = append(kv, "iterations", b.Iterations)
	}
	if a.TimeLimit != b.TimeLimit {
		kv = append(kv, "time_limit", b.TimeLimit)
	}

	return kv
}
