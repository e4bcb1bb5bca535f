package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/redistrict/config"
	"github.com/katalvlaran/redistrict/metrics"
	"github.com/katalvlaran/redistrict/render"
	"github.com/katalvlaran/redistrict/session"
	"github.com/katalvlaran/redistrict/store"
	"github.com/katalvlaran/redistrict/viewer"
)

func runCmd(ctx context.Context, args []string) error {
	c := newCommon("run")
	updates := c.fs.Int("updates", 100, "number of engine updates")
	out := c.fs.String("out", "", "PNG output path (default from config)")
	scale := c.fs.Int("scale", 0, "upscale factor (default from config)")
	record := c.fs.Bool("record", true, "record the run in the history database")
	metricsAddr := c.fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	cfg, err := c.parse(args)
	if err != nil {
		return err
	}
	logger, err := c.logger(nil)
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.Output.Path = *out
	}
	if *scale > 0 {
		cfg.Output.Scale = *scale
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	s, err := session.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := s.Restart(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	s.Observe(metrics.New(reg).Observe)
	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer stop()
	}

	started := time.Now()
	n, err := relaxFor(ctx, s, *updates)
	if err != nil {
		return err
	}
	if n < *updates {
		logger.Warn("interrupted", "updates", n, "requested", *updates)
	}

	// Results are still exported after an interrupt.
	ctx = context.WithoutCancel(ctx)
	return finish(ctx, s, logger, started, n, *record)
}

// relaxFor runs up to n updates and returns how many completed. Cancellation
// ends the loop without an error.
func relaxFor(ctx context.Context, s *session.Session, n int) (int, error) {
	for i := 0; i < n; i++ {
		if _, err := s.Update(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return i, nil
			}
			return i, err
		}
	}

	return n, nil
}

// finish exports the image, logs a summary and optionally records the run.
func finish(ctx context.Context, s *session.Session, logger *slog.Logger, started time.Time, updates int, record bool) error {
	cfg := s.Config()
	g := s.Grid()
	if err := g.Verify(); err != nil {
		return err
	}

	img := render.Upscale(render.Image(g, render.Palette(g.Districts()), true), cfg.Output.Scale)
	if err := render.SavePNG(cfg.Output.Path, img); err != nil {
		return err
	}

	districts := store.Summarize(g)
	fragmented := 0
	for _, d := range districts {
		if d.Components > 1 {
			fragmented++
		}
	}
	tot := s.Totals()
	logger.Info("run finished",
		"updates", updates,
		"iterations", tot.Iterations,
		"accepted", tot.Accepted,
		"acceptance", fmt.Sprintf("%.4f", tot.AcceptanceRate()),
		"fragmented", fragmented,
		"output", cfg.Output.Path,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	if !record {
		return nil
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	id, err := db.RecordRun(ctx, newRun(cfg, s, started, updates), districts)
	if err != nil {
		return err
	}
	logger.Info("run recorded", "id", id, "store", cfg.Store.Path)

	return nil
}

func newRun(cfg config.Config, s *session.Session, started time.Time, updates int) store.Run {
	g := s.Grid()

	return store.Run{
		StartedAt:  started,
		Source:     cfg.Mask.Source,
		Width:      g.Width(),
		Height:     g.Height(),
		Districts:  g.Districts(),
		Metric:     cfg.Metric,
		Policy:     cfg.Policy,
		Randomness: cfg.Randomness,
		Seed:       cfg.Seed,
		Updates:    updates,
		Stats:      s.Totals(),
		Output:     cfg.Output.Path,
	}
}

// serveMetrics exposes reg on addr and returns a shutdown func.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "addr", addr, "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func viewCmd(ctx context.Context, args []string) error {
	c := newCommon("view")
	frame := c.fs.Duration("frame", viewer.DefaultFrame, "delay between frames")
	cfg, err := c.parse(args)
	if err != nil {
		return err
	}
	// Logs would tear the alternate screen; keep only errors.
	c.logLevel = "error"
	logger, err := c.logger(nil)
	if err != nil {
		return err
	}

	s, err := session.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := s.Restart(ctx); err != nil {
		return err
	}

	m := viewer.New(ctx, s, viewer.Options{Frame: *frame, ConfigPath: c.path})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}
