package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/katalvlaran/redistrict/guard"
	"github.com/katalvlaran/redistrict/metric"
	"github.com/katalvlaran/redistrict/session"
	"github.com/katalvlaran/redistrict/store"
)

// tuneResult is one metric/policy combination.
type tuneResult struct {
	metric, policy string
	accepted       int
	rate           float64
	fragmented     int
	spread         int
	elapsed        time.Duration
}

// tuneCmd runs the same map under several metrics and policies and prints
// a comparison table.
func tuneCmd(ctx context.Context, args []string, w io.Writer) error {
	c := newCommon("tune")
	updates := c.fs.Int("updates", 20, "engine updates per combination")
	metricsList := c.fs.String("metrics", "", "comma-separated metrics (default all)")
	policiesList := c.fs.String("policies", "", "comma-separated policies (default all)")
	cfg, err := c.parse(args)
	if err != nil {
		return err
	}
	logger, err := c.logger(nil)
	if err != nil {
		return err
	}

	ms := metric.All()
	if *metricsList != "" {
		ms = nil
		for _, name := range strings.Split(*metricsList, ",") {
			m, err := metric.Parse(name)
			if err != nil {
				return err
			}
			ms = append(ms, m)
		}
	}
	ps := guard.Policies()
	if *policiesList != "" {
		ps = nil
		for _, name := range strings.Split(*policiesList, ",") {
			p, err := guard.Parse(name)
			if err != nil {
				return err
			}
			ps = append(ps, p)
		}
	}

	var results []tuneResult
combos:
	for _, m := range ms {
		for _, p := range ps {
			run := cfg
			run.Metric, run.Policy = m.String(), p.String()
			s, err := session.New(run, logger)
			if err != nil {
				return err
			}
			if err := s.Restart(ctx); err != nil {
				return err
			}
			start := time.Now()
			if _, err := relaxFor(ctx, s, *updates); err != nil {
				return err
			}
			results = append(results, summarize(run.Metric, run.Policy, s, time.Since(start)))
			if ctx.Err() != nil {
				break combos
			}
		}
	}

	_, err = fmt.Fprintln(w, tuneTable(results))

	return err
}

func summarize(m, p string, s *session.Session, elapsed time.Duration) tuneResult {
	r := tuneResult{metric: m, policy: p, elapsed: elapsed}
	tot := s.Totals()
	r.accepted = tot.Accepted
	r.rate = tot.AcceptanceRate()

	lo, hi := -1, 0
	for _, d := range store.Summarize(s.Grid()) {
		if d.Components > 1 {
			r.fragmented++
		}
		if lo < 0 || d.Population < lo {
			lo = d.Population
		}
		if d.Population > hi {
			hi = d.Population
		}
	}
	r.spread = hi - lo

	return r
}

func tuneTable(results []tuneResult) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("metric", "policy", "accepted", "rate", "fragmented", "spread", "time")
	for _, r := range results {
		t.Row(r.metric, r.policy,
			fmt.Sprint(r.accepted),
			fmt.Sprintf("%.4f", r.rate),
			fmt.Sprint(r.fragmented),
			fmt.Sprint(r.spread),
			r.elapsed.Round(time.Millisecond).String(),
		)
	}

	return t.String()
}
