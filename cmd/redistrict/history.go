package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/katalvlaran/redistrict/store"
)

// historyCmd lists recorded runs, or shows one run's districts with -id.
func historyCmd(ctx context.Context, args []string, w io.Writer) error {
	c := newCommon("history")
	limit := c.fs.Int("limit", 20, "number of runs to list (0 for all)")
	id := c.fs.String("id", "", "show the districts of one run")
	cfg, err := c.parse(args)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if *id != "" {
		run, districts, err := db.GetRun(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %s  %dx%d  %s/%s  randomness %.2f  seed %d\n",
			run.ID, run.StartedAt.Local().Format(time.DateTime), run.Width, run.Height,
			run.Metric, run.Policy, run.Randomness, run.Seed)
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("district", "population", "centroid", "parts")
		for _, d := range districts {
			t.Row(fmt.Sprint(d.District), fmt.Sprint(d.Population),
				fmt.Sprintf("(%.1f, %.1f)", d.CentroidX, d.CentroidY), fmt.Sprint(d.Components))
		}
		_, err = fmt.Fprintln(w, t.String())
		return err
	}

	runs, err := db.ListRuns(ctx, *limit)
	if err != nil {
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("id", "started", "source", "K", "metric", "policy", "iterations", "accepted")
	for _, r := range runs {
		t.Row(r.ID, r.StartedAt.Local().Format(time.DateTime), r.Source, fmt.Sprint(r.Districts),
			r.Metric, r.Policy, fmt.Sprint(r.Stats.Iterations), fmt.Sprint(r.Stats.Accepted))
	}
	_, err = fmt.Fprintln(w, t.String())

	return err
}
