package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/katalvlaran/redistrict/config"
)

// common holds the flags shared by every subcommand.
type common struct {
	fs       *flag.FlagSet
	path     string
	logLevel string

	districts  int
	metric     string
	policy     string
	randomness float64
	iterations int
	timeLimit  time.Duration
	seed       int64
	mask       string
	threshold  int
	width      int
	storePath  string
}

func newCommon(name string) *common {
	c := &common{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	fs := c.fs
	d := config.Default()
	fs.StringVar(&c.path, "config", "", "config file (default $REDISTRICT_CONFIG or "+config.DefaultPath()+")")
	fs.StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.IntVar(&c.districts, "districts", d.Districts, "number of districts")
	fs.StringVar(&c.metric, "metric", d.Metric, "distance metric: euclidean, manhattan, chebyshev, cubic, quartic")
	fs.StringVar(&c.policy, "policy", d.Policy, "connectivity policy: none, line-of-sight, local-pathfinding, expensive-pathfinding")
	fs.Float64Var(&c.randomness, "randomness", d.Randomness, "probability of accepting a proposal without scoring")
	fs.IntVar(&c.iterations, "iterations", d.Iterations, "iterations per update")
	fs.DurationVar(&c.timeLimit, "time-limit", d.TimeLimit, "wall-clock limit per update (0 disables)")
	fs.Int64Var(&c.seed, "seed", d.Seed, "random seed")
	fs.StringVar(&c.mask, "mask", d.Mask.Source, "mask image path or builtin:star|circle|square|ring")
	fs.IntVar(&c.threshold, "threshold", d.Mask.Threshold, "mask activity threshold on red*alpha/255")
	fs.IntVar(&c.width, "width", d.Mask.Width, "resample the mask to this width (0 keeps native)")
	fs.StringVar(&c.storePath, "store", "", "run history database (default from config)")

	return c
}

// parse parses args and returns the loaded configuration with every flag that
// was set explicitly layered on top.
func (c *common) parse(args []string) (config.Config, error) {
	if err := c.fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(c.path)
	if err != nil {
		return config.Config{}, err
	}

	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "districts":
			cfg.Districts = c.districts
		case "metric":
			cfg.Metric = c.metric
		case "policy":
			cfg.Policy = c.policy
		case "randomness":
			cfg.Randomness = c.randomness
		case "iterations":
			cfg.Iterations = c.iterations
		case "time-limit":
			cfg.TimeLimit = c.timeLimit
		case "seed":
			cfg.Seed = c.seed
		case "mask":
			cfg.Mask.Source = c.mask
		case "threshold":
			cfg.Mask.Threshold = c.threshold
		case "width":
			cfg.Mask.Width = c.width
		case "store":
			cfg.Store.Path = c.storePath
		}
	})

	return config.Validate(cfg)
}

// logger builds the text logger for the requested level.
func (c *common) logger(w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.logLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.logLevel, err)
	}
	if w == nil {
		w = os.Stderr
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(l)

	return l, nil
}
