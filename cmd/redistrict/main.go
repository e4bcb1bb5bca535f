// Command redistrict relaxes a map into compact, balanced districts.
//
//	redistrict run      [flags]   relax headless, export a PNG and record the run
//	redistrict view     [flags]   live terminal view
//	redistrict tune     [flags]   compare metrics and policies on one map
//	redistrict history  [flags]   list or show recorded runs
//
// Every subcommand reads the configuration file and REDISTRICT_* variables
// first; flags given on the command line win.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: redistrict <run|view|tune|history> [flags]\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		err = runCmd(ctx, args)
	case "view":
		err = viewCmd(ctx, args)
	case "tune":
		err = tuneCmd(ctx, args, os.Stdout)
	case "history":
		err = historyCmd(ctx, args, os.Stdout)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("redistrict failed", "err", err)
		os.Exit(1)
	}
}
