// Package redistrict partitions the active cells of a map into K districts
// that are balanced in size and compact in shape, by stochastic local
// relaxation.
//
// 🚀 What is redistrict?
//
//	A small engine plus the tooling around it:
//		• Grid state: labels, per-district population and centroid sums
//		• Distance metrics: Euclidean, Manhattan, Chebyshev, cubic, quartic
//		• Connectivity guards: none, line of sight, local and global pathfinding
//		• Relaxation engine: budgeted, deadline-aware, deterministic per seed
//		• Hosts: masks from images, PNG export, live terminal view, run history
//
// ✨ How does it work?
//
//   - Every active cell starts with a label from a coarse spatial bucketing.
//   - Each iteration samples an interior cell on a district border, proposes
//     a neighbouring district, asks the guard whether the move may break
//     connectivity, and accepts it if the cell scores better there
//     (score = -population - distance to the centroid), or by chance.
//   - Aggregates are updated in O(1) per move, so millions of iterations per
//     second are routine.
//
// Under the hood:
//
//	grid/    : Mask, Grid, SetLabel, Verify, Components
//	metric/  : Metric enum and Eval
//	guard/   : Policy enum and Guard.Allow
//	relax/   : Score, Engine, Update, Stats
//	mask/    : image and builtin mask sources
//	render/  : palette, image, PNG export
//	config/  : viper-backed settings
//	session/ : engine lifecycle, live reconfiguration
//	metrics/ : Prometheus collector
//	store/   : SQLite run history
//	viewer/  : bubbletea terminal view
//	cmd/redistrict: run | view | tune | history
//
//	go install github.com/katalvlaran/redistrict/cmd/redistrict@latest
package redistrict
