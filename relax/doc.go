// Package relax drives the stochastic local relaxation that turns an initial
// bucketed labeling into balanced, compact districts.
//
// What
//
//   - Engine owns a *grid.Grid, a guard.Guard and a seeded random source.
//   - Update runs a bounded batch of relaxation iterations and returns Stats.
//     Each iteration samples an interior cell, proposes one of the distinct
//     differing axis-neighbor labels, consults the connectivity guard, and
//     either accepts randomly (Randomness) or greedily by Score.
//   - Score(x, y, l) = -population(l) - metric(|x-cx(l)|, |y-cy(l)|):
//     higher is better, so small and nearby districts win cells.
//
// Acceptance is greedy and temperature-free: a scored proposal is taken only
// when it strictly improves the score. The process converges toward a local
// optimum; it does not guarantee global balance.
//
// Sampling
//
//	Cells are drawn uniformly from the interior, excluding a border of
//	guard.Radius cells on each edge. Grids too narrow for that border fall
//	back to a one-cell border; grids of two cells or fewer along an axis
//	have no interior and Update returns immediately.
//
// Budget and cancellation
//
//   - IterationBudget bounds the iterations of one Update call; 0 runs none.
//   - TimeLimit (if > 0) and ctx are checked every 1024 iterations, never
//     mid-iteration, so every return leaves the grid invariant-consistent.
//   - Update is resumable: the next call continues from the current state
//     and random stream.
//
// Determinism
//
//	Same grid, same options, same seed and no wall-clock cutoff produce an
//	identical label grid. Seed 0 selects a fixed default seed.
//
// Concurrency
//
//	An Engine is single-threaded. Do not call Update concurrently, and do not
//	read the grid from another goroutine while Update runs.
//
// Options
//
//   - WithMetric(m)           distance metric for Score (default metric.Chebyshev).
//   - WithPolicy(p)           connectivity policy (default guard.NoChecks).
//   - WithRandomness(r)       acceptance override probability in [0,1] (default 0).
//   - WithIterationBudget(n)  iterations per Update, n ≥ 0 (default 100000).
//   - WithTimeLimit(d)        wall-clock budget per Update, 0 disables (default 30ms).
//   - WithSeed(s)             random seed (default 1234).
//
// Errors
//
//   - ErrNilGrid          if New receives a nil grid.
//   - ErrOptionViolation  for out-of-range option values.
//   - ctx.Err()           when ctx is cancelled during Update.
package relax
