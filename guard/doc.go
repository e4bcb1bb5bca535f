// Package guard decides whether relabeling one border cell is topologically
// admissible for the districts involved.
//
// What:
//
//   - NoChecks:             every change passes.
//   - LineOfSight:          the cell Radius steps from the candidate toward the
//     new district's centroid must already belong to that district. This is a
//     best-effort heuristic and can both wrongly accept and wrongly reject.
//   - LocalPathfinding:     inside the (2·Radius+1)² window around the cell,
//     cells of the old label that were 8-connected before the change must stay
//     8-connected after it. Connectivity outside the window is not seen.
//   - ExpensivePathfinding: with the change applied virtually, each cell of
//     the 3×3 neighborhood must still reach its district's centroid through
//     8-connected same-label cells anywhere on the grid. Only those nine cells
//     are checked per proposal, not the whole district.
//
// A Guard owns its scratch buffers (window snapshot, visited flags, work
// lists, BFS stamps) and reuses them across calls. It is single-consumer:
// never call Allow on one Guard from two goroutines at once.
//
// No policy mutates the grid. ExpensivePathfinding substitutes the candidate
// label for the center cell while traversing instead of writing it.
//
// Complexity per call:
//
//   - NoChecks, LineOfSight: O(1).
//   - LocalPathfinding:      O(25·8), no allocations.
//   - ExpensivePathfinding:  O(9·W·H·8) worst case; allocation only when the
//     grid size changes.
//
// Errors:
//
//   - ErrUnknownPolicy: Parse received an unrecognised policy name.
package guard
