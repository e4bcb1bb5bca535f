// Package grid owns the label array of a districting run and the per-label
// aggregates derived from it.
//
// What:
//
//   - Mask is the immutable W×H "active" input handed over by a mask source.
//   - Grid holds one label per cell: 0 marks an inactive (background) cell,
//     1..K name a district. Label 0 is fixed at construction and never written.
//   - For every label in [0, K] the grid maintains population and the sums of
//     cell coordinates, so centroids are available in O(1).
//   - SetLabel is the only mutation primitive; it updates the label and both
//     aggregates in O(1).
//
// Why:
//
//   - The relaxation loop evaluates millions of proposals per update and needs
//     population and centroid lookups without rescanning the grid.
//   - Verify recomputes every aggregate from scratch so tests (and cautious
//     hosts) can assert that incremental maintenance never drifted.
//
// Initial assignment:
//
//	dcx = round(sqrt(K)), dcy = ceil(K / dcx)
//	label(x, y) = clamp(1 + x*dcx/W + (y*dcy/H)*dcx, 1, K)   for active cells
//
// Complexity:
//
//   - New:        O(W×H) time and memory.
//   - SetLabel:   O(1).
//   - Verify:     O(W×H + K).
//   - Components: O(W×H×8) time, O(W×H) memory.
//
// Errors:
//
//   - ErrEmptyMask:    mask has no rows or no columns.
//   - ErrMaskShape:    mask data does not match its declared dimensions.
//   - ErrOutOfBounds:  coordinates outside the grid.
//   - ErrInactiveCell: attempt to relabel a background cell.
//   - ErrLabelRange:   target label outside [1, K].
//   - ErrInvariant:    Verify found aggregates inconsistent with the labels.
package grid
