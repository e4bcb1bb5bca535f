package grid

import "errors"

// Sentinel errors for grid operations.
var (
	// ErrEmptyMask indicates the mask has no rows or no columns.
	ErrEmptyMask = errors.New("grid: mask must have at least one row and one column")
	// ErrMaskShape indicates the mask data length disagrees with Width×Height,
	// or that rows of a 2D mask have differing lengths.
	ErrMaskShape = errors.New("grid: mask data does not match its dimensions")
	// ErrOutOfBounds indicates coordinates outside the grid.
	ErrOutOfBounds = errors.New("grid: coordinates out of bounds")
	// ErrInactiveCell indicates an attempt to relabel a background cell.
	ErrInactiveCell = errors.New("grid: cell is inactive")
	// ErrLabelRange indicates a label outside [1, K].
	ErrLabelRange = errors.New("grid: label out of range")
	// ErrInvariant indicates that maintained aggregates disagree with the labels.
	ErrInvariant = errors.New("grid: invariant violated")
)

// Background is the label of inactive cells.
const Background = 0

// Neighbors8 lists the eight neighbor offsets in clockwise order starting north.
var Neighbors8 = [8][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}

// Neighbors4 lists the four axis-aligned neighbor offsets: N, E, S, W.
var Neighbors4 = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Mask is a row-major W×H grid of booleans marking active cells.
// Mask values are treated as immutable once handed to New.
type Mask struct {
	Width, Height int
	Active        []bool
}

// Grid is the mutable district state: labels plus per-label aggregates.
// It is not safe for concurrent use; readers must not run while a writer does.
type Grid struct {
	width, height int
	districts     int

	labels     []int32 // row-major, labels[y*width+x]
	population []int   // indexed by label, len = districts+1
	sumX, sumY []int64 // coordinate sums, indexed by label
}
