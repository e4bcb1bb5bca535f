package grid

// NewMask allocates an all-inactive mask of the given size.
// Returns ErrEmptyMask if either dimension is not positive.
func NewMask(width, height int) (Mask, error) {
	if width <= 0 || height <= 0 {
		return Mask{}, ErrEmptyMask
	}

	return Mask{Width: width, Height: height, Active: make([]bool, width*height)}, nil
}

// MaskFrom2D builds a Mask from rows of booleans, rows[y][x].
// It deep-copies the input. Returns ErrEmptyMask for no rows or no columns,
// ErrMaskShape if any row length differs.
// Complexity: O(W×H).
func MaskFrom2D(rows [][]bool) (Mask, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Mask{}, ErrEmptyMask
	}
	h, w := len(rows), len(rows[0])
	m := Mask{Width: w, Height: h, Active: make([]bool, w*h)}
	for y, row := range rows {
		if len(row) != w {
			return Mask{}, ErrMaskShape
		}
		copy(m.Active[y*w:(y+1)*w], row)
	}

	return m, nil
}

// FullMask returns a mask with every cell active.
func FullMask(width, height int) (Mask, error) {
	m, err := NewMask(width, height)
	if err != nil {
		return Mask{}, err
	}
	for i := range m.Active {
		m.Active[i] = true
	}

	return m, nil
}

// validate checks dimensions and backing length.
func (m Mask) validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return ErrEmptyMask
	}
	if len(m.Active) != m.Width*m.Height {
		return ErrMaskShape
	}

	return nil
}

// At reports whether (x,y) is active. Out-of-range coordinates are inactive.
func (m Mask) At(x, y int) bool {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return false
	}

	return m.Active[y*m.Width+x]
}

// Set marks (x,y) active or inactive. Out-of-range coordinates are ignored.
func (m Mask) Set(x, y int, active bool) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	m.Active[y*m.Width+x] = active
}

// Count returns the number of active cells.
func (m Mask) Count() int {
	n := 0
	for _, a := range m.Active {
		if a {
			n++
		}
	}

	return n
}
