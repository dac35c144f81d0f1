package distances

// Selection is an ordered choice of point indices (0-based). The zero value
// and All() select every point in natural order without materializing
// 0..n-1; Indices builds an explicit selection, which may repeat indices.
type Selection struct {
	idx      []int
	explicit bool
}

// All returns the selection of every point, in order.
func All() Selection { return Selection{} }

// Indices returns an explicit selection of the given 0-based indices.
// The slice is retained, not copied.
func Indices(idx ...int) Selection {
	if idx == nil {
		idx = []int{}
	}
	return Selection{idx: idx, explicit: true}
}

// IsAll reports whether s is the implicit full selection.
func (s Selection) IsAll() bool { return !s.explicit }

// Len returns the number of selected points in a set of n points.
func (s Selection) Len(n int) int {
	if !s.explicit {
		return n
	}
	return len(s.idx)
}

// At returns the point index at position i of the selection.
func (s Selection) At(i int) int {
	if !s.explicit {
		return i
	}
	return s.idx[i]
}

// Materialize returns the selected indices as a fresh slice.
func (s Selection) Materialize(n int) []int {
	out := make([]int, s.Len(n))
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

// validate checks every explicit entry against [0, n). All entries are
// examined and reported as one error.
func (s Selection) validate(name string, n int) error {
	if !s.explicit {
		return nil
	}
	var ie *IndexError
	for pos, v := range s.idx {
		if v < 0 || v >= n {
			if ie == nil {
				ie = &IndexError{Name: name, Position: pos, Value: v, UpperBound: n}
			}
			ie.Count++
		}
	}
	if ie != nil {
		return ie
	}
	return nil
}

// TranslateIndices converts a 1-based external index vector into a 0-based
// Selection over [0, upperBound). A nil vector yields All(). The input is
// copied; it is never modified. If any value falls outside [1, upperBound]
// a single *IndexError is returned and no selection is produced.
func TranslateIndices(external []int, upperBound int) (Selection, error) {
	return translateIndices("indices", external, upperBound)
}

func translateIndices(name string, external []int, upperBound int) (Selection, error) {
	if external == nil {
		return All(), nil
	}
	local := make([]int, len(external))
	var ie *IndexError
	for pos, v := range external {
		local[pos] = v - 1
		if local[pos] < 0 || local[pos] >= upperBound {
			if ie == nil {
				ie = &IndexError{Name: name, Position: pos, Value: v, UpperBound: upperBound}
			}
			ie.Count++
		}
	}
	if ie != nil {
		return Selection{}, ie
	}
	return Indices(local...), nil
}
