package distances

import "strconv"

// Labels returns a human-readable label for each of the given 1-based
// point indices: the point's id when the dataset has ids, otherwise the
// index itself in decimal. A nil vector labels every point.
func (d *Dataset) Labels(indices []int) ([]string, error) {
	sel, err := translateIndices("indices", indices, d.points.n)
	if err != nil {
		return nil, err
	}
	n := sel.Len(d.points.n)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		p := sel.At(i)
		if d.ids != nil {
			out[i] = d.ids[p]
		} else {
			out[i] = strconv.Itoa(p + 1)
		}
	}
	return out, nil
}
