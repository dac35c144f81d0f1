package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// points is a parsed CSV point file.
type points struct {
	data []float64 // row-major coordinates
	ids  []string  // nil unless the file has an id column
	n    int
	dims int
}

// readPoints parses a CSV point file. path "-" reads from stdin. Lines
// starting with '#' are comments. With ids set, the first column of every
// row is taken as the point id. Every coordinate must be a finite number
// and every row must have the same number of columns.
func readPoints(path string, stdin io.Reader, ids bool) (*points, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open points: %w", err)
		}
		defer f.Close()
		r = f
	}

	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	first := 0
	if ids {
		first = 1
	}

	p := &points{}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read points: %w", err)
		}
		if p.n == 0 {
			p.dims = len(rec) - first
			if p.dims < 1 {
				return nil, fmt.Errorf("read points: row %d has no coordinates", row)
			}
		}
		if ids {
			p.ids = append(p.ids, strings.TrimSpace(rec[0]))
		}
		for col, field := range rec[first:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("read points: row %d column %d: %w", row, col+first+1, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("read points: row %d column %d: non-finite coordinate", row, col+first+1)
			}
			p.data = append(p.data, v)
		}
		p.n++
	}
	if p.n == 0 {
		return nil, errors.New("read points: no points")
	}
	return p, nil
}
