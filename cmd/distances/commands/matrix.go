package commands

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

type matrixResult struct {
	Points    []string  `json:"points" yaml:"points"`
	Distances []float64 `json:"distances" yaml:"distances"`
}

type columnsResult struct {
	Rows      []string    `json:"rows" yaml:"rows"`
	Columns   []string    `json:"columns" yaml:"columns"`
	Distances [][]float64 `json:"distances" yaml:"distances"`
}

func newMatrixCommand(g *globalFlags) *cobra.Command {
	var indices []int

	cmd := &cobra.Command{
		Use:   "matrix [points.csv]",
		Short: "Condensed pairwise distance matrix",
		Long: `Print the condensed distance matrix of the selected points: for m points,
m*(m-1)/2 distances in pair order (1,2), (1,3), ..., (1,m), (2,3), ...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd, args)
			if err != nil {
				return err
			}
			sel := indexFlag(cmd, "indices", indices)
			condensed, err := s.dataset.DistanceMatrix(sel)
			if err != nil {
				return err
			}
			labels, err := s.dataset.Labels(sel)
			if err != nil {
				return err
			}
			return s.emit(matrixResult{Points: labels, Distances: condensed})
		},
	}
	cmd.Flags().IntSliceVar(&indices, "indices", nil, "1-based point indices (default: all)")
	return cmd
}

func newColumnsCommand(g *globalFlags) *cobra.Command {
	var columns, rows []int

	cmd := &cobra.Command{
		Use:   "columns [points.csv]",
		Short: "Distances between row points and column points",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd, args)
			if err != nil {
				return err
			}
			colSel := indexFlag(cmd, "columns", columns)
			rowSel := indexFlag(cmd, "rows", rows)
			m, err := s.dataset.DistanceColumns(colSel, rowSel)
			if err != nil {
				return err
			}
			res := columnsResult{}
			if res.Rows, err = s.dataset.Labels(rowSel); err != nil {
				return err
			}
			if res.Columns, err = s.dataset.Labels(colSel); err != nil {
				return err
			}
			res.Distances = denseRows(m)
			return s.emit(res)
		},
	}
	cmd.Flags().IntSliceVar(&columns, "columns", nil, "1-based column point indices (required)")
	cmd.Flags().IntSliceVar(&rows, "rows", nil, "1-based row point indices (default: all)")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

// denseRows copies m into one slice per row.
func denseRows(m *mat.Dense) [][]float64 {
	if m.IsEmpty() {
		return [][]float64{}
	}
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
