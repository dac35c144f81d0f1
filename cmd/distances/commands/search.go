package commands

import (
	"github.com/spf13/cobra"

	"github.com/TrevorS/distances"
)

type farthestEntry struct {
	Query    string  `json:"query" yaml:"query"`
	Farthest string  `json:"farthest" yaml:"farthest"`
	Index    int     `json:"index" yaml:"index"`
	Distance float64 `json:"distance" yaml:"distance"`
}

type neighbor struct {
	Index    int     `json:"index" yaml:"index"`
	Label    string  `json:"label" yaml:"label"`
	Distance float64 `json:"distance" yaml:"distance"`
}

type knnEntry struct {
	Query     string     `json:"query" yaml:"query"`
	Index     int        `json:"index" yaml:"index"`
	Neighbors []neighbor `json:"neighbors" yaml:"neighbors"`
}

type knnResult struct {
	K        int        `json:"k" yaml:"k"`
	Radius   float64    `json:"radius,omitempty" yaml:"radius,omitempty"`
	Rejected int        `json:"rejected" yaml:"rejected"`
	Results  []knnEntry `json:"results" yaml:"results"`
}

func newFarthestCommand(g *globalFlags) *cobra.Command {
	var query, search []int

	cmd := &cobra.Command{
		Use:   "farthest [points.csv]",
		Short: "Farthest search point of each query point",
		Long: `For each query point print the farthest point among the search points.
When several search points are equally far the last one is reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd, args)
			if err != nil {
				return err
			}
			qSel := indexFlag(cmd, "query", query)
			res, err := s.dataset.MaxDistanceSearch(qSel, indexFlag(cmd, "search", search))
			if err != nil {
				return err
			}
			queryLabels, err := s.dataset.Labels(qSel)
			if err != nil {
				return err
			}
			farLabels, err := s.dataset.Labels(res.Indices)
			if err != nil {
				return err
			}
			out := make([]farthestEntry, len(res.Indices))
			for i := range out {
				out[i] = farthestEntry{
					Query:    queryLabels[i],
					Farthest: farLabels[i],
					Index:    res.Indices[i],
					Distance: res.Distances[i],
				}
			}
			return s.emit(out)
		},
	}
	cmd.Flags().IntSliceVar(&query, "query", nil, "1-based query point indices (default: all)")
	cmd.Flags().IntSliceVar(&search, "search", nil, "1-based search point indices (default: all)")
	return cmd
}

func newKNNCommand(g *globalFlags) *cobra.Command {
	var (
		query, search []int
		k             int
		radius        float64
	)

	cmd := &cobra.Command{
		Use:   "knn [points.csv]",
		Short: "k nearest search points of each query point",
		Long: `For each query point print its k nearest search points, nearest first.

With --radius only neighbors within the radius count; query points with
fewer than k such neighbors are left out and counted as rejected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd, args)
			if err != nil {
				return err
			}
			qSel := indexFlag(cmd, "query", query)

			var opts []distances.SearchOption
			if cmd.Flags().Changed("radius") {
				opts = append(opts, distances.WithRadius(radius))
			}
			res, err := s.dataset.NearestNeighborSearch(k, qSel, indexFlag(cmd, "search", search), opts...)
			if err != nil {
				return err
			}

			queryLabels, err := s.dataset.Labels(res.Queries)
			if err != nil {
				return err
			}
			nbLabels, err := s.dataset.Labels(res.Neighbors)
			if err != nil {
				return err
			}

			out := knnResult{K: k, Results: make([]knnEntry, res.NumOK())}
			if cmd.Flags().Changed("radius") {
				out.Radius = radius
			}
			total := len(qSel)
			if qSel == nil {
				total = s.dataset.NumDataPoints()
			}
			out.Rejected = total - res.NumOK()

			for i := range out.Results {
				entry := knnEntry{
					Query:     queryLabels[i],
					Index:     res.Queries[i],
					Neighbors: make([]neighbor, res.K),
				}
				idx, dist := res.NeighborsOf(i), res.DistancesOf(i)
				for j := range entry.Neighbors {
					entry.Neighbors[j] = neighbor{
						Index:    idx[j],
						Label:    nbLabels[i*res.K+j],
						Distance: dist[j],
					}
				}
				out.Results[i] = entry
			}
			return s.emit(out)
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 1, "number of neighbors")
	cmd.Flags().Float64Var(&radius, "radius", 0, "only count neighbors within this distance")
	cmd.Flags().IntSliceVar(&query, "query", nil, "1-based query point indices (default: all)")
	cmd.Flags().IntSliceVar(&search, "search", nil, "1-based search point indices (default: all)")
	return cmd
}

func newLabelsCommand(g *globalFlags) *cobra.Command {
	var indices []int

	cmd := &cobra.Command{
		Use:   "labels [points.csv]",
		Short: "Labels of the selected points",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd, args)
			if err != nil {
				return err
			}
			labels, err := s.dataset.Labels(indexFlag(cmd, "indices", indices))
			if err != nil {
				return err
			}
			return s.emit(labels)
		},
	}
	cmd.Flags().IntSliceVar(&indices, "indices", nil, "1-based point indices (default: all)")
	return cmd
}
