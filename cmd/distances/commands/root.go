package commands

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/TrevorS/distances"
	"github.com/TrevorS/distances/cmd/distances/internal/config"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile  string
	envFile     string
	format      string
	tree        string
	leafSize    int
	normalize   string
	weights     []float64
	ids         bool
	logFormat   string
	metricsFile string
	verbose     bool
}

// NewRootCommand builds the distances command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "distances",
		Short: "Exact Euclidean distance queries over a point set",
		Long: `distances - exact Euclidean distance queries over a CSV point set.

Each subcommand reads points from a CSV file (or stdin when the file is
omitted or "-"), one point per row. With --ids the first column is a
point id. Point indices on the command line are 1-based.

Settings are read from a YAML file (--config), a .env file (--env-file)
and DISTANCES_* environment variables; flags override all three.

Examples:
  # Condensed distance matrix of points 1, 3 and 4
  distances matrix points.csv --indices 1,3,4

  # Three nearest neighbors of every point within radius 2.5
  distances knn points.csv -k 3 --radius 2.5 --format json

  # Farthest point of each query, after studentizing the data
  distances farthest points.csv --query 1,2 --normalize studentize`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "YAML config file")
	pf.StringVar(&g.envFile, "env-file", "", ".env file with DISTANCES_* variables")
	pf.StringVar(&g.format, "format", "yaml", "output format: yaml or json")
	pf.StringVar(&g.tree, "tree", "kd", "spatial index: kd or ball")
	pf.IntVar(&g.leafSize, "leaf-size", 16, "maximum points per tree leaf")
	pf.StringVar(&g.normalize, "normalize", "none", "normalization: none, mahalanobize or studentize")
	pf.Float64SliceVar(&g.weights, "weights", nil, "per-dimension weights")
	pf.BoolVar(&g.ids, "ids", false, "first CSV column holds point ids")
	pf.StringVar(&g.logFormat, "log-format", "text", "log format: text or json")
	pf.StringVar(&g.metricsFile, "metrics-file", "", "write prometheus metrics to this file")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newMatrixCommand(g),
		newColumnsCommand(g),
		newFarthestCommand(g),
		newKNNCommand(g),
		newLabelsCommand(g),
		newVersionCommand(g),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// resolve loads the layered configuration and applies the flags the user
// set explicitly.
func (g *globalFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configFile, g.envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = g.format
	}
	if flags.Changed("tree") {
		cfg.Tree = g.tree
	}
	if flags.Changed("leaf-size") {
		cfg.LeafSize = g.leafSize
	}
	if flags.Changed("normalize") {
		cfg.Normalize = g.normalize
	}
	if flags.Changed("weights") {
		cfg.Weights = g.weights
	}
	if flags.Changed("ids") {
		cfg.IDs = g.ids
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = g.metricsFile
	}
	if g.verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is the state of one subcommand run: the resolved settings and
// the dataset built from the input file.
type session struct {
	cfg      *config.Config
	dataset  *distances.Dataset
	registry *prometheus.Registry
	out      io.Writer
}

// open resolves the settings and loads the dataset named by args.
func (g *globalFlags) open(cmd *cobra.Command, args []string) (*session, error) {
	cfg, err := g.resolve(cmd)
	if err != nil {
		return nil, err
	}

	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	pts, err := readPoints(path, cmd.InOrStdin(), cfg.IDs)
	if err != nil {
		return nil, err
	}

	logger, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, out: cmd.OutOrStdout()}

	var metrics *distances.Metrics
	if cfg.MetricsFile != "" {
		s.registry = prometheus.NewRegistry()
		if metrics, err = distances.NewMetrics(s.registry); err != nil {
			return nil, err
		}
	}

	opts, err := cfg.DatasetOptions(logger, metrics)
	if err != nil {
		return nil, err
	}
	opts.IDs = pts.ids
	if s.dataset, err = distances.NewDataset(pts.data, pts.n, pts.dims, opts); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	logger.Debug("dataset loaded",
		"path", path,
		"points", pts.n,
		"dimensions", pts.dims,
		"normalize", cfg.Normalize,
	)
	return s, nil
}

// emit writes result in the configured format and flushes metrics.
func (s *session) emit(result any) error {
	if err := Output(result, OutputOptions{Format: OutputFormat(s.cfg.Format), Writer: s.out}); err != nil {
		return err
	}
	if s.registry != nil {
		if err := prometheus.WriteToTextfile(s.cfg.MetricsFile, s.registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// indexFlag returns the 1-based index list of an IntSlice flag, or nil
// when the flag was not given, which selects every point.
func indexFlag(cmd *cobra.Command, name string, v []int) []int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	if v == nil {
		return []int{}
	}
	return v
}
