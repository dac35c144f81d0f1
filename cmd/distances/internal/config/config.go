// Package config resolves the settings of the distances CLI.
//
// Settings are layered, later layers overriding earlier ones:
//
//	defaults
//	YAML file            (--config)
//	.env file            (--env-file, never overrides the real environment)
//	DISTANCES_* env vars (e.g. DISTANCES_TREE=ball, DISTANCES_WEIGHTS=1,2,0.5)
//	command line flags   (applied by the caller)
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/TrevorS/distances"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "DISTANCES"

// Config holds the CLI settings.
type Config struct {
	// Tree is the spatial index structure: "kd" or "ball".
	Tree string `yaml:"tree" envconfig:"TREE"`

	// LeafSize is the maximum number of points per tree leaf.
	LeafSize int `yaml:"leaf_size" envconfig:"LEAF_SIZE"`

	// Normalize is "none", "mahalanobize" or "studentize".
	Normalize string `yaml:"normalize" envconfig:"NORMALIZE"`

	// Weights optionally weights each dimension.
	Weights []float64 `yaml:"weights" envconfig:"WEIGHTS"`

	// IDs treats the first CSV column as a point id.
	IDs bool `yaml:"ids" envconfig:"IDS"`

	// Format is the output format: "yaml" or "json".
	Format string `yaml:"format" envconfig:"FORMAT"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`

	// MetricsFile, when set, receives the query metrics in the prometheus
	// text format after the command completes.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns the built-in settings.
func Default() *Config {
	def := distances.DefaultOptions()
	return &Config{
		Tree:      string(def.Tree),
		LeafSize:  def.LeafSize,
		Normalize: string(distances.NormalizeNone),
		Format:    "yaml",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// Load builds the configuration from the defaults, the optional YAML file
// at path, the optional .env file at envFile and the DISTANCES_* variables.
// Empty paths are skipped.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

// Validate checks that every setting has a known value.
func (c *Config) Validate() error {
	if _, err := distances.ParseTreeKind(c.Tree); err != nil {
		return err
	}
	if c.LeafSize < 1 {
		return fmt.Errorf("leaf_size must be >= 1, got %d", c.LeafSize)
	}
	if _, err := distances.ParseNormalization(c.Normalize); err != nil {
		return err
	}
	switch c.Format {
	case "yaml", "json":
	default:
		return fmt.Errorf("unsupported output format: %s", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Logger returns a logger writing to w as described by LogLevel and
// LogFormat.
func (c *Config) Logger(w io.Writer) (*distances.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return distances.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return distances.NewLogger(slog.NewTextHandler(w, opts)), nil
}

// DatasetOptions converts the settings into library options. The logger
// and metrics are supplied by the caller.
func (c *Config) DatasetOptions(logger *distances.Logger, metrics *distances.Metrics) (distances.DatasetOptions, error) {
	tree, err := distances.ParseTreeKind(c.Tree)
	if err != nil {
		return distances.DatasetOptions{}, err
	}
	norm, err := distances.ParseNormalization(c.Normalize)
	if err != nil {
		return distances.DatasetOptions{}, err
	}
	var weights []float64
	if len(c.Weights) > 0 {
		weights = c.Weights
	}
	return distances.DatasetOptions{
		Normalize: norm,
		Weights:   weights,
		Engine: distances.Options{
			Tree:     tree,
			LeafSize: c.LeafSize,
			Logger:   logger,
			Metrics:  metrics,
		},
	}, nil
}
