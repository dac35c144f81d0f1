package distances

import "fmt"

// Options controls how an Engine builds and reports on its indices.
// Start with [DefaultOptions] and override the fields you need.
type Options struct {
	// Tree selects the spatial index structure. Default: TreeKD.
	Tree TreeKind

	// LeafSize is the maximum number of points in a tree leaf. Smaller
	// leaves prune more finely at the cost of a deeper tree.
	// Must be >= 1. Default: 16.
	LeafSize int

	// Logger receives index lifecycle and query events.
	// Default: NoopLogger().
	Logger *Logger

	// Metrics, when non-nil, is updated on every open, close and query.
	Metrics *Metrics
}

// DefaultOptions returns Options with reasonable defaults.
func DefaultOptions() Options {
	return Options{
		Tree:     TreeKD,
		LeafSize: 16,
		Logger:   NoopLogger(),
	}
}

// validateOptions checks that opts fields are valid and returns a
// descriptive error if not.
func validateOptions(opts *Options) error {
	switch opts.Tree {
	case TreeKD, TreeBall:
	default:
		return fmt.Errorf("%w: Tree must be %q or %q, got %q", ErrInvalidParameter, TreeKD, TreeBall, opts.Tree)
	}
	if opts.LeafSize < 1 {
		return fmt.Errorf("%w: LeafSize must be >= 1, got %d", ErrInvalidParameter, opts.LeafSize)
	}
	return nil
}

// applyDefaults fills in zero-valued option fields with their defaults.
func applyDefaults(opts *Options) {
	if opts.Tree == "" {
		opts.Tree = TreeKD
	}
	if opts.LeafSize == 0 {
		opts.LeafSize = 16
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
}

// ParseTreeKind converts a name such as "kd" or "ball" into a TreeKind.
func ParseTreeKind(s string) (TreeKind, error) {
	switch TreeKind(s) {
	case TreeKD, "kdtree":
		return TreeKD, nil
	case TreeBall, "balltree":
		return TreeBall, nil
	}
	return "", fmt.Errorf("%w: unknown tree kind %q", ErrInvalidParameter, s)
}
