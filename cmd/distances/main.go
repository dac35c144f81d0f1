// Package main is the entry point for the distances CLI.
//
// Usage:
//
//	distances [flags] <command> [points.csv]
//
// Commands:
//
//	matrix    - condensed pairwise distance matrix
//	columns   - distances between row points and column points
//	farthest  - farthest search point of each query point
//	knn       - k nearest neighbors, optionally within a radius
//	labels    - point labels
//	version   - show version information
package main

import (
	"fmt"
	"os"

	"github.com/TrevorS/distances/cmd/distances/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
