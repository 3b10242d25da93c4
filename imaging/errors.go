package imaging

import (
	"fmt"
	"strings"
)

// ConfigurationError reports invalid or missing options for a requested
// imaging context: unknown context names, non-divisible facet counts,
// kernel support exceeding the grid, and the like. It is always surfaced to
// the caller and never retried.
type ConfigurationError struct {
	Context  string
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("imaging: invalid configuration for context %q: %s",
		e.Context, strings.Join(e.Problems, "; "))
}

// AssemblyError reports a partition output whose shape or count does not
// match what the partitioner promised. It indicates an internal invariant
// violation and is fatal.
type AssemblyError struct {
	Stage  string
	Detail string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("imaging: assembly failed during %s: %s", e.Stage, e.Detail)
}
