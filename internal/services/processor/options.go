package processor

import (
	"fmt"
	"strings"
)

// DefaultPadding is the fraction of the shorter side trimmed from every
// edge of the circle, which keeps border artifacts of the source out.
const DefaultPadding = 0.01

// Edge selects how mask pixels on the circle boundary are filled.
type Edge string

const (
	// EdgeHard writes only 0 or 255.
	EdgeHard Edge = "hard"
	// EdgeSmooth writes the fraction of the pixel covered by the circle.
	EdgeSmooth Edge = "smooth"
)

// ParseEdge accepts "hard", "smooth" or the empty string, which means hard.
func ParseEdge(value string) (Edge, error) {
	switch Edge(strings.ToLower(strings.TrimSpace(value))) {
	case "", EdgeHard:
		return EdgeHard, nil
	case EdgeSmooth:
		return EdgeSmooth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidEdge, value)
	}
}

type Options struct {
	Padding float64
	Edge    Edge
}

func DefaultOptions() Options {
	return Options{
		Padding: DefaultPadding,
		Edge:    EdgeHard,
	}
}

func (o Options) Validate() error {
	if o.Padding < 0 || o.Padding >= 0.5 {
		return fmt.Errorf("padding %.4f out of range [0, 0.5)", o.Padding)
	}
	if _, err := ParseEdge(string(o.Edge)); err != nil {
		return err
	}
	return nil
}

// Key identifies the options in cache keys.
func (o Options) Key() string {
	edge := o.Edge
	if edge == "" {
		edge = EdgeHard
	}
	return fmt.Sprintf("circle_%.4f_%s", o.Padding, edge)
}
