package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Grid is the fixed ordered set of daily start times the salon offers.
// It is parsed once at startup; a malformed entry is a configuration error.
type Grid struct {
	labels  []string
	minutes []int
	byLabel map[string]int // label -> minutes since midnight
}

// ParseGrid validates and parses "HH:MM" entries. Entries must be unique and
// strictly ascending.
func ParseGrid(entries []string) (*Grid, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("slot grid is empty")
	}

	g := &Grid{
		labels:  make([]string, 0, len(entries)),
		minutes: make([]int, 0, len(entries)),
		byLabel: make(map[string]int, len(entries)),
	}

	prev := -1
	for _, entry := range entries {
		m, err := ParseClock(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid grid entry %q: %w", entry, err)
		}
		if m <= prev {
			return nil, fmt.Errorf("grid entries must be strictly ascending, got %q", entry)
		}
		prev = m
		g.labels = append(g.labels, entry)
		g.minutes = append(g.minutes, m)
		g.byLabel[entry] = m
	}
	return g, nil
}

// Slots returns the grid start times in order. The caller must not mutate the
// returned slice.
func (g *Grid) Slots() []string {
	return g.labels
}

// Contains reports whether a start time is a member of the grid.
func (g *Grid) Contains(label string) bool {
	_, ok := g.byLabel[label]
	return ok
}

func (g *Grid) Len() int {
	return len(g.labels)
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad hour: %w", err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad minute: %w", err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out of range")
	}
	return h*60 + m, nil
}
