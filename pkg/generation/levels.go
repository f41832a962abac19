package generation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sw33tLie/groupgen/pkg/generator"
)

var (
	ErrUnknownGenerator = errors.New("unknown generator")
	ErrDependencyCycle  = errors.New("dependency cycle")
)

// Level is the accumulated dependency level of a generator. Higher levels
// run first.
type Level struct {
	Name  string
	Level int
}

// ComputeLevelOfDependencies walks names depth first, visiting the
// dependencies of a generator before incrementing its own counter. Visits
// are not memoized: a generator reached through several paths is counted
// once per visit, so anything depended upon always ends up strictly above
// its dependents. Levels are returned in the order their counters were
// first set.
func ComputeLevelOfDependencies(lib *generator.Library, names []string) ([]Level, error) {
	c := &levelCounter{
		lib:     lib,
		index:   make(map[string]int),
		onStack: make(map[string]int),
	}
	if err := c.visit(names); err != nil {
		return nil, err
	}
	return c.levels, nil
}

type levelCounter struct {
	lib    *generator.Library
	levels []Level
	index  map[string]int

	// recursion stack, used to report cycles instead of recursing forever
	stack   []string
	onStack map[string]int
}

func (c *levelCounter) visit(names []string) error {
	for _, name := range names {
		def, ok := c.lib.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
		}
		if pos, ok := c.onStack[name]; ok {
			path := append(append([]string(nil), c.stack[pos:]...), name)
			return fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(path, " -> "))
		}

		if len(def.DependsOn) > 0 {
			c.onStack[name] = len(c.stack)
			c.stack = append(c.stack, name)
			err := c.visit(def.DependsOn)
			c.stack = c.stack[:len(c.stack)-1]
			delete(c.onStack, name)
			if err != nil {
				return err
			}
		}

		if i, ok := c.index[name]; ok {
			c.levels[i].Level++
		} else {
			c.index[name] = len(c.levels)
			c.levels = append(c.levels, Level{Name: name, Level: 1})
		}
	}
	return nil
}

// SortByLevel returns a copy of levels sorted by descending level. Ties keep
// their relative order.
func SortByLevel(levels []Level) []Level {
	sorted := append([]Level(nil), levels...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Level > sorted[j].Level
	})
	return sorted
}
