package generator

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateGenerator = errors.New("duplicate generator")
	ErrMissingDependency  = errors.New("missing dependency")
)

// Library is the read-only set of generators known to a process. Names keep
// their registration order.
type Library struct {
	names []string
	defs  map[string]Definition
}

// NewLibrary validates defs and builds a Library from them. Every DependsOn
// entry must name another definition of the library.
func NewLibrary(defs ...Definition) (*Library, error) {
	l := &Library{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, errors.New("generator without a name")
		}
		if d.Generator == nil {
			return nil, fmt.Errorf("generator %s has no implementation", d.Name)
		}
		if _, exists := l.defs[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateGenerator, d.Name)
		}
		d.DependsOn = append([]string(nil), d.DependsOn...)
		l.defs[d.Name] = d
		l.names = append(l.names, d.Name)
	}

	for _, name := range l.names {
		for _, dep := range l.defs[name].DependsOn {
			if _, ok := l.defs[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on unknown generator %s", ErrMissingDependency, name, dep)
			}
		}
	}
	return l, nil
}

// Names returns generator names in registration order.
func (l *Library) Names() []string {
	return append([]string(nil), l.names...)
}

func (l *Library) Get(name string) (Definition, bool) {
	d, ok := l.defs[name]
	return d, ok
}

func (l *Library) Len() int { return len(l.names) }
