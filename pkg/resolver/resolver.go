package resolver

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/sw33tLie/groupgen/pkg/group"
)

// Resolver cross-references group identifiers against other identifier
// systems. Implementations must not modify the input.
type Resolver interface {
	ResolveAll(ctx context.Context, data group.FetchedData) (group.FetchedData, error)
}

// Func adapts a plain function to the Resolver interface.
type Func func(ctx context.Context, data group.FetchedData) (group.FetchedData, error)

func (f Func) ResolveAll(ctx context.Context, data group.FetchedData) (group.FetchedData, error) {
	return f(ctx, data)
}

// Global routes identifiers to the resolver registered for their prefix
// ("twitter" for "twitter:<handle>:<id>"). Ethereum addresses resolve to
// their lower-cased form and identifiers nobody handles pass through.
// Identifiers are handled in sorted order, so when two of them resolve to
// the same key the one sorting last wins.
type Global struct {
	byPrefix map[string]Resolver
}

func NewGlobal() *Global {
	return &Global{byPrefix: make(map[string]Resolver)}
}

// Register sets the resolver used for identifiers starting with prefix + ":".
func (g *Global) Register(prefix string, r Resolver) *Global {
	g.byPrefix[strings.ToLower(prefix)] = r
	return g
}

func (g *Global) ResolveAll(ctx context.Context, data group.FetchedData) (group.FetchedData, error) {
	resolved := make(group.FetchedData, len(data))
	batches := make(map[string]group.FetchedData)

	for _, id := range slices.Sorted(maps.Keys(data)) {
		value := data[id]
		if group.IsEthereumAddress(id) {
			resolved[strings.ToLower(id)] = value
			continue
		}
		prefix, _, found := strings.Cut(id, ":")
		prefix = strings.ToLower(prefix)
		if _, ok := g.byPrefix[prefix]; !found || !ok {
			resolved[id] = value
			continue
		}
		if batches[prefix] == nil {
			batches[prefix] = make(group.FetchedData)
		}
		batches[prefix][id] = value
	}

	for _, prefix := range slices.Sorted(maps.Keys(batches)) {
		out, err := g.byPrefix[prefix].ResolveAll(ctx, batches[prefix])
		if err != nil {
			return nil, fmt.Errorf("resolving %s identifiers: %w", prefix, err)
		}
		for _, id := range slices.Sorted(maps.Keys(out)) {
			resolved[id] = out[id]
		}
	}
	return resolved, nil
}
