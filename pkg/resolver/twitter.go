package resolver

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/sw33tLie/groupgen/pkg/group"
)

// TwitterResolver canonicalizes "twitter:<handle>:<id>" identifiers. Handles
// are case-insensitive on twitter, so they are lower-cased; when two
// identifiers collide the one sorting last wins.
type TwitterResolver struct{}

func (TwitterResolver) ResolveAll(ctx context.Context, data group.FetchedData) (group.FetchedData, error) {
	out := make(group.FetchedData, len(data))
	for _, id := range slices.Sorted(maps.Keys(data)) {
		value := data[id]
		parts := strings.SplitN(id, ":", 3)
		if len(parts) < 2 || parts[1] == "" {
			out[id] = value
			continue
		}
		parts[0] = "twitter"
		parts[1] = strings.ToLower(strings.TrimPrefix(parts[1], "@"))
		out[strings.Join(parts, ":")] = value
	}
	return out, nil
}
