package generators

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
)

type unionParams struct {
	Sources []string `yaml:"sources"`
}

// buildUnion merges the latest version of every source group. An account
// present in several sources keeps its highest value.
func buildUnion(e entry, meta group.Metadata, _ Deps) (generator.Generator, error) {
	var p unionParams
	if err := decodeParams(e, &p); err != nil {
		return nil, err
	}
	if len(p.Sources) == 0 {
		return nil, errors.New("union needs at least one source group")
	}

	return generator.Func(func(ctx context.Context, genCtx generator.GenerationContext, groups group.Reader) ([]group.GroupWithData, error) {
		merged := group.FetchedData{}
		best := map[string]*big.Float{}

		for _, source := range p.Sources {
			found, err := groups.Search(ctx, group.Search{GroupName: source, Latest: true})
			if err != nil {
				return nil, fmt.Errorf("reading group %s: %w", source, err)
			}
			if len(found) == 0 {
				return nil, fmt.Errorf("source group %s not found", source)
			}

			for account, value := range found[0].Data {
				v, err := numericValue(value.String())
				if err != nil {
					return nil, fmt.Errorf("group %s, account %s: %w", source, account, err)
				}
				if current, ok := best[account]; ok && current.Cmp(v) >= 0 {
					continue
				}
				best[account] = v
				merged[account] = value
			}
		}

		return []group.GroupWithData{newGroup(meta, genCtx.Timestamp, merged)}, nil
	}), nil
}

func numericValue(s string) (*big.Float, error) {
	canonical, err := group.CanonicalValue(s)
	if err != nil {
		return nil, err
	}
	f, _, err := big.ParseFloat(canonical.String(), 10, 256, big.ToNearestEven)
	return f, err
}
