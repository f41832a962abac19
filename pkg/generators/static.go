package generators

import (
	"context"
	"fmt"
	"maps"

	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
)

type staticParams struct {
	Data map[string]string `yaml:"data"`
}

func buildStatic(e entry, meta group.Metadata, _ Deps) (generator.Generator, error) {
	var p staticParams
	if err := decodeParams(e, &p); err != nil {
		return nil, err
	}

	data := make(group.FetchedData, len(p.Data))
	for k, v := range p.Data {
		value, err := group.CanonicalValue(v)
		if err != nil {
			return nil, fmt.Errorf("value of %s: %w", k, err)
		}
		data[k] = value
	}

	return generator.Func(func(_ context.Context, genCtx generator.GenerationContext, _ group.Reader) ([]group.GroupWithData, error) {
		return []group.GroupWithData{newGroup(meta, genCtx.Timestamp, maps.Clone(data))}, nil
	}), nil
}
