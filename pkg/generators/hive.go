package generators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
	"github.com/sw33tLie/groupgen/pkg/providers/hive"
)

type hiveClusterParams struct {
	Cluster      string `yaml:"cluster"`
	MaxItems     int    `yaml:"maxItems"`
	MinFollowers int    `yaml:"minFollowers"`
	Value        string `yaml:"value"`
}

func buildHiveCluster(e entry, meta group.Metadata, deps Deps) (generator.Generator, error) {
	p := hiveClusterParams{MaxItems: 100, Value: "1"}
	if err := decodeParams(e, &p); err != nil {
		return nil, err
	}
	if p.Cluster == "" {
		return nil, errors.New("hive-cluster needs a cluster")
	}
	value, err := group.CanonicalValue(p.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	if deps.Hive == nil {
		return unavailable(ErrHiveNotConfigured), nil
	}

	return generator.Func(func(ctx context.Context, genCtx generator.GenerationContext, _ group.Reader) ([]group.GroupWithData, error) {
		data, err := deps.Hive.TwitterAccountsWithMinimumFollowers(ctx, p.Cluster, p.MaxItems, p.MinFollowers, value)
		if err != nil {
			return nil, err
		}
		return []group.GroupWithData{newGroup(meta, genCtx.Timestamp, data)}, nil
	}), nil
}

type hiveRankParams struct {
	Source   string   `yaml:"source"`
	MaxRank  int      `yaml:"maxRank"`
	Clusters []string `yaml:"clusters"`
}

// buildHiveRank keeps the twitter accounts of the source group that Hive
// ranks below maxRank, with their source value.
func buildHiveRank(e entry, meta group.Metadata, deps Deps) (generator.Generator, error) {
	p := hiveRankParams{MaxRank: 1000}
	if err := decodeParams(e, &p); err != nil {
		return nil, err
	}
	if p.Source == "" {
		return nil, errors.New("hive-rank needs a source group")
	}
	if deps.Hive == nil {
		return unavailable(ErrHiveNotConfigured), nil
	}

	return generator.Func(func(ctx context.Context, genCtx generator.GenerationContext, groups group.Reader) ([]group.GroupWithData, error) {
		found, err := groups.Search(ctx, group.Search{GroupName: p.Source, Latest: true})
		if err != nil {
			return nil, fmt.Errorf("reading group %s: %w", p.Source, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("source group %s not found", p.Source)
		}
		source := found[0].Data

		accounts := twitterAccounts(source)
		data := group.FetchedData{}
		for _, identifier := range deps.Hive.InfluencersAboveMaxRank(ctx, accounts, p.MaxRank, p.Clusters) {
			if identifier != "" {
				data[identifier] = source[identifier]
			}
		}
		return []group.GroupWithData{newGroup(meta, genCtx.Timestamp, data)}, nil
	}), nil
}

// twitterAccounts extracts the handles of "twitter:<handle>[:<id>]" keys,
// sorted by key.
func twitterAccounts(data group.FetchedData) []hive.Account {
	var accounts []hive.Account
	for key := range data {
		rest, ok := strings.CutPrefix(key, "twitter:")
		if !ok {
			continue
		}
		handle, _, _ := strings.Cut(rest, ":")
		if handle == "" {
			continue
		}
		accounts = append(accounts, hive.Account{Handle: handle, Identifier: key})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Identifier < accounts[j].Identifier })
	return accounts
}

// unavailable stands in for a generator whose provider is not configured,
// so the rest of the library still loads and runs.
func unavailable(err error) generator.Generator {
	return generator.Func(func(context.Context, generator.GenerationContext, group.Reader) ([]group.GroupWithData, error) {
		return nil, err
	})
}
