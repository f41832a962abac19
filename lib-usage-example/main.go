package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sw33tLie/groupgen/internal/utils"
	"github.com/sw33tLie/groupgen/pkg/generation"
	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
	"github.com/sw33tLie/groupgen/pkg/resolver"
	"github.com/sw33tLie/groupgen/pkg/storage"
)

func main() {
	// Usage: go run *.go -db ./example.sqlite

	dbFlag := flag.String("db", "example.sqlite", "SQLite database file")
	flag.Parse()

	db, err := storage.Open(*dbFlag)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer db.Close()

	// A generator is any type with a Generate method; generator.Func adapts
	// plain functions.
	contributors := generator.Func(func(ctx context.Context, genCtx generator.GenerationContext, _ group.Reader) ([]group.GroupWithData, error) {
		return []group.GroupWithData{{
			Metadata: group.Metadata{
				Name:           "contributors",
				ValueType:      group.ValueTypeScore,
				AccountSources: []group.AccountSource{group.AccountSourceEthereum, group.AccountSourceTwitter},
				Tags:           []group.Tag{group.TagCoreTeam},
			},
			Data: group.FetchedData{
				"0x38D6a9cA9F8E4Bd7a0a46d0F9f9Bc0C5e3A07C0b": "2",
				"twitter:Alice:42":                           "1",
			},
		}}, nil
	})

	// Generators can read what their dependencies stored.
	topContributors := generator.Func(func(ctx context.Context, genCtx generator.GenerationContext, groups group.Reader) ([]group.GroupWithData, error) {
		found, err := groups.Search(ctx, group.Search{GroupName: "contributors", Latest: true})
		if err != nil || len(found) == 0 {
			return nil, fmt.Errorf("contributors not generated yet: %v", err)
		}
		data := group.FetchedData{}
		for account, value := range found[0].Data {
			if value == "2" {
				data[account] = "1"
			}
		}
		return []group.GroupWithData{{
			Metadata: group.Metadata{
				Name:           "top-contributors",
				ValueType:      group.ValueTypeInfo,
				AccountSources: []group.AccountSource{group.AccountSourceEthereum},
			},
			Data: data,
		}}, nil
	})

	lib, err := generator.NewLibrary(
		generator.Definition{Name: "top-contributors", DependsOn: []string{"contributors"}, Frequency: generator.FrequencyDaily, Generator: topContributors},
		generator.Definition{Name: "contributors", Frequency: generator.FrequencyDaily, Generator: contributors},
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	svc, err := generation.NewService(generation.Config{
		Library:        lib,
		GroupStore:     db.Groups(),
		GeneratorStore: db.Generations(),
		Resolver:       resolver.NewGlobal().Register("twitter", resolver.TwitterResolver{}),
		Log:            utils.Log,
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := svc.GenerateAllGroups(context.Background(), generation.AllOptions{}); err != nil {
		fmt.Println(err)
		return
	}

	summaries, err := db.ListLatestGroups(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, s := range summaries {
		fmt.Println(s.Name, s.AccountsNumber)
	}
}
