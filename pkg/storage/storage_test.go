package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "groupgen.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testGroup(name string, timestamp int64, data group.FetchedData) group.ResolvedGroupWithData {
	props := group.ComputeProperties(data)
	return group.ResolvedGroupWithData{
		GroupWithData: group.GroupWithData{
			Metadata: group.Metadata{
				Name:           name,
				Timestamp:      timestamp,
				GeneratedBy:    name + "-gen",
				ValueType:      group.ValueTypeScore,
				AccountSources: []group.AccountSource{group.AccountSourceEthereum},
				Tags:           []group.Tag{group.TagUser},
				Properties:     &props,
			},
			Data: data,
		},
		ResolvedIdentifierData: data,
	}
}

func TestGroupsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t).Groups()

	g := testGroup("holders", 100, group.FetchedData{"0xabc": "1", "twitter:bob:1": "15"})
	require.NoError(t, store.Save(ctx, g))

	got, err := store.Search(ctx, group.Search{GroupName: "holders"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, g, got[0])
}

func TestGroupsSearchLatestAndTimestamp(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := db.Groups()

	require.NoError(t, store.Save(ctx, testGroup("holders", 100, group.FetchedData{"0xa": "1"})))
	require.NoError(t, store.Save(ctx, testGroup("holders", 300, group.FetchedData{"0xa": "3"})))
	require.NoError(t, store.Save(ctx, testGroup("holders", 200, group.FetchedData{"0xa": "2"})))
	require.NoError(t, store.Save(ctx, testGroup("voters", 150, group.FetchedData{"0xb": "1"})))

	all, err := store.Search(ctx, group.Search{GroupName: "holders"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{300, 200, 100}, []int64{all[0].Timestamp, all[1].Timestamp, all[2].Timestamp})

	latest, err := store.Search(ctx, group.Search{GroupName: "holders", Latest: true})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, group.FetchedData{"0xa": "3"}, latest[0].Data)

	at, err := store.Search(ctx, group.Search{GroupName: "holders", Timestamp: 200})
	require.NoError(t, err)
	require.Len(t, at, 1)
	assert.Equal(t, group.FetchedData{"0xa": "2"}, at[0].Data)

	latestOfEach, err := store.Search(ctx, group.Search{Latest: true})
	require.NoError(t, err)
	require.Len(t, latestOfEach, 2)
	assert.Equal(t, "holders", latestOfEach[0].Name)
	assert.Equal(t, "voters", latestOfEach[1].Name)

	none, err := store.Search(ctx, group.Search{GroupName: "missing", Latest: true})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGroupsSaveReplacesSameVersion(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t).Groups()

	require.NoError(t, store.Save(ctx, testGroup("holders", 100, group.FetchedData{"0xa": "1"})))
	require.NoError(t, store.Save(ctx, testGroup("holders", 100, group.FetchedData{"0xa": "7", "0xb": "2"})))

	got, err := store.Search(ctx, group.Search{GroupName: "holders"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, group.FetchedData{"0xa": "7", "0xb": "2"}, got[0].Data)
	assert.Equal(t, 2, got[0].Properties.AccountsNumber)
}

func TestGroupsNilCollectionsAndProperties(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t).Groups()

	g := group.ResolvedGroupWithData{GroupWithData: group.GroupWithData{Metadata: group.Metadata{
		Name:      "bare",
		Timestamp: 1,
		ValueType: group.ValueTypeInfo,
	}}}
	require.NoError(t, store.Save(ctx, g))

	got, err := store.Search(ctx, group.Search{GroupName: "bare"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Properties)
	assert.Empty(t, got[0].Data)
	assert.Empty(t, got[0].Tags)

	assert.Error(t, store.Save(ctx, group.ResolvedGroupWithData{}))
}

func TestGenerations(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := db.Generations()

	none, err := store.Search(ctx, generator.Search{GeneratorName: "holders", Latest: true})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.Save(ctx, generator.Record{Name: "holders", Timestamp: 100}))
	require.NoError(t, store.Save(ctx, generator.Record{Name: "holders", Timestamp: 200}))
	require.NoError(t, store.Save(ctx, generator.Record{Name: "voters", Timestamp: 300}))

	latest, err := store.Search(ctx, generator.Search{GeneratorName: "holders", Latest: true})
	require.NoError(t, err)
	assert.Equal(t, []generator.Record{{Name: "holders", Timestamp: 200}}, latest)

	all, err := store.Search(ctx, generator.Search{GeneratorName: "holders"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	recent, err := db.ListRecentGenerations(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []generator.Record{{Name: "voters", Timestamp: 300}, {Name: "holders", Timestamp: 200}}, recent)
}

func TestListLatestGroupsAndStats(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := db.Groups()

	require.NoError(t, store.Save(ctx, testGroup("holders", 100, group.FetchedData{"0xa": "1"})))
	require.NoError(t, store.Save(ctx, testGroup("holders", 200, group.FetchedData{"0xa": "1", "0xb": "1"})))
	require.NoError(t, store.Save(ctx, testGroup("voters", 150, group.FetchedData{"0xc": "1"})))

	summaries, err := db.ListLatestGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []GroupSummary{
		{Name: "holders", Timestamp: 200, GeneratedBy: "holders-gen", ValueType: group.ValueTypeScore, AccountsNumber: 2, Versions: 2},
		{Name: "voters", Timestamp: 150, GeneratedBy: "voters-gen", ValueType: group.ValueTypeScore, AccountsNumber: 1, Versions: 1},
	}, summaries)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []GeneratorStats{
		{Generator: "holders-gen", GroupCount: 1, VersionCount: 2, LastTimestamp: 200},
		{Generator: "voters-gen", GroupCount: 1, VersionCount: 1, LastTimestamp: 150},
	}, stats)
}
