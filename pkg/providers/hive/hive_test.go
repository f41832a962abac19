package hive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusterServer serves pages of 50 influencers ranked page*50+1 onwards.
// Even ranks have 5000 followers, odd ranks 500. Pages past lastPage are
// empty.
type clusterServer struct {
	*httptest.Server
	pageRequests atomic.Int32
	lastPage     int
}

func newClusterServer(t *testing.T, lastPage int) *clusterServer {
	t.Helper()
	cs := &clusterServer{lastPage: lastPage}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/influence/clusters/Ethereum/influencers/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		cs.pageRequests.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		assert.Equal(t, "rank", r.URL.Query().Get("sort_by"))

		var influencers []string
		if page <= cs.lastPage {
			for i := 0; i < PageSize; i++ {
				rank := page*PageSize + i + 1
				followers := 500
				if rank%2 == 0 {
					followers = 5000
				}
				influencers = append(influencers, fmt.Sprintf(
					`{"personal_rank":%d,"identity":{"social_accounts":[{"social_account":{"id":%d,"followers_count":%d,"name":"User %d","screen_name":"user%d"}}]}}`,
					rank, 1000+rank, followers, rank, rank))
			}
		}
		fmt.Fprintf(w, `{"influencers":[%s]}`, strings.Join(influencers, ","))
	}))
	t.Cleanup(cs.Close)
	return cs
}

func newTestProvider(srv *httptest.Server, apiKey string) *Provider {
	return NewProvider(Config{APIKey: apiKey, URL: srv.URL + "/", HTTPClient: srv.Client()})
}

func TestInfluencersFromClusterCapsPagesAndFilters(t *testing.T) {
	cs := newClusterServer(t, 100)
	p := newTestProvider(cs.Server, "test-key")

	var got []SocialAccount
	for account, err := range p.InfluencersFromCluster(context.Background(), "Ethereum", 120, 1000) {
		require.NoError(t, err)
		got = append(got, account)
	}

	assert.Equal(t, int32(3), cs.pageRequests.Load())
	require.Len(t, got, 60)
	for i, a := range got {
		assert.GreaterOrEqual(t, a.FollowersCount, 1000)
		assert.LessOrEqual(t, a.Rank, 120)
		assert.Equal(t, 2*(i+1), a.Rank)
	}
	assert.Equal(t, SocialAccount{ID: 1002, Rank: 2, FollowersCount: 5000, Name: "User 2", ScreenName: "user2"}, got[0])
}

func TestInfluencersFromClusterStopsOnEmptyPage(t *testing.T) {
	cs := newClusterServer(t, 0)
	p := newTestProvider(cs.Server, "test-key")

	count := 0
	for _, err := range p.InfluencersFromCluster(context.Background(), "Ethereum", 10000, 0) {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, PageSize, count)
	assert.Equal(t, int32(2), cs.pageRequests.Load())
}

func TestInfluencersFromClusterRestartsAndStopsEarly(t *testing.T) {
	cs := newClusterServer(t, 100)
	p := newTestProvider(cs.Server, "test-key")
	seq := p.InfluencersFromCluster(context.Background(), "Ethereum", 500, 0)

	for range 2 {
		var first []int
		for account, err := range seq {
			require.NoError(t, err)
			first = append(first, account.Rank)
			if len(first) == 5 {
				break
			}
		}
		assert.Equal(t, []int{1, 2, 3, 4, 5}, first)
	}
	assert.Equal(t, int32(2), cs.pageRequests.Load())
}

func TestInfluencersFromClusterNoPages(t *testing.T) {
	cs := newClusterServer(t, 100)
	p := newTestProvider(cs.Server, "test-key")
	for range p.InfluencersFromCluster(context.Background(), "Ethereum", 0, 0) {
		t.Fatal("expected no accounts")
	}
	assert.Equal(t, int32(0), cs.pageRequests.Load())
}

func TestInfluencersFromClusterAuthErrorAborts(t *testing.T) {
	cs := newClusterServer(t, 100)
	p := newTestProvider(cs.Server, "wrong-key")

	var errs []error
	for account, err := range p.InfluencersFromCluster(context.Background(), "Ethereum", 500, 0) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.Fatalf("unexpected account %+v", account)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnauthorized)

	_, err := p.TwitterAccountsInCluster(context.Background(), "Ethereum", 500, "1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestInfluencersFromClusterReportsProgress(t *testing.T) {
	cs := newClusterServer(t, 100)
	var progress []int
	p := NewProvider(Config{
		APIKey:     "test-key",
		URL:        cs.URL,
		HTTPClient: cs.Client(),
		OnProgress: func(cluster string, downloaded int) {
			assert.Equal(t, "Ethereum", cluster)
			progress = append(progress, downloaded)
		},
	})

	data, err := p.TwitterAccountsWithMinimumFollowers(context.Background(), "Ethereum", 10, 1000, "3")
	require.NoError(t, err)
	assert.Len(t, data, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
}

func TestTwitterAccountsInCluster(t *testing.T) {
	cs := newClusterServer(t, 100)
	p := newTestProvider(cs.Server, "test-key")

	data, err := p.TwitterAccountsInCluster(context.Background(), "Ethereum", 3, "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]json.Number{
		"twitter:user1:1001": "1",
		"twitter:user2:1002": "1",
		"twitter:user3:1003": "1",
	}, map[string]json.Number(data))
}

func TestInfluencersAboveMaxRank(t *testing.T) {
	var mu sync.Mutex
	looked := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/influence/influencers/twitter:"), "/")
		mu.Lock()
		looked[handle]++
		mu.Unlock()

		switch handle {
		case "alice":
			fmt.Fprint(w, `{"clusters":[{"name":"Bitcoin"},{"name":"Ethereum"}],"latest_scores":[{"rank":"500"},{"rank":"42"}]}`)
		case "bob":
			fmt.Fprint(w, `{"clusters":[{"name":"Ethereum"}],"latest_scores":[{"rank":3000}]}`)
		case "carol":
			w.WriteHeader(http.StatusNotFound)
		case "dave":
			fmt.Fprint(w, `{"clusters":[{"name":"Bitcoin"}],"latest_scores":[{"rank":1}]}`)
		case "erin":
			fmt.Fprint(w, `{"clusters":[{"name":"Ethereum"}],"latest_scores":[{"rank":99}]}`)
		default:
			fmt.Fprint(w, `not json`)
		}
	}))
	defer srv.Close()

	p := NewProvider(Config{APIKey: "k", URL: srv.URL, HTTPClient: srv.Client(), Concurrency: 2})
	got := p.InfluencersAboveMaxRank(context.Background(), []Account{
		{Handle: "alice", Identifier: "alice.eth"},
		{Handle: "bob", Identifier: "bob.eth"},
		{Handle: "carol", Identifier: "carol.eth"},
		{Handle: "dave", Identifier: "dave.eth"},
		{Handle: "erin", Identifier: "erin.eth"},
		{Handle: "mallory", Identifier: "mallory.eth"},
	}, 100, nil)

	assert.Equal(t, []string{"alice.eth", "", "", "", "erin.eth", ""}, got)
	assert.Len(t, looked, 6)
}
