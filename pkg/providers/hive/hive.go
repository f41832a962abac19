package hive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sw33tLie/groupgen/internal/utils"
	"github.com/sw33tLie/groupgen/pkg/batch"
	"github.com/sw33tLie/groupgen/pkg/group"
	"github.com/sw33tLie/groupgen/pkg/whttp"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultURL         = "https://api.borg.id"
	DefaultConcurrency = 10

	// PageSize is the number of influencers Hive returns per page.
	PageSize = 50
)

var ErrUnauthorized = errors.New("hive: invalid or missing API key")

// SocialAccount is one ranked influencer of a Hive cluster.
type SocialAccount struct {
	ID             int64
	Rank           int
	FollowersCount int
	Name           string
	ScreenName     string
}

// Account is a known twitter account to look up on Hive. Identifier is what
// gets reported back when the account is ranked high enough.
type Account struct {
	Handle     string
	Identifier string
}

type Config struct {
	APIKey string
	URL    string // defaults to DefaultURL
	// Concurrency bounds parallel influencer lookups. Defaults to 10.
	Concurrency int
	// Retries is the number of retries of a single request on transport
	// errors and 5xx/429 responses. Ignored when HTTPClient is set.
	Retries int
	// RequestsPerSecond paces outgoing requests. Zero means unlimited.
	RequestsPerSecond float64
	HTTPClient        whttp.Doer
	// OnProgress is called with the running count of accounts yielded by
	// InfluencersFromCluster.
	OnProgress func(cluster string, downloaded int)
}

type Provider struct {
	apiKey      string
	url         string
	concurrency int
	client      whttp.Doer
	limiter     *rate.Limiter
	onProgress  func(cluster string, downloaded int)
}

func NewProvider(cfg Config) *Provider {
	p := &Provider{
		apiKey:      cfg.APIKey,
		url:         strings.TrimRight(cfg.URL, "/"),
		concurrency: cfg.Concurrency,
		client:      cfg.HTTPClient,
		onProgress:  cfg.OnProgress,
	}
	if p.url == "" {
		p.url = DefaultURL
	}
	if p.concurrency <= 0 {
		p.concurrency = DefaultConcurrency
	}
	if p.client == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.Logger = log.New(io.Discard, "", 0)
		retryClient.RetryMax = cfg.Retries
		retryClient.HTTPClient.Timeout = 30 * time.Second
		p.client = retryClient.StandardClient()
	}
	if cfg.RequestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return p
}

func (p *Provider) get(ctx context.Context, path string) (*whttp.WHTTPRes, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method:  http.MethodGet,
		URL:     p.url + path,
		Headers: []whttp.WHTTPHeader{{Name: "Authorization", Value: "Token " + p.apiKey}},
	}, p.client)
	if err != nil {
		return nil, err
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("hive: GET %s: unexpected status %d", path, res.StatusCode)
	}
	return res, nil
}

// InfluencersFromCluster lazily pages through a cluster ranking, best rank
// first, yielding the accounts with at least minFollowers followers and a
// rank no greater than maxInfluencers. At most ceil(maxInfluencers/PageSize)
// pages are fetched, one after the other; an empty page ends the ranking
// early. A failed page is yielded as an error and ends the sequence. Every
// iteration starts over from the first page.
func (p *Provider) InfluencersFromCluster(ctx context.Context, cluster string, maxInfluencers, minFollowers int) iter.Seq2[SocialAccount, error] {
	return func(yield func(SocialAccount, error) bool) {
		pages := (maxInfluencers + PageSize - 1) / PageSize
		downloaded := 0

		for page := 0; page < pages; page++ {
			path := fmt.Sprintf("/influence/clusters/%s/influencers/?page=%d&sort_by=rank&sort_direction=asc", url.PathEscape(cluster), page)
			res, err := p.get(ctx, path)
			if err != nil {
				yield(SocialAccount{}, fmt.Errorf("fetching page %d of cluster %s: %w", page, cluster, err))
				return
			}

			influencers := gjson.Get(res.BodyString, "influencers")
			if !influencers.IsArray() {
				yield(SocialAccount{}, fmt.Errorf("fetching page %d of cluster %s: unexpected response", page, cluster))
				return
			}
			entries := influencers.Array()
			if len(entries) == 0 {
				return
			}

			for _, influencer := range entries {
				account := parseInfluencer(influencer)
				if account.FollowersCount < minFollowers || account.Rank > maxInfluencers {
					continue
				}
				downloaded++
				if p.onProgress != nil {
					p.onProgress(cluster, downloaded)
				}
				if !yield(account, nil) {
					return
				}
			}
		}
	}
}

func parseInfluencer(influencer gjson.Result) SocialAccount {
	socialAccount := influencer.Get("identity.social_accounts.0.social_account")
	return SocialAccount{
		ID:             socialAccount.Get("id").Int(),
		Rank:           int(influencer.Get("personal_rank").Int()),
		FollowersCount: int(socialAccount.Get("followers_count").Int()),
		Name:           socialAccount.Get("name").String(),
		ScreenName:     socialAccount.Get("screen_name").String(),
	}
}

// TwitterAccountsInCluster drains InfluencersFromCluster into a group data
// set keyed "twitter:<screen_name>:<id>".
func (p *Provider) TwitterAccountsInCluster(ctx context.Context, cluster string, maxInfluencers int, defaultValue json.Number) (group.FetchedData, error) {
	return p.twitterAccounts(ctx, cluster, maxInfluencers, 0, defaultValue)
}

func (p *Provider) twitterAccounts(ctx context.Context, cluster string, maxInfluencers, minFollowers int, value json.Number) (group.FetchedData, error) {
	twitterAccounts := group.FetchedData{}
	for account, err := range p.InfluencersFromCluster(ctx, cluster, maxInfluencers, minFollowers) {
		if err != nil {
			return nil, err
		}
		twitterAccounts[TwitterKey(account.ScreenName, account.ID)] = value
	}
	return twitterAccounts, nil
}

// TwitterAccountsWithMinimumFollowers is TwitterAccountsInCluster restricted
// to accounts having at least minFollowers followers.
func (p *Provider) TwitterAccountsWithMinimumFollowers(ctx context.Context, cluster string, maxInfluencers, minFollowers int, value json.Number) (group.FetchedData, error) {
	return p.twitterAccounts(ctx, cluster, maxInfluencers, minFollowers, value)
}

func TwitterKey(screenName string, id int64) string {
	return fmt.Sprintf("twitter:%s:%d", screenName, id)
}

// InfluencersAboveMaxRank looks every account up on Hive, Concurrency at a
// time, and returns, in input order, the account Identifier when Hive ranks
// it below maxRank in one of clusterNames, or "" otherwise. Lookup failures
// also map to "", so one bad account never fails the batch.
func (p *Provider) InfluencersAboveMaxRank(ctx context.Context, accounts []Account, maxRank int, clusterNames []string) []string {
	if len(clusterNames) == 0 {
		clusterNames = []string{"Ethereum"}
	}

	results := batch.Map(ctx, accounts, func(ctx context.Context, a Account) (string, error) {
		return p.identifierIfRanked(ctx, a, maxRank, clusterNames)
	}, p.concurrency)

	identifiers := make([]string, len(results))
	for i, r := range results {
		if !r.OK() {
			utils.Log.Debugf("Hive lookup failed for %s: %v", accounts[i].Handle, r.Err)
		}
		identifiers[i] = r.ValueOr("")
	}
	return identifiers
}

func (p *Provider) identifierIfRanked(ctx context.Context, a Account, maxRank int, clusterNames []string) (string, error) {
	res, err := p.get(ctx, "/influence/influencers/twitter:"+url.PathEscape(a.Handle)+"/")
	if err != nil {
		return "", err
	}

	clusters := gjson.Get(res.BodyString, "clusters").Array()
	for i, cluster := range clusters {
		if !slices.Contains(clusterNames, cluster.Get("name").String()) {
			continue
		}
		rank, ok := parseRank(gjson.Get(res.BodyString, fmt.Sprintf("latest_scores.%d.rank", i)))
		if ok && rank < maxRank {
			return a.Identifier, nil
		}
	}
	return "", nil
}

// parseRank accepts ranks sent as numbers or numeric strings, dropping any
// fractional part.
func parseRank(r gjson.Result) (int, bool) {
	if !r.Exists() {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(r.String()), 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}
