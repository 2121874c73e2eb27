package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stockpeek/edge-gateway/internal/models"
	"github.com/stockpeek/edge-gateway/internal/storage"
	"github.com/stockpeek/edge-gateway/internal/util"
)

type ProviderName string

const (
	ProviderTwelveData ProviderName = "twelvedata"
	ProviderYahoo      ProviderName = "yahoo"
	ProviderFinnhub    ProviderName = "finnhub"
)

const (
	CacheHit   = "HIT"
	CacheStale = "STALE"
	CacheMiss  = "MISS"

	contentTypeJSON = "application/json"

	defaultInterval   = "1day"
	defaultOutputSize = "30"

	cacheWriteTimeout = 5 * time.Second
)

// Finnhub proxy lifetimes are fixed routing rules, not part of the
// session-driven policy table.
var (
	finnhubTTL     = util.TTLPair{Fresh: time.Hour, Stale: 2 * time.Hour}
	finnhubPeerTTL = util.TTLPair{Fresh: 24 * time.Hour, Stale: 48 * time.Hour}
)

// Provider is a static upstream descriptor. Yahoo carries no auth
// param; the other two append their API key as a query parameter.
type Provider struct {
	Name      ProviderName
	BaseURL   string
	AuthParam string
	APIKey    string
}

// requestURL resolves the full upstream URL, auth included.
func (p Provider) requestURL(path string, query url.Values) string {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	if p.AuthParam != "" && p.APIKey != "" {
		q.Set(p.AuthParam, p.APIKey)
	}
	return p.BaseURL + path + "?" + q.Encode()
}

// cacheKey is the resolved upstream URL without the auth param, so a
// rotated API key does not shear the whole cache. Encode sorts the
// query, keeping the key deterministic.
func (p Provider) cacheKey(path string, query url.Values) string {
	return p.BaseURL + path + "?" + query.Encode()
}

// UpstreamError carries a non-success provider status through to the
// HTTP boundary unchanged.
type UpstreamError struct {
	Provider ProviderName
	Status   int
	Msg      string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Msg)
}

// Result is a served market-data response plus the annotations the
// dispatcher turns into response headers.
type Result struct {
	Body        []byte
	ContentType string
	CacheState  string
	MarketOpen  bool
	TTL         util.TTLPair
}

type normalizeFunc func(body []byte) ([]byte, error)

// Router picks a provider per request, serves the edge cache and
// normalizes fallback-provider responses into the canonical shape.
// Cache population never blocks the response path.
type Router struct {
	primary  Provider
	fallback Provider
	finnhub  Provider
	policy   *CachePolicy
	cache    storage.CacheRepository
	client   *http.Client
	tasks    *util.TaskGroup
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewRouter(
	cfg *util.ProvidersConfig,
	policy *CachePolicy,
	cache storage.CacheRepository,
	tasks *util.TaskGroup,
	log *zap.SugaredLogger,
) *Router {
	return &Router{
		primary:  Provider{Name: ProviderTwelveData, BaseURL: cfg.TwelveDataBaseURL, AuthParam: "apikey", APIKey: cfg.TwelveDataAPIKey},
		fallback: Provider{Name: ProviderYahoo, BaseURL: cfg.YahooBaseURL},
		finnhub:  Provider{Name: ProviderFinnhub, BaseURL: cfg.FinnhubBaseURL, AuthParam: "token", APIKey: cfg.FinnhubAPIKey},
		policy:   policy,
		cache:    cache,
		client:   &http.Client{Timeout: cfg.UpstreamTimeout},
		tasks:    tasks,
		log:      log,
		now:      time.Now,
	}
}

// Quote routes to the fallback provider while the session is closed
// and to the primary provider while it is open.
func (rt *Router) Quote(ctx context.Context, symbol string) (*Result, error) {
	open := MarketOpen(rt.now())
	ttl := rt.policy.TTLFor(CategoryQuote, open)

	if open {
		query := url.Values{"symbol": {symbol}}
		return rt.serve(ctx, rt.primary, "/quote", query, ttl, open, passthrough(ProviderTwelveData))
	}

	path := "/v10/finance/quoteSummary/" + url.PathEscape(symbol)
	query := url.Values{"modules": {"price,summaryDetail"}}
	return rt.serve(ctx, rt.fallback, path, query, ttl, open, func(body []byte) ([]byte, error) {
		quote, err := NormalizeYahooQuote(body, open)
		if err != nil {
			return nil, err
		}
		return json.Marshal(quote)
	})
}

// Statistics follows the same session-based provider split as Quote.
func (rt *Router) Statistics(ctx context.Context, symbol string) (*Result, error) {
	open := MarketOpen(rt.now())
	ttl := rt.policy.TTLFor(CategoryStatistics, open)

	if open {
		query := url.Values{"symbol": {symbol}}
		return rt.serve(ctx, rt.primary, "/statistics", query, ttl, open, passthrough(ProviderTwelveData))
	}

	path := "/v10/finance/quoteSummary/" + url.PathEscape(symbol)
	query := url.Values{"modules": {"price,summaryDetail,defaultKeyStatistics,financialData"}}
	return rt.serve(ctx, rt.fallback, path, query, ttl, open, func(body []byte) ([]byte, error) {
		stats, err := NormalizeYahooStatistics(body)
		if err != nil {
			return nil, err
		}
		return json.Marshal(stats)
	})
}

// TimeSeries always routes to the primary provider, with interval and
// output-size defaults applied when absent.
func (rt *Router) TimeSeries(ctx context.Context, symbol, interval, outputSize string) (*Result, error) {
	open := MarketOpen(rt.now())
	ttl := rt.policy.TTLFor(CategoryTimeSeries, open)

	if interval == "" {
		interval = defaultInterval
	}
	if outputSize == "" {
		outputSize = defaultOutputSize
	}
	query := url.Values{
		"symbol":     {symbol},
		"interval":   {interval},
		"outputsize": {outputSize},
	}
	return rt.serve(ctx, rt.primary, "/time_series", query, ttl, open, passthrough(ProviderTwelveData))
}

// Finnhub proxies symbol-peer and related lookups to the named
// provider, bypassing the market-hours routing.
func (rt *Router) Finnhub(ctx context.Context, subpath string, query url.Values) (*Result, error) {
	open := MarketOpen(rt.now())
	ttl := finnhubTTL
	if strings.Contains(subpath, "peers") {
		ttl = finnhubPeerTTL
	}

	path := "/" + strings.Trim(subpath, "/")
	return rt.serve(ctx, rt.finnhub, path, query, ttl, open, func(body []byte) ([]byte, error) {
		return tagSource(body, ProviderFinnhub), nil
	})
}

func passthrough(name ProviderName) normalizeFunc {
	return func(body []byte) ([]byte, error) {
		return tagSource(body, name), nil
	}
}

func (rt *Router) serve(
	ctx context.Context,
	p Provider,
	path string,
	query url.Values,
	ttl util.TTLPair,
	open bool,
	normalize normalizeFunc,
) (*Result, error) {
	key := p.cacheKey(path, query)
	reqURL := p.requestURL(path, query)
	now := rt.now()

	entry, err := rt.cache.Get(ctx, key)
	if err != nil {
		rt.log.Warnw("edge cache read failed", "key", key, "error", err)
	}
	if entry != nil && entry.IsFresh(now) {
		return &Result{Body: entry.Body, ContentType: entry.ContentType, CacheState: CacheHit, MarketOpen: open, TTL: ttl}, nil
	}
	if entry != nil && entry.IsStale(now) {
		rt.refreshAsync(p, reqURL, key, ttl, normalize)
		return &Result{Body: entry.Body, ContentType: entry.ContentType, CacheState: CacheStale, MarketOpen: open, TTL: ttl}, nil
	}

	body, err := rt.fetch(ctx, p, reqURL, normalize)
	if err != nil {
		return nil, err
	}

	rt.storeAsync(key, models.CacheEntry{
		Body:        body,
		ContentType: contentTypeJSON,
		StoredAt:    now,
		Fresh:       ttl.Fresh,
		Stale:       ttl.Stale,
	})

	return &Result{Body: body, ContentType: contentTypeJSON, CacheState: CacheMiss, MarketOpen: open, TTL: ttl}, nil
}

// fetch issues the upstream call and classifies the outcome. Failed
// fetches never reach the cache.
func (rt *Router) fetch(ctx context.Context, p Provider, reqURL string, normalize normalizeFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	// Yahoo rejects requests without a browser-ish user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; edge-gateway/1.0)")

	resp, err := rt.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Provider: p.Name, Status: http.StatusBadGateway, Msg: "upstream unreachable"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Provider: p.Name, Status: http.StatusBadGateway, Msg: "upstream read failed"}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode == http.StatusTooManyRequests {
			rt.log.Warnw("upstream rate limited", "provider", p.Name, "status", resp.StatusCode)
		}
		return nil, &UpstreamError{
			Provider: p.Name,
			Status:   resp.StatusCode,
			Msg:      fmt.Sprintf("upstream returned status %d", resp.StatusCode),
		}
	}

	if normalize != nil {
		normalized, err := normalize(body)
		if err != nil {
			return nil, fmt.Errorf("normalize %s response: %w", p.Name, err)
		}
		body = normalized
	}
	return body, nil
}

// storeAsync persists a cache entry off the response path.
func (rt *Router) storeAsync(key string, entry models.CacheEntry) {
	rt.tasks.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()
		if err := rt.cache.Set(ctx, key, entry); err != nil {
			rt.log.Warnw("edge cache write failed", "key", key, "error", err)
		}
	})
}

// refreshAsync refetches a stale entry in the background while the
// stale body is being served.
func (rt *Router) refreshAsync(p Provider, reqURL, key string, ttl util.TTLPair, normalize normalizeFunc) {
	rt.tasks.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), rt.client.Timeout+cacheWriteTimeout)
		defer cancel()

		body, err := rt.fetch(ctx, p, reqURL, normalize)
		if err != nil {
			rt.log.Warnw("stale refresh failed", "key", key, "error", err)
			return
		}

		entry := models.CacheEntry{
			Body:        body,
			ContentType: contentTypeJSON,
			StoredAt:    rt.now(),
			Fresh:       ttl.Fresh,
			Stale:       ttl.Stale,
		}
		if err := rt.cache.Set(ctx, key, entry); err != nil {
			rt.log.Warnw("edge cache write failed", "key", key, "error", err)
		}
	})
}
