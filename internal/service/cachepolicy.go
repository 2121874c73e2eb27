package service

import (
	"github.com/stockpeek/edge-gateway/internal/util"
)

// Category is the endpoint category the TTL policy keys on.
type Category string

const (
	CategoryQuote      Category = "quote"
	CategoryStatistics Category = "statistics"
	CategoryTimeSeries Category = "time_series"
)

// CachePolicy maps (category, session state) to a fresh/stale window.
// Total: unknown categories fall back to the quote row.
type CachePolicy struct {
	open   map[Category]util.TTLPair
	closed map[Category]util.TTLPair
}

func NewCachePolicy(cfg *util.CachePolicyConfig) *CachePolicy {
	return &CachePolicy{
		open: map[Category]util.TTLPair{
			CategoryQuote:      cfg.QuoteOpen,
			CategoryStatistics: cfg.StatisticsOpen,
			CategoryTimeSeries: cfg.TimeSeriesOpen,
		},
		closed: map[Category]util.TTLPair{
			CategoryQuote:      cfg.QuoteClosed,
			CategoryStatistics: cfg.StatisticsClosed,
			CategoryTimeSeries: cfg.TimeSeriesClosed,
		},
	}
}

func (p *CachePolicy) TTLFor(category Category, marketOpen bool) util.TTLPair {
	table := p.closed
	if marketOpen {
		table = p.open
	}
	if pair, ok := table[category]; ok {
		return pair
	}
	return table[CategoryQuote]
}
