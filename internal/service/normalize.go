package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stockpeek/edge-gateway/internal/models"
)

var errEmptyUpstreamPayload = errors.New("empty upstream payload")

// Yahoo wraps most numbers as {"raw": 1.23, "fmt": "1.23"}. A missing
// field stays nil and surfaces as JSON null in the canonical shape,
// never as a synthesized value.
type yahooValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []yahooModules `json:"result"`
	} `json:"quoteSummary"`
}

type yahooModules struct {
	Price                *yahooPrice         `json:"price"`
	SummaryDetail        *yahooSummaryDetail `json:"summaryDetail"`
	DefaultKeyStatistics *yahooKeyStats      `json:"defaultKeyStatistics"`
	FinancialData        *yahooFinancials    `json:"financialData"`
}

type yahooPrice struct {
	Symbol                     *string     `json:"symbol"`
	ShortName                  *string     `json:"shortName"`
	ExchangeName               *string     `json:"exchangeName"`
	Currency                   *string     `json:"currency"`
	RegularMarketTime          *int64      `json:"regularMarketTime"`
	RegularMarketOpen          *yahooValue `json:"regularMarketOpen"`
	RegularMarketDayHigh       *yahooValue `json:"regularMarketDayHigh"`
	RegularMarketDayLow        *yahooValue `json:"regularMarketDayLow"`
	RegularMarketPrice         *yahooValue `json:"regularMarketPrice"`
	RegularMarketPreviousClose *yahooValue `json:"regularMarketPreviousClose"`
	RegularMarketChange        *yahooValue `json:"regularMarketChange"`
	RegularMarketChangePct     *yahooValue `json:"regularMarketChangePercent"`
	RegularMarketVolume        *yahooValue `json:"regularMarketVolume"`
	MarketCap                  *yahooValue `json:"marketCap"`
}

type yahooSummaryDetail struct {
	AverageVolume  *yahooValue `json:"averageVolume"`
	TrailingPE     *yahooValue `json:"trailingPE"`
	ForwardPE      *yahooValue `json:"forwardPE"`
	PriceToSales   *yahooValue `json:"priceToSalesTrailing12Months"`
	Beta           *yahooValue `json:"beta"`
	FiftyTwoWkHigh *yahooValue `json:"fiftyTwoWeekHigh"`
	FiftyTwoWkLow  *yahooValue `json:"fiftyTwoWeekLow"`
	FiftyDayAvg    *yahooValue `json:"fiftyDayAverage"`
	TwoHundredAvg  *yahooValue `json:"twoHundredDayAverage"`
	DividendRate   *yahooValue `json:"dividendRate"`
	DividendYield  *yahooValue `json:"dividendYield"`
	PayoutRatio    *yahooValue `json:"payoutRatio"`
	ExDividendDate *yahooValue `json:"exDividendDate"`
}

type yahooKeyStats struct {
	EnterpriseValue   *yahooValue `json:"enterpriseValue"`
	ForwardPE         *yahooValue `json:"forwardPE"`
	PegRatio          *yahooValue `json:"pegRatio"`
	PriceToBook       *yahooValue `json:"priceToBook"`
	EvToRevenue       *yahooValue `json:"enterpriseToRevenue"`
	EvToEbitda        *yahooValue `json:"enterpriseToEbitda"`
	ProfitMargins     *yahooValue `json:"profitMargins"`
	TrailingEps       *yahooValue `json:"trailingEps"`
	SharesOutstanding *yahooValue `json:"sharesOutstanding"`
	FloatShares       *yahooValue `json:"floatShares"`
}

type yahooFinancials struct {
	TotalRevenue      *yahooValue `json:"totalRevenue"`
	GrossProfits      *yahooValue `json:"grossProfits"`
	Ebitda            *yahooValue `json:"ebitda"`
	TotalCash         *yahooValue `json:"totalCash"`
	TotalDebt         *yahooValue `json:"totalDebt"`
	DebtToEquity      *yahooValue `json:"debtToEquity"`
	CurrentRatio      *yahooValue `json:"currentRatio"`
	OperatingMargins  *yahooValue `json:"operatingMargins"`
	ReturnOnAssets    *yahooValue `json:"returnOnAssets"`
	ReturnOnEquity    *yahooValue `json:"returnOnEquity"`
	OperatingCashflow *yahooValue `json:"operatingCashflow"`
	FreeCashflow      *yahooValue `json:"freeCashflow"`
}

func rawOf(v *yahooValue) *float64 {
	if v == nil {
		return nil
	}
	return v.Raw
}

func fmtOf(v *yahooValue) *string {
	if v == nil || v.Fmt == "" {
		return nil
	}
	s := v.Fmt
	return &s
}

func parseYahooSummary(body []byte) (*yahooModules, error) {
	var summary yahooSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("decode fallback payload: %w", err)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, errEmptyUpstreamPayload
	}
	return &summary.QuoteSummary.Result[0], nil
}

// NormalizeYahooQuote rewrites a fallback-provider quoteSummary
// payload into the canonical quote shape.
func NormalizeYahooQuote(body []byte, marketOpen bool) (*models.Quote, error) {
	mod, err := parseYahooSummary(body)
	if err != nil {
		return nil, err
	}

	quote := &models.Quote{
		IsMarketOpen: marketOpen,
		Source:       string(ProviderYahoo),
	}
	if price := mod.Price; price != nil {
		quote.Symbol = price.Symbol
		quote.Name = price.ShortName
		quote.Exchange = price.ExchangeName
		quote.Currency = price.Currency
		quote.Timestamp = price.RegularMarketTime
		if price.RegularMarketTime != nil {
			datetime := time.Unix(*price.RegularMarketTime, 0).UTC().Format("2006-01-02")
			quote.Datetime = &datetime
		}
		quote.Open = rawOf(price.RegularMarketOpen)
		quote.High = rawOf(price.RegularMarketDayHigh)
		quote.Low = rawOf(price.RegularMarketDayLow)
		quote.Close = rawOf(price.RegularMarketPrice)
		quote.PreviousClose = rawOf(price.RegularMarketPreviousClose)
		quote.Change = rawOf(price.RegularMarketChange)
		if pct := rawOf(price.RegularMarketChangePct); pct != nil {
			// Yahoo reports the change as a fraction, the canonical shape uses percent.
			scaled := *pct * 100
			quote.PercentChange = &scaled
		}
		quote.Volume = rawOf(price.RegularMarketVolume)
	}
	if detail := mod.SummaryDetail; detail != nil {
		quote.AverageVolume = rawOf(detail.AverageVolume)
	}

	return quote, nil
}

// NormalizeYahooStatistics rewrites a fallback-provider quoteSummary
// payload into the canonical statistics shape.
func NormalizeYahooStatistics(body []byte) (*models.Statistics, error) {
	mod, err := parseYahooSummary(body)
	if err != nil {
		return nil, err
	}

	stats := &models.Statistics{
		Source: string(ProviderYahoo),
	}
	if price := mod.Price; price != nil {
		stats.Symbol = price.Symbol
		stats.Name = price.ShortName
		stats.Currency = price.Currency
		stats.Valuation.MarketCap = rawOf(price.MarketCap)
	}
	if detail := mod.SummaryDetail; detail != nil {
		stats.Valuation.TrailingPE = rawOf(detail.TrailingPE)
		stats.Valuation.ForwardPE = rawOf(detail.ForwardPE)
		stats.Valuation.PriceToSales = rawOf(detail.PriceToSales)
		stats.Stock.Beta = rawOf(detail.Beta)
		stats.Stock.FiftyTwoWeekHigh = rawOf(detail.FiftyTwoWkHigh)
		stats.Stock.FiftyTwoWeekLow = rawOf(detail.FiftyTwoWkLow)
		stats.Stock.FiftyDayAverage = rawOf(detail.FiftyDayAvg)
		stats.Stock.TwoHundredDayAverage = rawOf(detail.TwoHundredAvg)
		stats.Stock.AverageVolume = rawOf(detail.AverageVolume)
		stats.Dividend.Rate = rawOf(detail.DividendRate)
		stats.Dividend.Yield = rawOf(detail.DividendYield)
		stats.Dividend.PayoutRatio = rawOf(detail.PayoutRatio)
		stats.Dividend.ExDividendDate = fmtOf(detail.ExDividendDate)
	}
	if keyStats := mod.DefaultKeyStatistics; keyStats != nil {
		stats.Valuation.EnterpriseValue = rawOf(keyStats.EnterpriseValue)
		if stats.Valuation.ForwardPE == nil {
			stats.Valuation.ForwardPE = rawOf(keyStats.ForwardPE)
		}
		stats.Valuation.PegRatio = rawOf(keyStats.PegRatio)
		stats.Valuation.PriceToBook = rawOf(keyStats.PriceToBook)
		stats.Valuation.EvToRevenue = rawOf(keyStats.EvToRevenue)
		stats.Valuation.EvToEbitda = rawOf(keyStats.EvToEbitda)
		stats.Financial.ProfitMargin = rawOf(keyStats.ProfitMargins)
		stats.Financial.Eps = rawOf(keyStats.TrailingEps)
		stats.Stock.SharesOutstanding = rawOf(keyStats.SharesOutstanding)
		stats.Stock.FloatShares = rawOf(keyStats.FloatShares)
	}
	if fin := mod.FinancialData; fin != nil {
		stats.Financial.Revenue = rawOf(fin.TotalRevenue)
		stats.Financial.GrossProfit = rawOf(fin.GrossProfits)
		stats.Financial.Ebitda = rawOf(fin.Ebitda)
		stats.Financial.TotalCash = rawOf(fin.TotalCash)
		stats.Financial.TotalDebt = rawOf(fin.TotalDebt)
		stats.Financial.DebtToEquity = rawOf(fin.DebtToEquity)
		stats.Financial.CurrentRatio = rawOf(fin.CurrentRatio)
		stats.Financial.OperatingMargin = rawOf(fin.OperatingMargins)
		stats.Financial.ReturnOnAssets = rawOf(fin.ReturnOnAssets)
		stats.Financial.ReturnOnEquity = rawOf(fin.ReturnOnEquity)
		stats.Financial.OperatingCashFlow = rawOf(fin.OperatingCashflow)
		stats.Financial.FreeCashFlow = rawOf(fin.FreeCashflow)
	}

	return stats, nil
}

// tagSource injects the source tag into a pass-through provider
// payload. Non-object bodies (finnhub peer lists are bare arrays) are
// forwarded untouched.
func tagSource(body []byte, source ProviderName) []byte {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return body
	}
	payload["source"] = string(source)
	tagged, err := json.Marshal(payload)
	if err != nil {
		return body
	}
	return tagged
}
