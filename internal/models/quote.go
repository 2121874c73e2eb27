package models

// Quote is the canonical quote shape every provider is normalized
// into. Fields the upstream payload lacks stay nil and serialize as
// JSON null.
type Quote struct {
	Symbol        *string  `json:"symbol"`
	Name          *string  `json:"name"`
	Exchange      *string  `json:"exchange"`
	Currency      *string  `json:"currency"`
	Datetime      *string  `json:"datetime"`
	Timestamp     *int64   `json:"timestamp"`
	Open          *float64 `json:"open"`
	High          *float64 `json:"high"`
	Low           *float64 `json:"low"`
	Close         *float64 `json:"close"`
	PreviousClose *float64 `json:"previous_close"`
	Change        *float64 `json:"change"`
	PercentChange *float64 `json:"percent_change"`
	Volume        *float64 `json:"volume"`
	AverageVolume *float64 `json:"average_volume"`
	IsMarketOpen  bool     `json:"is_market_open"`
	Source        string   `json:"source"`
}

// Statistics is the canonical statistics shape: nested metric groups
// plus a source tag.
type Statistics struct {
	Symbol    *string          `json:"symbol"`
	Name      *string          `json:"name"`
	Currency  *string          `json:"currency"`
	Valuation ValuationMetrics `json:"valuation"`
	Financial FinancialMetrics `json:"financial"`
	Stock     StockMetrics     `json:"stock"`
	Dividend  DividendMetrics  `json:"dividend"`
	Source    string           `json:"source"`
}

type ValuationMetrics struct {
	MarketCap       *float64 `json:"market_cap"`
	EnterpriseValue *float64 `json:"enterprise_value"`
	TrailingPE      *float64 `json:"trailing_pe"`
	ForwardPE       *float64 `json:"forward_pe"`
	PegRatio        *float64 `json:"peg_ratio"`
	PriceToSales    *float64 `json:"price_to_sales"`
	PriceToBook     *float64 `json:"price_to_book"`
	EvToRevenue     *float64 `json:"ev_to_revenue"`
	EvToEbitda      *float64 `json:"ev_to_ebitda"`
}

type FinancialMetrics struct {
	ProfitMargin      *float64 `json:"profit_margin"`
	OperatingMargin   *float64 `json:"operating_margin"`
	ReturnOnAssets    *float64 `json:"return_on_assets"`
	ReturnOnEquity    *float64 `json:"return_on_equity"`
	Revenue           *float64 `json:"revenue"`
	GrossProfit       *float64 `json:"gross_profit"`
	Ebitda            *float64 `json:"ebitda"`
	Eps               *float64 `json:"eps"`
	TotalCash         *float64 `json:"total_cash"`
	TotalDebt         *float64 `json:"total_debt"`
	DebtToEquity      *float64 `json:"debt_to_equity"`
	CurrentRatio      *float64 `json:"current_ratio"`
	OperatingCashFlow *float64 `json:"operating_cash_flow"`
	FreeCashFlow      *float64 `json:"free_cash_flow"`
}

type StockMetrics struct {
	Beta                 *float64 `json:"beta"`
	FiftyTwoWeekHigh     *float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow      *float64 `json:"fifty_two_week_low"`
	FiftyDayAverage      *float64 `json:"fifty_day_average"`
	TwoHundredDayAverage *float64 `json:"two_hundred_day_average"`
	SharesOutstanding    *float64 `json:"shares_outstanding"`
	FloatShares          *float64 `json:"float_shares"`
	AverageVolume        *float64 `json:"average_volume"`
}

type DividendMetrics struct {
	Rate           *float64 `json:"dividend_rate"`
	Yield          *float64 `json:"dividend_yield"`
	PayoutRatio    *float64 `json:"payout_ratio"`
	ExDividendDate *string  `json:"ex_dividend_date"`
}
