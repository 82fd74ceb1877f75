package dto

import "time"

// ForecastPoint is one day of the AI price forecast.
type ForecastPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// BrokerageAttribution names a brokerage and its attributed net activity.
type BrokerageAttribution struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
	Side   string `json:"side"`
}

// StockAnalysisResult is the structured result of one AI analysis run.
type StockAnalysisResult struct {
	Symbol            string                 `json:"symbol"`
	AnalysisDate      time.Time              `json:"analysis_date"`
	MarketPrice       float64                `json:"market_price"`
	Summary           string                 `json:"summary"`
	FinancialSummary  string                 `json:"financial_summary"`
	InstitutionalView string                 `json:"institutional_summary"`
	Score             int                    `json:"score"`
	Trend             string                 `json:"trend"`
	Forecast          []ForecastPoint        `json:"forecast"`
	Brokerages        []BrokerageAttribution `json:"brokerages"`
}
