package dto

import "encoding/json"

// FinMindResponse is the provider's JSON envelope. Every dataset call returns
// this shape with a dataset-specific array under "data".
type FinMindResponse struct {
	Msg    string          `json:"msg"`
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// StockPriceRow is one row of the TaiwanStockPrice dataset.
type StockPriceRow struct {
	Date          string  `json:"date"`
	StockID       string  `json:"stock_id"`
	Open          float64 `json:"open"`
	Max           float64 `json:"max"`
	Min           float64 `json:"min"`
	Close         float64 `json:"close"`
	TradingVolume int64   `json:"Trading_Volume"`
}

// ValuationRow is one row of the TaiwanStockPER dataset.
type ValuationRow struct {
	Date    string  `json:"date"`
	StockID string  `json:"stock_id"`
	PER     float64 `json:"PER"`
	PBR     float64 `json:"PBR"`
}

// InstitutionalRow is one row of the TaiwanStockInstitutionalInvestorsBuySell
// dataset. The provider splits dealers and foreign investors into sub-classes;
// aggregation into the three dashboard classes happens in the repository.
type InstitutionalRow struct {
	Date    string `json:"date"`
	StockID string `json:"stock_id"`
	Name    string `json:"name"`
	Buy     int64  `json:"buy"`
	Sell    int64  `json:"sell"`
}

// InstrumentRow is one row of the TaiwanStockInfo dataset.
type InstrumentRow struct {
	StockID   string `json:"stock_id"`
	StockName string `json:"stock_name"`
	Type      string `json:"type"`
}

// GetStockDataParam identifies one dataset request.
type GetStockDataParam struct {
	Dataset   string
	StockID   string
	StartDate string
}
