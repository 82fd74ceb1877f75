package entity

// Instrument is one entry of the provider's instrument catalog.
type Instrument struct {
	Code string `json:"stock_id"`
	Name string `json:"stock_name"`
}

// DailyBar is a single daily price record, date-sorted ascending within a series.
type DailyBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// ValuationRatios holds the trailing valuation figures for one date.
type ValuationRatios struct {
	Date string  `json:"date"`
	PER  float64 `json:"per"`
	PBR  float64 `json:"pbr"`
}

// InstitutionalFlow holds per-date net buy/sell volumes for the three investor
// classes tracked on the Taiwan market plus their sum.
type InstitutionalFlow struct {
	Date    string `json:"date"`
	Foreign int64  `json:"foreign"`
	Trust   int64  `json:"trust"`
	Dealer  int64  `json:"dealer"`
	Total   int64  `json:"total"`
}

// IndexSnapshot is a point-in-time view of a market index.
type IndexSnapshot struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Level         float64 `json:"level"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
	Volume        string  `json:"volume"`
	Date          string  `json:"date"`
}

// StockSnapshot aggregates everything the dashboard shows for one stock. It is
// produced once per fetch cycle and never mutated afterwards.
type StockSnapshot struct {
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Price         float64    `json:"price"`
	Change        float64    `json:"change"`
	PercentChange float64    `json:"percent_change"`
	Volume        int64      `json:"volume"`
	PER           float64    `json:"per"`
	PBR           float64    `json:"pbr"`
	Bars          []DailyBar `json:"bars"`
	UpdatedAt     string     `json:"updated_at"`
}
