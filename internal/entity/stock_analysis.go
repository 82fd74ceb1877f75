package entity

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StockAnalysis is one persisted AI analysis run for a stock.
type StockAnalysis struct {
	ID          int64          `json:"id"`
	StockCode   string         `json:"stock_code"`
	StockName   string         `json:"stock_name"`
	Score       int            `json:"score"`
	Trend       string         `json:"trend"`
	MarketPrice float64        `json:"market_price"`
	Data        datatypes.JSON `gorm:"type:jsonb" json:"data"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at"`
}

func (StockAnalysis) TableName() string {
	return "stock_analyses"
}
