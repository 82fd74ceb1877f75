package dto

import "tw-stock-dashboard/internal/entity"

// SearchResponse is the body returned by identifier resolution.
type SearchResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// InstitutionalResponse carries recent flow records plus the latest-date totals.
type InstitutionalResponse struct {
	StockCode string                     `json:"stock_code"`
	Flows     []entity.InstitutionalFlow `json:"flows"`
	Latest    entity.InstitutionalFlow   `json:"latest"`
}

// IndicesResponse carries the market overview snapshots.
type IndicesResponse struct {
	Indices []entity.IndexSnapshot `json:"indices"`
}

// NewsHeadline is one headline handed to the AI prompt as context.
type NewsHeadline struct {
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
}
