package repository

import (
	"context"

	"tw-stock-dashboard/internal/entity"

	"gorm.io/gorm"
)

// StockAnalysisRepository persists AI analysis runs.
type StockAnalysisRepository interface {
	Create(ctx context.Context, analysis *entity.StockAnalysis) error
	GetByStockCode(ctx context.Context, stockCode string, limit int) ([]entity.StockAnalysis, error)
}

type stockAnalysisRepository struct {
	db *gorm.DB
}

func NewStockAnalysisRepository(db *gorm.DB) StockAnalysisRepository {
	return &stockAnalysisRepository{db: db}
}

func (s *stockAnalysisRepository) Create(ctx context.Context, analysis *entity.StockAnalysis) error {
	return s.db.WithContext(ctx).Create(analysis).Error
}

func (s *stockAnalysisRepository) GetByStockCode(ctx context.Context, stockCode string, limit int) ([]entity.StockAnalysis, error) {
	var analyses []entity.StockAnalysis
	query := s.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}
