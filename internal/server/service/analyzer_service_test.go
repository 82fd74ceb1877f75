package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tw-stock-dashboard/internal/entity"
	"tw-stock-dashboard/internal/server/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNewsRepo struct {
	headlines []dto.NewsHeadline
	err       error
}

func (f *fakeNewsRepo) GetHeadlines(context.Context, string, string) ([]dto.NewsHeadline, error) {
	return f.headlines, f.err
}

type fakeAIRepo struct {
	result *dto.StockAnalysisResult
	err    error
	calls  int
}

func (f *fakeAIRepo) AnalyzeStock(_ context.Context, snapshot *entity.StockSnapshot, _ []entity.InstitutionalFlow, _ []dto.NewsHeadline) (*dto.StockAnalysisResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	result := *f.result
	result.Symbol = snapshot.Code
	result.MarketPrice = snapshot.Price
	result.AnalysisDate = time.Now()
	return &result, nil
}

type fakeAnalysisRepo struct {
	created []*entity.StockAnalysis
}

func (f *fakeAnalysisRepo) Create(_ context.Context, analysis *entity.StockAnalysis) error {
	f.created = append(f.created, analysis)
	return nil
}

func (f *fakeAnalysisRepo) GetByStockCode(_ context.Context, stockCode string, _ int) ([]entity.StockAnalysis, error) {
	var out []entity.StockAnalysis
	for _, a := range f.created {
		if a.StockCode == stockCode {
			out = append(out, *a)
		}
	}
	return out, nil
}

func newAnalyzerFixture(t *testing.T) (AnalyzerService, *fakeAIRepo, *fakeAnalysisRepo) {
	t.Helper()
	finMind := &fakeFinMindRepo{
		bars: map[string][]entity.DailyBar{
			"2330": {
				{Date: "2026-08-25", Close: 100, Volume: 20000},
				{Date: "2026-08-26", Close: 105, Volume: 25000},
			},
		},
		flows: []entity.InstitutionalFlow{
			{Date: "2026-08-26", Foreign: 3000, Trust: 500, Dealer: -100, Total: 3400},
		},
		instruments: []entity.Instrument{{Code: "2330", Name: "台積電"}},
	}

	cfg := testConfig()
	log := testLogger(t)
	catalog := NewCatalogService(cfg, log, finMind)
	market := NewMarketService(cfg, log, finMind, catalog)

	aiRepo := &fakeAIRepo{result: &dto.StockAnalysisResult{Score: 72, Trend: "bullish", Summary: "短期偏多"}}
	analysisRepo := &fakeAnalysisRepo{}
	newsRepo := &fakeNewsRepo{err: errors.New("feed unavailable")}

	svc := NewAnalyzerService(cfg, log, nil, market, newsRepo, aiRepo, analysisRepo, nil)
	return svc, aiRepo, analysisRepo
}

func TestAnalyzePersistsResult(t *testing.T) {
	svc, aiRepo, analysisRepo := newAnalyzerFixture(t)

	result, err := svc.Analyze(context.Background(), "2330")
	require.NoError(t, err)

	assert.Equal(t, "2330", result.Symbol)
	assert.Equal(t, 72, result.Score)
	assert.Equal(t, 105.0, result.MarketPrice)
	assert.Equal(t, 1, aiRepo.calls)

	// A headline feed outage must not block the analysis.
	require.Len(t, analysisRepo.created, 1)
	stored := analysisRepo.created[0]
	assert.Equal(t, "2330", stored.StockCode)
	assert.Equal(t, "台積電", stored.StockName)
	assert.Equal(t, 72, stored.Score)
	assert.Equal(t, "bullish", stored.Trend)
	assert.NotEmpty(t, stored.Data)
}

func TestAnalyzePropagatesAIError(t *testing.T) {
	svc, aiRepo, analysisRepo := newAnalyzerFixture(t)
	aiRepo.err = errors.New("model overloaded")

	_, err := svc.Analyze(context.Background(), "2330")
	require.Error(t, err)
	assert.Empty(t, analysisRepo.created)
}

func TestAnalyzeUnknownStock(t *testing.T) {
	svc, _, _ := newAnalyzerFixture(t)

	_, err := svc.Analyze(context.Background(), "9999")
	assert.ErrorIs(t, err, ErrInstrumentNotFound)
}

func TestHistory(t *testing.T) {
	svc, _, _ := newAnalyzerFixture(t)

	_, err := svc.Analyze(context.Background(), "2330")
	require.NoError(t, err)

	history, err := svc.History(context.Background(), "2330", 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
