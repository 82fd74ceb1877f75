package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tw-stock-dashboard/internal/entity"
	"tw-stock-dashboard/internal/server/dto"
	"tw-stock-dashboard/internal/server/repository"
	"tw-stock-dashboard/internal/server/service"
	"tw-stock-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogService struct {
	instrument *entity.Instrument
	err        error
}

func (f *fakeCatalogService) Resolve(context.Context, string) (*entity.Instrument, error) {
	return f.instrument, f.err
}
func (f *fakeCatalogService) Refresh(context.Context) error { return nil }
func (f *fakeCatalogService) Start(context.Context)         {}
func (f *fakeCatalogService) Stop()                         {}

type fakeMarketService struct {
	snapshot      *entity.StockSnapshot
	institutional *dto.InstitutionalResponse
	indices       []entity.IndexSnapshot
	err           error
}

func (f *fakeMarketService) GetSnapshot(context.Context, string) (*entity.StockSnapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeMarketService) GetInstitutional(context.Context, string) (*dto.InstitutionalResponse, error) {
	return f.institutional, f.err
}

func (f *fakeMarketService) GetIndices(context.Context) ([]entity.IndexSnapshot, error) {
	return f.indices, f.err
}

type fakeAnalyzerService struct {
	result  *dto.StockAnalysisResult
	history []entity.StockAnalysis
	err     error
}

func (f *fakeAnalyzerService) Analyze(context.Context, string) (*dto.StockAnalysisResult, error) {
	return f.result, f.err
}

func (f *fakeAnalyzerService) History(context.Context, string, int) ([]entity.StockAnalysis, error) {
	return f.history, f.err
}

func newTestHandler(t *testing.T, catalog service.CatalogService, market service.MarketService, analyzer service.AnalyzerService) *StockHandler {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return NewStockHandler(catalog, market, analyzer, log)
}

func doRequest(handler func(echo.Context) error, method, target string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for name, value := range params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
	_ = handler(c)
	return rec
}

func TestSearchStock(t *testing.T) {
	h := newTestHandler(t,
		&fakeCatalogService{instrument: &entity.Instrument{Code: "2330", Name: "台積電"}},
		&fakeMarketService{}, &fakeAnalyzerService{})

	rec := doRequest(h.SearchStock, http.MethodGet, "/api/v1/stocks/search?q=台積電", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body dto.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2330", body.Code)
	assert.Equal(t, "台積電", body.Name)
}

func TestSearchStockMissingQuery(t *testing.T) {
	h := newTestHandler(t, &fakeCatalogService{}, &fakeMarketService{}, &fakeAnalyzerService{})

	rec := doRequest(h.SearchStock, http.MethodGet, "/api/v1/stocks/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchStockNotFound(t *testing.T) {
	h := newTestHandler(t,
		&fakeCatalogService{err: service.ErrInstrumentNotFound},
		&fakeMarketService{}, &fakeAnalyzerService{})

	rec := doRequest(h.SearchStock, http.MethodGet, "/api/v1/stocks/search?q=9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStockNoData(t *testing.T) {
	h := newTestHandler(t, &fakeCatalogService{},
		&fakeMarketService{err: repository.ErrNoData}, &fakeAnalyzerService{})

	rec := doRequest(h.GetStock, http.MethodGet, "/api/v1/stocks/2330", map[string]string{"code": "2330"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStockUpstreamFailure(t *testing.T) {
	h := newTestHandler(t, &fakeCatalogService{},
		&fakeMarketService{err: errors.New("connection refused")}, &fakeAnalyzerService{})

	rec := doRequest(h.GetStock, http.MethodGet, "/api/v1/stocks/2330", map[string]string{"code": "2330"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetStock(t *testing.T) {
	h := newTestHandler(t, &fakeCatalogService{},
		&fakeMarketService{snapshot: &entity.StockSnapshot{Code: "2330", Price: 105, Change: 5, PercentChange: 5}},
		&fakeAnalyzerService{})

	rec := doRequest(h.GetStock, http.MethodGet, "/api/v1/stocks/2330", map[string]string{"code": "2330"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var body entity.StockSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 105.0, body.Price)
}

func TestAnalyze(t *testing.T) {
	h := newTestHandler(t, &fakeCatalogService{}, &fakeMarketService{},
		&fakeAnalyzerService{result: &dto.StockAnalysisResult{Symbol: "2330", Score: 72, Trend: "bullish"}})

	rec := doRequest(h.Analyze, http.MethodPost, "/api/v1/stocks/2330/analysis", map[string]string{"code": "2330"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var body dto.StockAnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 72, body.Score)
}

func TestGetAnalysisHistoryInvalidLimit(t *testing.T) {
	h := newTestHandler(t, &fakeCatalogService{}, &fakeMarketService{}, &fakeAnalyzerService{})

	rec := doRequest(h.GetAnalysisHistory, http.MethodGet, "/api/v1/stocks/2330/analysis/history?limit=abc", map[string]string{"code": "2330"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetIndices(t *testing.T) {
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	h := NewMarketHandler(&fakeMarketService{indices: []entity.IndexSnapshot{
		{ID: "TAIEX", Level: 24120, Change: 120, PercentChange: 0.5},
	}}, log)

	rec := doRequest(h.GetIndices, http.MethodGet, "/api/v1/market/indices", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body dto.IndicesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Indices, 1)
	assert.Equal(t, "TAIEX", body.Indices[0].ID)
}
