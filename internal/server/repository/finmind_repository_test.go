package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tw-stock-dashboard/internal/server/config"
	"tw-stock-dashboard/internal/server/dto"
	"tw-stock-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFinMindRepo(t *testing.T, handler http.HandlerFunc) (FinMindRepository, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		FinMind: config.FinMind{
			BaseURL:             server.URL,
			MaxRequestPerMinute: 600,
		},
	}
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return NewFinMindRepository(cfg, log), server
}

func TestGetDailyBars(t *testing.T) {
	var gotQuery map[string]string
	repo, _ := newTestFinMindRepo(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"dataset":    r.URL.Query().Get("dataset"),
			"data_id":    r.URL.Query().Get("data_id"),
			"start_date": r.URL.Query().Get("start_date"),
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"msg":    "success",
			"status": 200,
			"data": []map[string]interface{}{
				{"date": "2026-08-26", "stock_id": "2330", "open": 104, "max": 106, "min": 103, "close": 105, "Trading_Volume": 25000},
				{"date": "2026-08-25", "stock_id": "2330", "open": 99, "max": 101, "min": 98, "close": 100, "Trading_Volume": 20000},
			},
		})
	})

	bars, err := repo.GetDailyBars(context.Background(), "2330", "2026-07-01")
	require.NoError(t, err)

	assert.Equal(t, DatasetStockPrice, gotQuery["dataset"])
	assert.Equal(t, "2330", gotQuery["data_id"])
	assert.Equal(t, "2026-07-01", gotQuery["start_date"])

	// Rows come back date-sorted ascending regardless of provider order.
	require.Len(t, bars, 2)
	assert.Equal(t, "2026-08-25", bars[0].Date)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, "2026-08-26", bars[1].Date)
	assert.Equal(t, 106.0, bars[1].High)
	assert.Equal(t, int64(25000), bars[1].Volume)
}

func TestFetchDatasetEmptyDataIsErrNoData(t *testing.T) {
	repo, _ := newTestFinMindRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"msg":    "success",
			"status": 200,
			"data":   []interface{}{},
		})
	})

	_, err := repo.GetDailyBars(context.Background(), "2330", "2026-07-01")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetchDatasetNonOKStatus(t *testing.T) {
	repo, _ := newTestFinMindRepo(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	})

	_, err := repo.GetDailyBars(context.Background(), "2330", "2026-07-01")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestGetInstruments(t *testing.T) {
	repo, _ := newTestFinMindRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"msg":    "success",
			"status": 200,
			"data": []map[string]interface{}{
				{"stock_id": "2330", "stock_name": "台積電", "type": "twse"},
				{"stock_id": "2330", "stock_name": "台積電", "type": "twse"},
				{"stock_id": "2317", "stock_name": "鴻海", "type": "twse"},
			},
		})
	})

	instruments, err := repo.GetInstruments(context.Background())
	require.NoError(t, err)

	// Duplicate catalog rows collapse to one instrument per code.
	require.Len(t, instruments, 2)
	assert.Equal(t, "2330", instruments[0].Code)
	assert.Equal(t, "鴻海", instruments[1].Name)
}

func TestAggregateInstitutionalRows(t *testing.T) {
	rows := []dto.InstitutionalRow{
		{Date: "2026-08-26", Name: "Foreign_Investor", Buy: 5000, Sell: 2000},
		{Date: "2026-08-26", Name: "Foreign_Dealer_Self", Buy: 100, Sell: 50},
		{Date: "2026-08-26", Name: "Investment_Trust", Buy: 800, Sell: 1000},
		{Date: "2026-08-26", Name: "Dealer_self", Buy: 300, Sell: 100},
		{Date: "2026-08-26", Name: "Dealer_Hedging", Buy: 50, Sell: 150},
		{Date: "2026-08-25", Name: "Foreign_Investor", Buy: 1000, Sell: 4000},
	}

	flows := AggregateInstitutionalRows(rows)
	require.Len(t, flows, 2)

	assert.Equal(t, "2026-08-25", flows[0].Date)
	assert.Equal(t, int64(-3000), flows[0].Foreign)
	assert.Equal(t, int64(-3000), flows[0].Total)

	latest := flows[1]
	assert.Equal(t, int64(3050), latest.Foreign)
	assert.Equal(t, int64(-200), latest.Trust)
	assert.Equal(t, int64(100), latest.Dealer)
	assert.Equal(t, latest.Foreign+latest.Trust+latest.Dealer, latest.Total)
	assert.Equal(t, int64(2950), latest.Total)
}
