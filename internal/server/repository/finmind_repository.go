package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"tw-stock-dashboard/internal/entity"
	"tw-stock-dashboard/internal/server/config"
	"tw-stock-dashboard/internal/server/dto"
	"tw-stock-dashboard/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNoData marks a provider response whose data array was empty. Callers use
// it to distinguish "nothing to show" from a transport or decode failure.
var ErrNoData = errors.New("no data returned from provider")

const (
	DatasetStockPrice    = "TaiwanStockPrice"
	DatasetValuation     = "TaiwanStockPER"
	DatasetInstitutional = "TaiwanStockInstitutionalInvestorsBuySell"
	DatasetInstruments   = "TaiwanStockInfo"
)

// FinMindRepository fetches Taiwan market datasets from the provider API.
type FinMindRepository interface {
	GetDailyBars(ctx context.Context, stockID, startDate string) ([]entity.DailyBar, error)
	GetValuationRatios(ctx context.Context, stockID, startDate string) ([]entity.ValuationRatios, error)
	GetInstitutionalFlows(ctx context.Context, stockID, startDate string) ([]entity.InstitutionalFlow, error)
	GetInstruments(ctx context.Context) ([]entity.Instrument, error)
}

type finMindRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewFinMindRepository creates a rate-limited FinMind API client.
func NewFinMindRepository(cfg *config.Config, log *logger.Logger) FinMindRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.FinMind.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	return &finMindRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		requestLimiter: requestLimiter,
	}
}

func (r *finMindRepository) GetDailyBars(ctx context.Context, stockID, startDate string) ([]entity.DailyBar, error) {
	rows, err := r.fetchPriceRows(ctx, stockID, startDate)
	if err != nil {
		return nil, err
	}

	bars := make([]entity.DailyBar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, entity.DailyBar{
			Date:   row.Date,
			Open:   row.Open,
			High:   row.Max,
			Low:    row.Min,
			Close:  row.Close,
			Volume: row.TradingVolume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars, nil
}

func (r *finMindRepository) GetValuationRatios(ctx context.Context, stockID, startDate string) ([]entity.ValuationRatios, error) {
	body, err := r.fetchDataset(ctx, dto.GetStockDataParam{
		Dataset:   DatasetValuation,
		StockID:   stockID,
		StartDate: startDate,
	})
	if err != nil {
		return nil, err
	}

	var rows []dto.ValuationRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal valuation rows: %w", err)
	}

	ratios := make([]entity.ValuationRatios, 0, len(rows))
	for _, row := range rows {
		ratios = append(ratios, entity.ValuationRatios{
			Date: row.Date,
			PER:  row.PER,
			PBR:  row.PBR,
		})
	}
	sort.Slice(ratios, func(i, j int) bool { return ratios[i].Date < ratios[j].Date })
	return ratios, nil
}

func (r *finMindRepository) GetInstitutionalFlows(ctx context.Context, stockID, startDate string) ([]entity.InstitutionalFlow, error) {
	body, err := r.fetchDataset(ctx, dto.GetStockDataParam{
		Dataset:   DatasetInstitutional,
		StockID:   stockID,
		StartDate: startDate,
	})
	if err != nil {
		return nil, err
	}

	var rows []dto.InstitutionalRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal institutional rows: %w", err)
	}

	return AggregateInstitutionalRows(rows), nil
}

func (r *finMindRepository) GetInstruments(ctx context.Context) ([]entity.Instrument, error) {
	body, err := r.fetchDataset(ctx, dto.GetStockDataParam{Dataset: DatasetInstruments})
	if err != nil {
		return nil, err
	}

	var rows []dto.InstrumentRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instrument rows: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	instruments := make([]entity.Instrument, 0, len(rows))
	for _, row := range rows {
		if row.StockID == "" {
			continue
		}
		// The catalog dataset repeats a stock once per industry category.
		if _, ok := seen[row.StockID]; ok {
			continue
		}
		seen[row.StockID] = struct{}{}
		instruments = append(instruments, entity.Instrument{Code: row.StockID, Name: row.StockName})
	}
	return instruments, nil
}

func (r *finMindRepository) fetchPriceRows(ctx context.Context, stockID, startDate string) ([]dto.StockPriceRow, error) {
	body, err := r.fetchDataset(ctx, dto.GetStockDataParam{
		Dataset:   DatasetStockPrice,
		StockID:   stockID,
		StartDate: startDate,
	})
	if err != nil {
		return nil, err
	}

	var rows []dto.StockPriceRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price rows: %w", err)
	}
	return rows, nil
}

// fetchDataset issues one dataset call and returns the raw data array.
func (r *finMindRepository) fetchDataset(ctx context.Context, param dto.GetStockDataParam) (json.RawMessage, error) {
	fields := []zap.Field{
		zap.String("dataset", param.Dataset),
		zap.String("stock_id", param.StockID),
		zap.String("start_date", param.StartDate),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	query := url.Values{}
	query.Set("dataset", param.Dataset)
	if param.StockID != "" {
		query.Set("data_id", param.StockID)
	}
	if param.StartDate != "" {
		query.Set("start_date", param.StartDate)
	}
	if r.cfg.FinMind.Token != "" {
		query.Set("token", r.cfg.FinMind.Token)
	}
	apiURL := fmt.Sprintf("%s/api/v4/data?%s", strings.TrimRight(r.cfg.FinMind.BaseURL, "/"), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to FinMind API", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from FinMind API", fields...)
		return nil, fmt.Errorf("received non-OK response from FinMind API: %d - %s", resp.StatusCode, string(body))
	}

	var envelope dto.FinMindResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to decode FinMind response body", fields...)
		return nil, fmt.Errorf("failed to decode FinMind response body: %w", err)
	}

	data := strings.TrimSpace(string(envelope.Data))
	if data == "" || data == "null" || data == "[]" {
		return nil, fmt.Errorf("%w: dataset=%s data_id=%s", ErrNoData, param.Dataset, param.StockID)
	}

	return envelope.Data, nil
}

// AggregateInstitutionalRows folds the provider's per-class rows into one flow
// record per date. Foreign dealer self-trading counts as foreign, both dealer
// sub-classes count as dealer.
func AggregateInstitutionalRows(rows []dto.InstitutionalRow) []entity.InstitutionalFlow {
	byDate := make(map[string]*entity.InstitutionalFlow)
	for _, row := range rows {
		flow, ok := byDate[row.Date]
		if !ok {
			flow = &entity.InstitutionalFlow{Date: row.Date}
			byDate[row.Date] = flow
		}

		net := row.Buy - row.Sell
		switch row.Name {
		case "Foreign_Investor", "Foreign_Dealer_Self":
			flow.Foreign += net
		case "Investment_Trust":
			flow.Trust += net
		case "Dealer_self", "Dealer_Hedging":
			flow.Dealer += net
		default:
			continue
		}
		flow.Total = flow.Foreign + flow.Trust + flow.Dealer
	}

	flows := make([]entity.InstitutionalFlow, 0, len(byDate))
	for _, flow := range byDate {
		flows = append(flows, *flow)
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].Date < flows[j].Date })
	return flows
}
