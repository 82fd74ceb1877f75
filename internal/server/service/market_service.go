package service

import (
	"context"
	"fmt"
	"sync"

	"tw-stock-dashboard/internal/entity"
	"tw-stock-dashboard/internal/server/config"
	"tw-stock-dashboard/internal/server/dto"
	"tw-stock-dashboard/internal/server/repository"
	"tw-stock-dashboard/pkg/logger"
	"tw-stock-dashboard/pkg/utils"
)

// Market indices shown on the dashboard overview.
var dashboardIndices = []struct {
	ID   string
	Name string
}{
	{ID: "TAIEX", Name: "加權指數"},
	{ID: "TPEx", Name: "櫃買指數"},
}

// MarketService aggregates provider datasets into dashboard snapshots.
type MarketService interface {
	GetSnapshot(ctx context.Context, code string) (*entity.StockSnapshot, error)
	GetInstitutional(ctx context.Context, code string) (*dto.InstitutionalResponse, error)
	GetIndices(ctx context.Context) ([]entity.IndexSnapshot, error)
}

type marketService struct {
	cfg         *config.Config
	log         *logger.Logger
	finMindRepo repository.FinMindRepository
	catalog     CatalogService
}

// NewMarketService creates the aggregation service.
func NewMarketService(cfg *config.Config, log *logger.Logger, finMindRepo repository.FinMindRepository, catalog CatalogService) MarketService {
	return &marketService{
		cfg:         cfg,
		log:         log,
		finMindRepo: finMindRepo,
		catalog:     catalog,
	}
}

// GetSnapshot fetches price history and valuation ratios concurrently and
// derives the day-over-day figures from the two most recent bars.
func (s *marketService) GetSnapshot(ctx context.Context, code string) (*entity.StockSnapshot, error) {
	instrument, err := s.catalog.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	startDate := s.historyStartDate()

	var (
		wg      sync.WaitGroup
		bars    []entity.DailyBar
		ratios  []entity.ValuationRatios
		barsErr error
		ratErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		bars, barsErr = s.finMindRepo.GetDailyBars(ctx, instrument.Code, startDate)
	}()
	go func() {
		defer wg.Done()
		ratios, ratErr = s.finMindRepo.GetValuationRatios(ctx, instrument.Code, startDate)
	}()
	wg.Wait()

	if barsErr != nil {
		return nil, fmt.Errorf("failed to get daily bars: %w", barsErr)
	}
	if ratErr != nil {
		return nil, fmt.Errorf("failed to get valuation ratios: %w", ratErr)
	}
	if len(bars) == 0 {
		return nil, repository.ErrNoData
	}

	latest := bars[len(bars)-1]
	change, percent := ComputeDelta(bars)

	window := s.cfg.FinMind.BarWindow
	if window > 0 && len(bars) > window {
		bars = bars[len(bars)-window:]
	}

	snapshot := &entity.StockSnapshot{
		Code:          instrument.Code,
		Name:          instrument.Name,
		Price:         latest.Close,
		Change:        change,
		PercentChange: percent,
		Volume:        latest.Volume,
		Bars:          bars,
		UpdatedAt:     latest.Date,
	}
	if len(ratios) > 0 {
		snapshot.PER = ratios[len(ratios)-1].PER
		snapshot.PBR = ratios[len(ratios)-1].PBR
	}

	s.log.DebugContext(ctx, "Built stock snapshot",
		logger.StringField("stock_code", snapshot.Code),
		logger.Float64Field("price", snapshot.Price),
		logger.IntField("bars", len(snapshot.Bars)),
	)
	return snapshot, nil
}

// GetInstitutional returns the recent flow records plus the latest-date totals.
func (s *marketService) GetInstitutional(ctx context.Context, code string) (*dto.InstitutionalResponse, error) {
	instrument, err := s.catalog.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	flows, err := s.finMindRepo.GetInstitutionalFlows(ctx, instrument.Code, s.historyStartDate())
	if err != nil {
		return nil, fmt.Errorf("failed to get institutional flows: %w", err)
	}
	if len(flows) == 0 {
		return nil, repository.ErrNoData
	}

	return &dto.InstitutionalResponse{
		StockCode: instrument.Code,
		Flows:     flows,
		Latest:    flows[len(flows)-1],
	}, nil
}

// GetIndices fetches every dashboard index concurrently; any failed fetch
// aborts the whole overview.
func (s *marketService) GetIndices(ctx context.Context) ([]entity.IndexSnapshot, error) {
	startDate := s.historyStartDate()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		snapshots = make([]entity.IndexSnapshot, len(dashboardIndices))
	)

	for i, index := range dashboardIndices {
		wg.Add(1)
		go func(i int, id, name string) {
			defer wg.Done()
			bars, err := s.finMindRepo.GetDailyBars(ctx, id, startDate)
			if err == nil && len(bars) == 0 {
				err = repository.ErrNoData
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to get index %s: %w", id, err)
				}
				mu.Unlock()
				return
			}

			latest := bars[len(bars)-1]
			change, percent := ComputeDelta(bars)
			mu.Lock()
			snapshots[i] = entity.IndexSnapshot{
				ID:            id,
				Name:          name,
				Level:         latest.Close,
				Change:        change,
				PercentChange: percent,
				Volume:        utils.FormatVolume(float64(latest.Volume)),
				Date:          latest.Date,
			}
			mu.Unlock()
		}(i, index.ID, index.Name)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return snapshots, nil
}

func (s *marketService) historyStartDate() string {
	days := s.cfg.FinMind.HistoryDays
	if days <= 0 {
		days = 60
	}
	return utils.TimeNowTaipei().AddDate(0, 0, -days).Format(utils.DateLayout)
}

// ComputeDelta derives change and percent change from the two most recent bars
// of a date-sorted series, both rounded to two decimals. A single-point series
// has no previous close, so both figures are zero.
func ComputeDelta(bars []entity.DailyBar) (change, percent float64) {
	if len(bars) < 2 {
		return 0, 0
	}
	last := bars[len(bars)-1].Close
	prev := bars[len(bars)-2].Close
	change = utils.RoundTwo(last - prev)
	if prev != 0 {
		percent = utils.RoundTwo(change / prev * 100)
	}
	return change, percent
}
