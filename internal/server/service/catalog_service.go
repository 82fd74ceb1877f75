package service

import (
	"context"
	"strings"
	"time"

	"tw-stock-dashboard/internal/entity"
	"tw-stock-dashboard/internal/server/config"
	"tw-stock-dashboard/internal/server/repository"
	"tw-stock-dashboard/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
)

const catalogCacheKey = "instruments"

// CatalogService resolves free-text queries against the instrument catalog.
// The catalog is cached with an explicit TTL and refreshed on a schedule; an
// empty refresh never overwrites a previously good catalog.
type CatalogService interface {
	Resolve(ctx context.Context, query string) (*entity.Instrument, error)
	Refresh(ctx context.Context) error
	Start(ctx context.Context)
	Stop()
}

type catalogService struct {
	cfg         *config.Config
	log         *logger.Logger
	finMindRepo repository.FinMindRepository
	cache       *cache.Cache
	cron        *cron.Cron
}

// NewCatalogService creates the catalog service with its TTL cache.
func NewCatalogService(cfg *config.Config, log *logger.Logger, finMindRepo repository.FinMindRepository) CatalogService {
	ttl := cfg.Catalog.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &catalogService{
		cfg:         cfg,
		log:         log,
		finMindRepo: finMindRepo,
		cache:       cache.New(ttl, 2*ttl),
		cron:        cron.New(),
	}
}

// Start schedules the periodic catalog refresh.
func (s *catalogService) Start(ctx context.Context) {
	spec := s.cfg.Catalog.RefreshCron
	if spec == "" {
		spec = "0 6 * * *"
	}
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.Refresh(context.Background()); err != nil {
			s.log.Error("Scheduled catalog refresh failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		s.log.Error("Failed to schedule catalog refresh", logger.ErrorField(err), logger.StringField("cron", spec))
		return
	}
	s.cron.Start()
}

// Stop halts the refresh schedule.
func (s *catalogService) Stop() {
	s.cron.Stop()
}

// Refresh fetches the full instrument list and replaces the cached catalog.
func (s *catalogService) Refresh(ctx context.Context) error {
	instruments, err := s.finMindRepo.GetInstruments(ctx)
	if err != nil {
		return err
	}
	if len(instruments) == 0 {
		// Keep serving the stale catalog rather than an empty one.
		s.log.Warn("Catalog refresh returned no instruments, keeping previous catalog")
		return nil
	}
	s.cache.Set(catalogCacheKey, instruments, cache.DefaultExpiration)
	s.log.Info("Instrument catalog refreshed", logger.IntField("count", len(instruments)))
	return nil
}

// Resolve maps a free-text query to a catalog instrument: exact code first,
// then exact name, then substring over code and name. First match wins.
func (s *catalogService) Resolve(ctx context.Context, query string) (*entity.Instrument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInstrumentNotFound
	}

	instruments, err := s.instruments(ctx)
	if err != nil {
		return nil, err
	}

	for _, inst := range instruments {
		if inst.Code == query || inst.Name == query {
			matched := inst
			return &matched, nil
		}
	}
	for _, inst := range instruments {
		if strings.Contains(inst.Code, query) || strings.Contains(inst.Name, query) {
			matched := inst
			return &matched, nil
		}
	}
	return nil, ErrInstrumentNotFound
}

func (s *catalogService) instruments(ctx context.Context) ([]entity.Instrument, error) {
	if cached, ok := s.cache.Get(catalogCacheKey); ok {
		return cached.([]entity.Instrument), nil
	}
	instruments, err := s.finMindRepo.GetInstruments(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(catalogCacheKey, instruments, cache.DefaultExpiration)
	return instruments, nil
}
