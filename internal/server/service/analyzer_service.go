package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"tw-stock-dashboard/internal/entity"
	"tw-stock-dashboard/internal/server/config"
	"tw-stock-dashboard/internal/server/dto"
	"tw-stock-dashboard/internal/server/repository"
	"tw-stock-dashboard/pkg/logger"
	"tw-stock-dashboard/pkg/telegram"

	goredis "github.com/redis/go-redis/v9"
)

// AnalyzerService orchestrates one AI analysis cycle for a stock.
type AnalyzerService interface {
	Analyze(ctx context.Context, code string) (*dto.StockAnalysisResult, error)
	History(ctx context.Context, code string, limit int) ([]entity.StockAnalysis, error)
}

type analyzerService struct {
	cfg          *config.Config
	log          *logger.Logger
	redisClient  *goredis.Client
	marketSvc    MarketService
	newsRepo     repository.NewsRepository
	aiRepo       repository.AIRepository
	analysisRepo repository.StockAnalysisRepository
	notifier     telegram.Notifier
}

// NewAnalyzerService creates the analysis orchestrator. The notifier may be
// nil when Telegram notifications are disabled.
func NewAnalyzerService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *goredis.Client,
	marketSvc MarketService,
	newsRepo repository.NewsRepository,
	aiRepo repository.AIRepository,
	analysisRepo repository.StockAnalysisRepository,
	notifier telegram.Notifier,
) AnalyzerService {
	return &analyzerService{
		cfg:          cfg,
		log:          log,
		redisClient:  redisClient,
		marketSvc:    marketSvc,
		newsRepo:     newsRepo,
		aiRepo:       aiRepo,
		analysisRepo: analysisRepo,
		notifier:     notifier,
	}
}

// Analyze aggregates the stock's market data, runs the model over it and
// persists the result. Results are cached per stock + market-data hash so a
// dashboard reload does not spend model quota while the inputs are unchanged.
func (s *analyzerService) Analyze(ctx context.Context, code string) (*dto.StockAnalysisResult, error) {
	snapshot, err := s.marketSvc.GetSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}

	institutional, err := s.marketSvc.GetInstitutional(ctx, snapshot.Code)
	if err != nil {
		return nil, err
	}

	dataHash := generateDataHash(snapshot, institutional.Flows)
	if cached, ok := s.cachedAnalysis(ctx, snapshot.Code, dataHash); ok {
		s.log.DebugContext(ctx, "Serving cached analysis", logger.StringField("stock_code", snapshot.Code))
		return cached, nil
	}

	// Headlines are context for the prompt, not an input the dashboard shows;
	// a feed outage should not block the analysis.
	headlines, err := s.newsRepo.GetHeadlines(ctx, snapshot.Code, snapshot.Name)
	if err != nil {
		s.log.Warn("Failed to fetch headlines, analyzing without news context",
			logger.StringField("stock_code", snapshot.Code),
			logger.ErrorField(err),
		)
		headlines = nil
	}

	result, err := s.aiRepo.AnalyzeStock(ctx, snapshot, institutional.Flows, headlines)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, snapshot, result); err != nil {
		s.log.Error("Failed to persist analysis", logger.ErrorField(err), logger.StringField("stock_code", snapshot.Code))
		return nil, err
	}

	s.cacheAnalysis(ctx, snapshot.Code, dataHash, result)

	if s.notifier != nil {
		message := telegram.FormatAnalysisMessage(snapshot.Name, result)
		if err := s.notifier.SendMessage(message); err != nil {
			s.log.Warn("Failed to send analysis notification", logger.ErrorField(err))
		}
	}

	return result, nil
}

// History returns the persisted analyses for a stock, newest first.
func (s *analyzerService) History(ctx context.Context, code string, limit int) ([]entity.StockAnalysis, error) {
	return s.analysisRepo.GetByStockCode(ctx, code, limit)
}

func (s *analyzerService) persist(ctx context.Context, snapshot *entity.StockSnapshot, result *dto.StockAnalysisResult) error {
	dataJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}
	return s.analysisRepo.Create(ctx, &entity.StockAnalysis{
		StockCode:   snapshot.Code,
		StockName:   snapshot.Name,
		Score:       result.Score,
		Trend:       result.Trend,
		MarketPrice: snapshot.Price,
		Data:        dataJSON,
	})
}

func (s *analyzerService) cachedAnalysis(ctx context.Context, code, dataHash string) (*dto.StockAnalysisResult, bool) {
	if s.redisClient == nil {
		return nil, false
	}
	raw, err := s.redisClient.Get(ctx, analysisCacheKey(code, dataHash)).Result()
	if err != nil {
		return nil, false
	}
	var result dto.StockAnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (s *analyzerService) cacheAnalysis(ctx context.Context, code, dataHash string, result *dto.StockAnalysisResult) {
	if s.redisClient == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	ttl := s.cfg.Analyzer.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := s.redisClient.Set(ctx, analysisCacheKey(code, dataHash), raw, ttl).Err(); err != nil {
		s.log.Warn("Failed to cache analysis", logger.ErrorField(err), logger.StringField("stock_code", code))
	}
}

func analysisCacheKey(code, dataHash string) string {
	return fmt.Sprintf("ai:analysis:%s:%s", code, dataHash)
}

// generateDataHash fingerprints the market data that feeds the prompt, so the
// cache invalidates exactly when the inputs change.
func generateDataHash(snapshot *entity.StockSnapshot, flows []entity.InstitutionalFlow) string {
	raw, _ := json.Marshal(struct {
		Snapshot *entity.StockSnapshot      `json:"snapshot"`
		Flows    []entity.InstitutionalFlow `json:"flows"`
	}{snapshot, flows})
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}
