package repository

import (
	"context"
	"fmt"
	"net/url"

	"tw-stock-dashboard/internal/server/config"
	"tw-stock-dashboard/internal/server/dto"
	"tw-stock-dashboard/pkg/logger"

	"github.com/mmcdole/gofeed"
)

// NewsRepository fetches recent news headlines for a stock.
type NewsRepository interface {
	GetHeadlines(ctx context.Context, code, name string) ([]dto.NewsHeadline, error)
}

type newsRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	parser *gofeed.Parser
}

// NewNewsRepository creates a Google News RSS headline fetcher.
func NewNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &newsRepository{
		cfg:    cfg,
		log:    log,
		parser: gofeed.NewParser(),
	}
}

func (r *newsRepository) GetHeadlines(ctx context.Context, code, name string) ([]dto.NewsHeadline, error) {
	query := url.QueryEscape(fmt.Sprintf("%s %s 股票", code, name))
	feedURL := fmt.Sprintf("%s/search?q=%s&hl=zh-TW&gl=TW&ceid=TW:zh-Hant", r.cfg.News.BaseURL, query)

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch news feed",
			logger.StringField("stock_code", code),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("failed to fetch news feed: %w", err)
	}

	max := r.cfg.News.MaxHeadlines
	if max <= 0 {
		max = 10
	}

	headlines := make([]dto.NewsHeadline, 0, max)
	for _, item := range feed.Items {
		if len(headlines) >= max {
			break
		}
		published := ""
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.Format("2006-01-02 15:04")
		}
		source := ""
		if item.Custom != nil {
			source = item.Custom["source"]
		}
		headlines = append(headlines, dto.NewsHeadline{
			Title:       item.Title,
			PublishedAt: published,
			Source:      source,
		})
	}

	r.log.DebugContext(ctx, "Fetched news headlines",
		logger.StringField("stock_code", code),
		logger.IntField("count", len(headlines)),
	)
	return headlines, nil
}
