package config

import (
	"time"

	"tw-stock-dashboard/pkg/config"
)

// FinMind holds the configuration for the market data provider API.
type FinMind struct {
	BaseURL             string `mapstructure:"base_url"`
	Token               string `mapstructure:"token"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	HistoryDays         int    `mapstructure:"history_days"`
	BarWindow           int    `mapstructure:"bar_window"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// News holds the configuration for the news headline feed.
type News struct {
	BaseURL      string `mapstructure:"base_url"`
	MaxHeadlines int    `mapstructure:"max_headlines"`
}

// Telegram holds configuration for the optional Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Catalog holds the instrument catalog cache policy.
type Catalog struct {
	TTL         time.Duration `mapstructure:"ttl"`
	RefreshCron string        `mapstructure:"refresh_cron"`
}

// Analyzer holds the AI analysis cache policy.
type Analyzer struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Config holds the full configuration for the dashboard server.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	FinMind  FinMind         `mapstructure:"finmind"`
	Gemini   Gemini          `mapstructure:"gemini"`
	News     News            `mapstructure:"news"`
	Telegram Telegram        `mapstructure:"telegram"`
	Catalog  Catalog         `mapstructure:"catalog"`
	Analyzer Analyzer        `mapstructure:"analyzer"`
}

// Load loads the server configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
