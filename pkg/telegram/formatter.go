package telegram

import (
	"fmt"
	"strings"

	"tw-stock-dashboard/internal/server/dto"
)

// FormatAnalysisMessage renders one analysis result as a Markdown message.
func FormatAnalysisMessage(stockName string, result *dto.StockAnalysisResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 *%s (%s) AI 分析*\n\n", stockName, result.Symbol))
	b.WriteString(fmt.Sprintf("💰 *現價:* %.2f\n", result.MarketPrice))

	var trendIcon string
	switch strings.ToLower(result.Trend) {
	case "bullish":
		trendIcon = "📈"
	case "bearish":
		trendIcon = "📉"
	default:
		trendIcon = "➡️"
	}
	b.WriteString(fmt.Sprintf("%s *趨勢:* %s\n", trendIcon, result.Trend))
	b.WriteString(fmt.Sprintf("🎯 *評分:* %d/100\n\n", result.Score))

	if result.Summary != "" {
		b.WriteString(fmt.Sprintf("💬 %s\n", result.Summary))
	}

	if len(result.Forecast) > 0 {
		first := result.Forecast[0]
		last := result.Forecast[len(result.Forecast)-1]
		b.WriteString(fmt.Sprintf("\n🔮 *預測:* %s %.2f → %s %.2f\n",
			first.Date, first.Price, last.Date, last.Price))
	}

	b.WriteString(fmt.Sprintf("\n🕐 %s", result.AnalysisDate.Format("2006-01-02 15:04")))
	return b.String()
}
