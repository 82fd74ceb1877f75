package repository

import (
	"fmt"
	"strings"

	"tw-stock-dashboard/internal/entity"
	"tw-stock-dashboard/internal/server/dto"
)

// BuildStockAnalysisPrompt assembles the single analysis prompt: recent price
// bars, valuation, institutional flows and headlines, followed by the JSON
// contract the model must answer with.
func BuildStockAnalysisPrompt(snapshot *entity.StockSnapshot, flows []entity.InstitutionalFlow, headlines []dto.NewsHeadline) string {
	var barsBuilder strings.Builder
	bars := snapshot.Bars
	if len(bars) > 30 {
		bars = bars[len(bars)-30:]
	}
	for _, bar := range bars {
		barsBuilder.WriteString(fmt.Sprintf(
			"%s 開:%.2f 高:%.2f 低:%.2f 收:%.2f 量:%d\n",
			bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		))
	}

	var flowsBuilder strings.Builder
	recent := flows
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	for _, flow := range recent {
		flowsBuilder.WriteString(fmt.Sprintf(
			"%s 外資:%d 投信:%d 自營商:%d 合計:%d\n",
			flow.Date, flow.Foreign, flow.Trust, flow.Dealer, flow.Total,
		))
	}

	var newsBuilder strings.Builder
	for i, headline := range headlines {
		newsBuilder.WriteString(fmt.Sprintf("%d. [%s] %s (%s)\n", i+1, headline.Source, headline.Title, headline.PublishedAt))
	}
	if newsBuilder.Len() == 0 {
		newsBuilder.WriteString("(無近期新聞)\n")
	}

	promptTemplate := `你是台灣股市的專業分析師。以下是 %s (%s) 的市場資料：

目前股價: %.2f (漲跌 %.2f, %.2f%%)
本益比: %.2f 股價淨值比: %.2f
最後更新日: %s

近期日K線:
%s
近期三大法人買賣超(股):
%s
近期新聞標題:
%s
請根據以上資料進行分析，並以 JSON 格式輸出（繁體中文），結構如下：

{
  "summary": "{整體走勢分析，1-2 段}",
  "financial_summary": "{估值與基本面觀察}",
  "institutional_summary": "{三大法人動向解讀}",
  "score": {0-100 的整數，越高越看多},
  "trend": "bullish | bearish | neutral",
  "forecast": [
    {"date": "YYYY-MM-DD", "price": {預估收盤}, "low": {區間下緣}, "high": {區間上緣}}
  ],
  "brokerages": [
    {"name": "{券商名稱}", "amount": {買賣超股數}, "side": "buy | sell"}
  ]
}

注意:
- forecast 提供未來 5 個交易日。
- brokerages 最多 5 筆，依據法人動向合理推估。
- 僅輸出 JSON，不要加上其他說明文字。`

	return fmt.Sprintf(promptTemplate,
		snapshot.Name, snapshot.Code,
		snapshot.Price, snapshot.Change, snapshot.PercentChange,
		snapshot.PER, snapshot.PBR,
		snapshot.UpdatedAt,
		barsBuilder.String(),
		flowsBuilder.String(),
		newsBuilder.String(),
	)
}
