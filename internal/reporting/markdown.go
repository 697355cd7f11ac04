package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// money formats a monetary amount with two fixed decimal places.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Sizer: %s | Initial capital: %s\n\n", r.RunID, r.SizerName, money(r.InitCapital)))

	// Run Summary
	sb.WriteString("## Run Summary\n\n")
	if a := r.Aggregate; a != nil {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Days Simulated | %d |\n", a.Days))
		sb.WriteString(fmt.Sprintf("| Final NAV | %s |\n", money(a.FinalNAV)))
		sb.WriteString(fmt.Sprintf("| Rate of Return | %.2f%% |\n", a.FinalReturn))
		sb.WriteString(fmt.Sprintf("| Peak NAV | %s |\n", money(a.PeakNAV)))
		sb.WriteString(fmt.Sprintf("| Max Drawdown | %s |\n", money(a.MaxDrawdown)))
		sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", a.TotalTrades))
		sb.WriteString(fmt.Sprintf("| Closed / Open | %d / %d |\n", a.ClosedTrades, a.OpenTrades))
		sb.WriteString(fmt.Sprintf("| Win Rate | %.4f |\n", a.WinRate))
		sb.WriteString(fmt.Sprintf("| Profit Mean | %s |\n", money(a.ProfitMean)))
		sb.WriteString(fmt.Sprintf("| Profit Median | %s |\n", money(a.ProfitMedian)))
		sb.WriteString(fmt.Sprintf("| Profit P10 / P90 | %s / %s |\n", money(a.ProfitP10), money(a.ProfitP90)))
		sb.WriteString(fmt.Sprintf("| Max Consecutive Losses | %d |\n", a.MaxConsecutiveLosses))
	} else {
		sb.WriteString("No summary available.\n")
	}
	sb.WriteString("\n")

	// Valuation
	sb.WriteString("## Valuation\n\n")
	if len(r.Valuation) > 0 {
		sb.WriteString("| Day | Account Value | NAV | Rate of Return |\n")
		sb.WriteString("|-----|---------------|-----|----------------|\n")
		for _, v := range r.Valuation {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f%% |\n",
				v.Day, money(v.AccountValue), money(v.NAV), v.RateOfReturn))
		}
	} else {
		sb.WriteString("No valuation data available.\n")
	}
	sb.WriteString("\n")

	// Trades
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Trade | Type | Entry Day | Entry Gross | Exit Day | Exit Gross | Profit |\n")
		sb.WriteString("|-------|------|-----------|-------------|----------|------------|--------|\n")
		for _, t := range r.Trades {
			sellDay, sellGross, profit := "open", "-", "-"
			if t.Closed {
				sellDay = t.SellDay.String()
				sellGross = money(t.SellValueGross)
				profit = money(t.Profit)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				t.ID, t.Type, t.BuyDay, money(t.TrxValueGross), sellDay, sellGross, profit))
		}
	} else {
		sb.WriteString("No trades executed.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
