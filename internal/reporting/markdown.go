package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Whale Scan Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Session summary
	sb.WriteString("## Session\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Session ID | %s |\n", r.Session.SessionID))
	sb.WriteString(fmt.Sprintf("| Symbols | %s |\n", strings.Join(r.Session.Symbols, ", ")))
	sb.WriteString(fmt.Sprintf("| Window Start (ms) | %d |\n", r.Session.StartTime))
	sb.WriteString(fmt.Sprintf("| Window End (ms) | %d |\n", r.Session.EndTime))
	sb.WriteString(fmt.Sprintf("| Min Shares | %d |\n", r.Session.MinShares))
	sb.WriteString(fmt.Sprintf("| Min Value | $%.2f |\n", r.Session.MinValue))
	sb.WriteString(fmt.Sprintf("| Trades Seen | %d |\n", r.Session.TradesSeen))
	sb.WriteString(fmt.Sprintf("| Whales Found | %d |\n", r.Session.WhalesFound))
	sb.WriteString("\n")

	// Sentiment
	sb.WriteString("## Sentiment by Symbol\n\n")
	if len(r.Sentiment) > 0 {
		sb.WriteString("| Symbol | Buys | Buy Value | Sells | Sell Value | Net Flow | High-Conf Net | Label |\n")
		sb.WriteString("|--------|------|-----------|-------|------------|----------|---------------|-------|\n")
		for _, row := range r.Sentiment {
			sb.WriteString(fmt.Sprintf("| %s | %d | $%.2f | %d | $%.2f | $%.2f | $%.2f | %s |\n",
				row.Symbol, row.BuyCount, row.BuyValue, row.SellCount, row.SellValue,
				row.NetFlow, row.HighConfNetFlow, row.Label))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No whale activity in this session.\n\n")
	}

	// Top trades
	sb.WriteString("## Largest Whale Trades\n\n")
	if len(r.TopTrades) > 0 {
		sb.WriteString("| Symbol | Direction | Confidence | Price | Size | Notional | Venue | Timestamp (ms) |\n")
		sb.WriteString("|--------|-----------|------------|-------|------|----------|-------|----------------|\n")
		for _, t := range r.TopTrades {
			venue := "lit"
			if t.DarkPool {
				venue = "dark"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | $%.2f | %d | $%.2f | %s | %d |\n",
				t.Symbol, t.Direction, t.Confidence, t.Price, t.Size, t.Notional, venue, t.Timestamp))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("None.\n\n")
	}

	// Sweeps
	sb.WriteString("## Sweep Activity\n\n")
	if len(r.Sweeps) > 0 {
		sb.WriteString("| Symbol | Direction | Legs | Shares | Notional | Venues | Start (ms) | End (ms) |\n")
		sb.WriteString("|--------|-----------|------|--------|----------|--------|------------|----------|\n")
		for _, s := range r.Sweeps {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | $%.2f | %s | %d | %d |\n",
				s.Symbol, s.Direction, s.Legs, s.TotalShares, s.TotalNotional,
				strings.Join(s.Exchanges, ", "), s.StartTime, s.EndTime))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No sweeps detected.\n\n")
	}

	// Dark pool breakdown
	sb.WriteString("## Dark Pool Activity\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Whale Trades | %d |\n", r.DarkPool.WhaleCount))
	sb.WriteString(fmt.Sprintf("| Dark Pool Trades | %d |\n", r.DarkPool.DarkPoolCount))
	sb.WriteString(fmt.Sprintf("| Dark Pool Notional | $%.2f |\n", r.DarkPool.DarkPoolNotional))
	sb.WriteString(fmt.Sprintf("| Dark Pool Share | %.1f%% |\n", r.DarkPool.DarkPoolShare()*100))

	return sb.String()
}
