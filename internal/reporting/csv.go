package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders sentiment rows as a CSV string.
func RenderCSV(rows []SentimentRow) string {
	var sb strings.Builder

	sb.WriteString("symbol,buy_count,buy_value,sell_count,sell_value,net_flow,high_conf_net_flow,label\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%.2f,%d,%.2f,%.2f,%.2f,%s\n",
			r.Symbol,
			r.BuyCount,
			r.BuyValue,
			r.SellCount,
			r.SellValue,
			r.NetFlow,
			r.HighConfNetFlow,
			r.Label,
		))
	}

	return sb.String()
}

// RenderTradesCSV renders the ranked whale trades as a CSV string.
func RenderTradesCSV(trades []TradeRow) string {
	var sb strings.Builder

	sb.WriteString("symbol,direction,confidence,price,size,notional,dark_pool,timestamp_ms\n")

	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%.2f,%.2f,%d,%.2f,%t,%d\n",
			t.Symbol,
			t.Direction,
			t.Confidence,
			t.Price,
			t.Size,
			t.Notional,
			t.DarkPool,
			t.Timestamp,
		))
	}

	return sb.String()
}
