package reporting

import (
	"fmt"
	"strings"
)

// RenderValuationCSV renders the daily valuation series as CSV string.
func RenderValuationCSV(rows []ValuationRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("date,account_value,nav,rate_of_return\n")

	// Rows
	for _, v := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.6f\n",
			v.Day,
			money(v.AccountValue),
			money(v.NAV),
			v.RateOfReturn,
		))
	}

	return sb.String()
}

// RenderTradesCSV renders the trade ledger as CSV string. Open trades leave
// the sell columns empty.
func RenderTradesCSV(rows []TradeRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("trade_id,type,buy_ds,trx_value_no_fee,trx_value_gross,closed,sell_ds,sell_value_no_fee,sell_value_gross,profit\n")

	// Rows
	for _, t := range rows {
		sellDay, sellNoFee, sellGross, profit := "", "", "", ""
		if t.Closed {
			sellDay = t.SellDay.String()
			sellNoFee = money(t.SellValueNoFee)
			sellGross = money(t.SellValueGross)
			profit = money(t.Profit)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%t,%s,%s,%s,%s\n",
			t.ID,
			t.Type,
			t.BuyDay,
			money(t.TrxValueNoFee),
			money(t.TrxValueGross),
			t.Closed,
			sellDay,
			sellNoFee,
			sellGross,
			profit,
		))
	}

	return sb.String()
}
