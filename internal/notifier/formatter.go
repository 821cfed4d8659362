package notifier

import (
	"fmt"
	"strings"

	"SignalPilot/internal/model"
)

// FormatSignalAlert renders a directional signal as a Telegram HTML message.
func FormatSignalAlert(symbol string, res *model.SignalResult, lv model.TradeLevels) string {
	icon := "🟢"
	if res.Direction == model.DirectionSell {
		icon = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s %s</b> | confidence %d%%\n\n", icon, string(res.Direction), symbol, res.Confidence)

	if !lv.IsZero() {
		fmt.Fprintf(&b, "Entry: %.4f - %.4f\n", lv.EntryLow, lv.EntryHigh)
		fmt.Fprintf(&b, "SL: %.4f\n", lv.StopLoss)
		fmt.Fprintf(&b, "TP: %.4f / %.4f / %.4f\n\n", lv.TakeProfit1, lv.TakeProfit2, lv.TakeProfit3)
	}

	for _, reason := range res.Reasons {
		fmt.Fprintf(&b, "• %s\n", reason)
	}
	return b.String()
}
