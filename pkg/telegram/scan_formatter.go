package telegram

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scoring"
	"golang-stock-scanner/pkg/utils"
)

const maxAlertCriteria = 3

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatScanAlert renders the message sent when a ticker's verdict changes.
// previousVerdict is empty when the ticker had never been scored.
func FormatScanAlert(rec indicator.Record, res scoring.Result, previousVerdict string, at time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🚀 *%s* (%s) is now *%s*\n", escape(rec.Ticker), escape(rec.Exchange), res.Verdict))
	if rec.CompanyName != "" && rec.CompanyName != rec.Ticker {
		sb.WriteString(escape(rec.CompanyName) + "\n")
	}
	sb.WriteString("\n")

	previous := previousVerdict
	if previous == "" {
		previous = "not scored"
	}
	sb.WriteString(fmt.Sprintf("📊 Score: *%.1f* (was: %s)\n", res.Score, previous))
	sb.WriteString(fmt.Sprintf("💵 Price: %s %.2f\n", escape(rec.Currency), rec.Price))
	sb.WriteString(fmt.Sprintf("🧮 Profile: %s\n", escape(res.Profile)))

	top := topCriteria(res.Breakdown, maxAlertCriteria)
	if len(top) > 0 {
		sb.WriteString("\n💡 *Top criteria:*\n")
		for _, entry := range top {
			sb.WriteString(fmt.Sprintf("• %s: %.1f/%.0f\n", escape(entry.Label), entry.Contribution, entry.Weight))
		}
	}

	sb.WriteString(fmt.Sprintf("\n🕒 %s", utils.PrettyDate(at)))
	return sb.String()
}

// topCriteria returns the n largest contributions, skipping entries that scored nothing.
func topCriteria(breakdown []scoring.BreakdownEntry, n int) []scoring.BreakdownEntry {
	entries := make([]scoring.BreakdownEntry, 0, len(breakdown))
	for _, entry := range breakdown {
		if entry.Contribution > 0 && entry.Value != nil {
			entries = append(entries, entry)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Contribution > entries[j].Contribution
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatErrorAlert renders a task that was dropped after exhausting its retries.
func FormatErrorAlert(at time.Time, errType, errMsg, data string) string {
	return fmt.Sprintf("📛 [ERROR ALERT]\n%s\n🔧 %s\n⚠️ %s\n\n📄 Data: %s\n",
		utils.PrettyDate(at), escape(errType), escape(errMsg), escape(data))
}
