package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockBoard/internal/model"
)

// FormatRunSummary formats a finished run into a Telegram message.
func FormatRunSummary(s *model.RunSummary, gainers, losers []model.Mover) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockBoard</b> | %s\n\n", s.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Quotes: %d/%d fetched", s.Succeeded, s.Total))
	if s.Failed > 0 {
		b.WriteString(fmt.Sprintf(" (⚠ %d failed)", s.Failed))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Breadth: ▲%d ▼%d ＝%d\n", s.Advancers, s.Decliners, s.Unchanged))
	b.WriteString(fmt.Sprintf("Source: %s | %s\n", s.Source, s.Duration().Round(time.Second)))

	writeMovers(&b, "📈 <b>Top gainers</b>", gainers)
	writeMovers(&b, "📉 <b>Top losers</b>", losers)

	if s.OutputPath != "" {
		b.WriteString(fmt.Sprintf("\nPage: %s\n", html.EscapeString(s.OutputPath)))
	}
	return b.String()
}

func writeMovers(b *strings.Builder, title string, movers []model.Mover) {
	if len(movers) == 0 {
		return
	}
	b.WriteString("\n" + title + "\n")
	for _, m := range movers {
		b.WriteString(fmt.Sprintf("  %s %s %+.2f%%\n", html.EscapeString(m.Symbol), html.EscapeString(m.Name), m.ChangePercent))
	}
}

// FormatRunFailure formats a run that could not publish its page.
func FormatRunFailure(err error) string {
	return fmt.Sprintf("❌ <b>StockBoard run failed</b>\n\n%s", html.EscapeString(err.Error()))
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Commands:\n• /run: fetch quotes and publish now\n• /status: last run summary"
}
