package views

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// StatRow is one line of an analytics breakdown table.
type StatRow struct {
	Label string
	Count int
}

// SeriesPoint is one bucket of the views-over-time chart.
type SeriesPoint struct {
	Label string
	Views int
}

// AnalyticsPanel is the view model for the admin analytics screen.
type AnalyticsPanel struct {
	Period    string
	Realtime  int
	Visitors  int
	Views     int
	AvgTime   string
	Series    []SeriesPoint
	TopPages  []StatRow
	Referrers []StatRow
	Browsers  []StatRow
	Devices   []StatRow
	BotTotal  int
	TopBots   []StatRow
}

var analyticsPeriods = []struct {
	key   string
	label string
}{
	{"today", "Today"},
	{"week", "Week"},
	{"month", "Month"},
	{"year", "Year"},
}

// AdminAnalytics renders the visit stats screen. Everything is computed
// server-side; the page carries no script.
func AdminAnalytics(site Site, p AnalyticsPanel, csrf string) templ.Component {
	return adminLayout(site, "Analytics", csrf, true, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		b.WriteString("<h1>Analytics</h1>\n")

		b.WriteString("<nav class=\"periods\">\n")
		for _, per := range analyticsPeriods {
			cls := ""
			if per.key == p.Period {
				cls = " class=\"active\""
			}
			fmt.Fprintf(&b, "<a%s href=\"/admin/analytics/?period=%s\">%s</a>\n", cls, per.key, per.label)
		}
		b.WriteString("</nav>\n")

		b.WriteString("<div class=\"stat-cards\">\n")
		writeStatCard(&b, fmt.Sprintf("%d", p.Views), "Views")
		writeStatCard(&b, fmt.Sprintf("%d", p.Visitors), "Visitors")
		writeStatCard(&b, p.AvgTime, "Avg. time on page")
		writeStatCard(&b, fmt.Sprintf("%d", p.Realtime), "Online now")
		b.WriteString("</div>\n")

		writeChart(&b, p.Series)

		b.WriteString("<div class=\"stat-grid\">\n")
		writeStatTable(&b, "Top pages", p.TopPages)
		writeStatTable(&b, "Referrers", p.Referrers)
		writeStatTable(&b, "Browsers", p.Browsers)
		writeStatTable(&b, "Devices", p.Devices)
		b.WriteString("</div>\n")

		b.WriteString("<h2>Crawlers</h2>\n")
		fmt.Fprintf(&b, "<p>%d bot visits in this period.</p>\n", p.BotTotal)
		if len(p.TopBots) > 0 {
			b.WriteString("<div class=\"stat-grid\">\n")
			writeStatTable(&b, "Top bots", p.TopBots)
			b.WriteString("</div>\n")
		}

		_, err := w.Write(b.Bytes())
		return err
	}))
}

func writeStatCard(b *bytes.Buffer, value, label string) {
	b.WriteString("<div class=\"stat-card\">")
	fmt.Fprintf(b, "<span class=\"stat-value\">%s</span>", esc(value))
	fmt.Fprintf(b, "<span class=\"stat-label\">%s</span>", esc(label))
	b.WriteString("</div>\n")
}

// writeChart draws views per bucket as horizontal bars. Widths are
// relative to the busiest bucket.
func writeChart(b *bytes.Buffer, series []SeriesPoint) {
	if len(series) == 0 {
		return
	}
	max := 0
	for _, pt := range series {
		if pt.Views > max {
			max = pt.Views
		}
	}
	b.WriteString("<div class=\"chart\">\n")
	for _, pt := range series {
		pct := 0
		if max > 0 {
			pct = pt.Views * 100 / max
		}
		if pt.Views > 0 && pct < 2 {
			pct = 2
		}
		b.WriteString("<div class=\"chart-row\">")
		fmt.Fprintf(b, "<span class=\"chart-label\">%s</span>", esc(pt.Label))
		fmt.Fprintf(b, "<span class=\"chart-bar\" style=\"width: %d%%\"></span>", pct)
		fmt.Fprintf(b, "<span class=\"chart-count\">%d</span>", pt.Views)
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
}

func writeStatTable(b *bytes.Buffer, title string, rows []StatRow) {
	b.WriteString("<div class=\"stat-table\">\n")
	fmt.Fprintf(b, "<h3>%s</h3>\n", esc(title))
	if len(rows) == 0 {
		b.WriteString("<p>Nothing yet.</p>\n</div>\n")
		return
	}
	b.WriteString("<table class=\"content-table\">\n<tbody>\n")
	for _, r := range rows {
		fmt.Fprintf(b, "<tr><td>%s</td><td>%d</td></tr>\n", esc(r.Label), r.Count)
	}
	b.WriteString("</tbody>\n</table>\n</div>\n")
}
