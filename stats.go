package mdpress

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdpress/analytics"
	"github.com/eringen/mdpress/views"
)

// handleAdminAnalytics renders the visit stats panel for one period.
func (a *App) handleAdminAnalytics(c echo.Context) error {
	period := c.QueryParam("period")
	switch period {
	case "today", "week", "month", "year":
	default:
		period = "week"
	}

	stats, err := a.analyticsStore.StatsForPeriod(period)
	if err != nil {
		return err
	}
	bots, err := a.analyticsStore.BotStatsForPeriod(period)
	if err != nil {
		return err
	}
	realtime, err := a.analyticsStore.RealtimeVisitors()
	if err != nil {
		return err
	}

	panel := views.AnalyticsPanel{
		Period:    period,
		Realtime:  realtime,
		Visitors:  stats.UniqueVisitors,
		Views:     stats.TotalViews,
		AvgTime:   formatSeconds(stats.AvgDuration),
		Series:    toSeries(stats.DailyViews),
		TopPages:  pageRows(stats.TopPages),
		Referrers: dimensionRows(stats.Referrers),
		Browsers:  dimensionRows(stats.Browsers),
		Devices:   dimensionRows(stats.Devices),
		BotTotal:  bots.TotalVisits,
		TopBots:   dimensionRows(bots.TopBots),
	}
	return Render(c, views.AdminAnalytics(a.site(), panel, CsrfToken(c)))
}

func formatSeconds(sec int) string {
	if sec >= 60 {
		return fmt.Sprintf("%dm %02ds", sec/60, sec%60)
	}
	return fmt.Sprintf("%ds", sec)
}

func toSeries(daily []analytics.DailyView) []views.SeriesPoint {
	out := make([]views.SeriesPoint, len(daily))
	for i, v := range daily {
		out[i] = views.SeriesPoint{Label: v.Date, Views: v.Views}
	}
	return out
}

func pageRows(pages []analytics.PageStat) []views.StatRow {
	out := make([]views.StatRow, len(pages))
	for i, p := range pages {
		out[i] = views.StatRow{Label: p.Path, Count: p.Views}
	}
	return out
}

func dimensionRows(dims []analytics.DimensionStat) []views.StatRow {
	out := make([]views.StatRow, len(dims))
	for i, d := range dims {
		out[i] = views.StatRow{Label: d.Name, Count: d.Count}
	}
	return out
}
