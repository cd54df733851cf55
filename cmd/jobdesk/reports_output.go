package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"jobdesk/internal/reports"
)

var countAligns = []columnAlignment{alignLeft, alignRight, alignRight, alignLeft}

func printStats(out io.Writer, stats reports.Stats) {
	cards := stats.Cards()
	rows := make([][]string, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, []string{card.Label, formatCount(card.Value)})
	}
	fmt.Fprintln(out, renderTable("Summary ("+stats.Range.Describe()+")", []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	for _, dim := range reports.Dimensions {
		printShares(out, dim.Title(), stats.Breakdowns[dim])
	}
}

func printShares(out io.Writer, title string, counts map[string]int) {
	shares := reports.Shares(counts)
	if len(shares) == 0 {
		fmt.Fprintf(out, "%s: no data\n", title)
		return
	}
	largest := shares[0].Count
	rows := make([][]string, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, []string{s.Label, formatCount(s.Count), s.PercentLabel(), bar(s.Count, largest)})
	}
	fmt.Fprintln(out, renderTable(title, []string{"Category", "Count", "Share", ""}, rows, countAligns))
}

func printTrend(out io.Writer, trend reports.Trend, r reports.DateRange) {
	title := fmt.Sprintf("Entries per %s (%s)", trend.Mode, r.Describe())
	if len(trend.Points) == 0 {
		fmt.Fprintln(out, title+": no data")
		return
	}
	peak := trend.Peak()
	rows := make([][]string, 0, len(trend.Points))
	for _, p := range trend.Points {
		rows = append(rows, []string{
			p.Label,
			formatCount(p.TotalEntries),
			formatCount(p.TotalUsers),
			formatCount(p.ReturningUsers),
			bar(p.TotalEntries, peak),
		})
	}
	headers := []string{"Period", "Entries", "Users", "Returning", ""}
	fmt.Fprintln(out, renderTable(title, headers, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft}))
}

func printTraffic(out io.Writer, traffic reports.Traffic, colorize bool) {
	printShares(out, "UTM Source", traffic.Sources)
	printShares(out, "UTM Medium", traffic.Mediums)
	printShares(out, "UTM Campaign", traffic.Campaigns)

	if len(traffic.Details) == 0 {
		fmt.Fprintln(out, "Source funnel: no data")
		return
	}
	rows := make([][]string, 0, len(traffic.Details))
	for _, d := range traffic.Details {
		rows = append(rows, []string{
			reports.CategoryLabel(d.Source),
			formatCount(d.Total),
			formatCount(d.Sent),
			formatCount(d.Failed),
			formatCount(d.InProgress),
			rateBadge(d.ConversionRate, colorize),
		})
	}
	headers := []string{"Source", "Total", "Sent", "Failed", "In Progress", "Conversion"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}
	fmt.Fprintln(out, renderTable("Source funnel", headers, rows, aligns))
}

type statsJSON struct {
	StartDate      string                               `json:"start_date,omitempty"`
	EndDate        string                               `json:"end_date,omitempty"`
	Total          int                                  `json:"total"`
	TotalUsers     int                                  `json:"total_users"`
	ReturningUsers int                                  `json:"returning_users"`
	Breakdowns     map[reports.Dimension]map[string]int `json:"breakdowns"`
}

type trendJSON struct {
	Mode   reports.TrendMode `json:"mode"`
	Points []trendPointJSON  `json:"points"`
}

type trendPointJSON struct {
	Label          string `json:"label"`
	TotalEntries   int    `json:"total_entries"`
	TotalUsers     int    `json:"total_users"`
	ReturningUsers int    `json:"returning_users"`
}

type sourceJSON struct {
	Source         string  `json:"source"`
	Total          int     `json:"total"`
	Sent           int     `json:"sent"`
	Failed         int     `json:"failed"`
	InProgress     int     `json:"in_progress"`
	ConversionRate float64 `json:"conversion_rate"`
	Band           string  `json:"band"`
}

type trafficJSON struct {
	Sources   map[string]int `json:"utm_source"`
	Mediums   map[string]int `json:"utm_medium"`
	Campaigns map[string]int `json:"utm_campaign"`
	Details   []sourceJSON   `json:"source_details"`
}

type panelJSON struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func toStatsJSON(s reports.Stats) statsJSON {
	return statsJSON{
		StartDate:      s.Range.Start,
		EndDate:        s.Range.End,
		Total:          s.Total,
		TotalUsers:     s.TotalUsers,
		ReturningUsers: s.ReturningUsers,
		Breakdowns:     s.Breakdowns,
	}
}

func toTrendJSON(t reports.Trend) trendJSON {
	out := trendJSON{Mode: t.Mode, Points: make([]trendPointJSON, 0, len(t.Points))}
	for _, p := range t.Points {
		out.Points = append(out.Points, trendPointJSON(p))
	}
	return out
}

func toTrafficJSON(t reports.Traffic) trafficJSON {
	out := trafficJSON{
		Sources:   t.Sources,
		Mediums:   t.Mediums,
		Campaigns: t.Campaigns,
		Details:   make([]sourceJSON, 0, len(t.Details)),
	}
	for _, d := range t.Details {
		out.Details = append(out.Details, sourceJSON{
			Source:         d.Source,
			Total:          d.Total,
			Sent:           d.Sent,
			Failed:         d.Failed,
			InProgress:     d.InProgress,
			ConversionRate: d.ConversionRate,
			Band:           string(reports.ConversionBand(d.ConversionRate)),
		})
	}
	return out
}

func panelOf[T any](p reports.Panel[T], convert func(T) any) panelJSON {
	var out panelJSON
	if p.HasData {
		out.Data = convert(p.Data)
	}
	if p.Err != nil {
		out.Error = presentError(p.Err)
	}
	return out
}

func exportSummary(path string, size int64) string {
	return fmt.Sprintf("Wrote %s (%s)", path, humanize.Bytes(uint64(max(size, 0))))
}
