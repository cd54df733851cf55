package reports

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Dimension names a categorical breakdown in the stats response.
type Dimension string

const (
	DimensionGender             Dimension = "gender"
	DimensionStatus             Dimension = "status"
	DimensionRelationshipStatus Dimension = "relationship_status"
	DimensionAttributeLove      Dimension = "attribute_love"
	DimensionVibe               Dimension = "vibe"
)

// Dimensions lists the breakdowns in display order.
var Dimensions = []Dimension{
	DimensionGender,
	DimensionStatus,
	DimensionRelationshipStatus,
	DimensionAttributeLove,
	DimensionVibe,
}

// Title is the panel heading for d.
func (d Dimension) Title() string {
	switch d {
	case DimensionGender:
		return "Gender Distribution"
	case DimensionStatus:
		return "Status Distribution"
	case DimensionRelationshipStatus:
		return "Relationship Status"
	case DimensionAttributeLove:
		return "What They Love"
	case DimensionVibe:
		return "Vibe Distribution"
	default:
		return CategoryLabel(string(d))
	}
}

// Stats is the aggregate count report for a date range.
type Stats struct {
	Range          DateRange
	Total          int
	TotalUsers     int
	ReturningUsers int
	Breakdowns     map[Dimension]map[string]int
}

// Count returns the count for key under d, or zero when absent.
func (s Stats) Count(d Dimension, key string) int {
	return s.Breakdowns[d][key]
}

// Card is one headline number.
type Card struct {
	Label string
	Value int
}

// Cards returns the headline numbers in display order. Missing categories
// count as zero.
func (s Stats) Cards() []Card {
	return []Card{
		{Label: "Total Entries", Value: s.Total},
		{Label: "Total Users", Value: s.TotalUsers},
		{Label: "Returning Users", Value: s.ReturningUsers},
		{Label: "Male", Value: s.Count(DimensionGender, "male")},
		{Label: "Female", Value: s.Count(DimensionGender, "female")},
		{Label: "Sent", Value: s.Count(DimensionStatus, "sent")},
		{Label: "Failed", Value: s.Count(DimensionStatus, "failed")},
		{Label: "Queued", Value: s.Count(DimensionStatus, "queued")},
	}
}

// Share is one row of a breakdown.
type Share struct {
	Key     string
	Label   string
	Count   int
	Percent float64
}

// Shares orders counts by count descending (key ascending on ties) and
// computes each row's share of the breakdown total.
func Shares(counts map[string]int) []Share {
	total := 0
	for _, n := range counts {
		total += n
	}
	rows := make([]Share, 0, len(counts))
	for key, n := range counts {
		row := Share{Key: key, Label: CategoryLabel(key), Count: n}
		if total > 0 {
			row.Percent = float64(n) * 100 / float64(total)
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b Share) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return rows
}

// PercentLabel renders a share with one decimal place.
func (s Share) PercentLabel() string {
	return fmt.Sprintf("%.1f%%", s.Percent)
}

// BarWidth scales count against largest into width cells. Non-zero counts
// get at least 5% of the width so small categories stay visible.
func BarWidth(count, largest, width int) int {
	if count <= 0 || largest <= 0 || width <= 0 {
		return 0
	}
	cells := count * width / largest
	floor := max(width*5/100, 1)
	return max(cells, floor)
}

var categoryCaser = cases.Title(language.English)

// CategoryLabel turns a backend category key such as "long_distance" into
// "Long Distance". Empty keys become "Unknown".
func CategoryLabel(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	if key == "" {
		return "Unknown"
	}
	return categoryCaser.String(key)
}

// TrendMode is the trend bucket size.
type TrendMode string

const (
	TrendDay  TrendMode = "day"
	TrendWeek TrendMode = "week"
)

// ParseTrendMode accepts "day" or "week".
func ParseTrendMode(value string) (TrendMode, bool) {
	switch TrendMode(strings.ToLower(strings.TrimSpace(value))) {
	case TrendDay:
		return TrendDay, true
	case TrendWeek:
		return TrendWeek, true
	default:
		return "", false
	}
}

// Toggle switches between day and week.
func (m TrendMode) Toggle() TrendMode {
	if m == TrendWeek {
		return TrendDay
	}
	return TrendWeek
}

// TrendPoint is one bucket of the time series.
type TrendPoint struct {
	Label          string
	TotalEntries   int
	TotalUsers     int
	ReturningUsers int
}

// Trend is the chronological time series for a range.
type Trend struct {
	Mode   TrendMode
	Points []TrendPoint
}

// Peak returns the largest TotalEntries value.
func (t Trend) Peak() int {
	peak := 0
	for _, p := range t.Points {
		peak = max(peak, p.TotalEntries)
	}
	return peak
}

// SourceDetail is per-source funnel data.
type SourceDetail struct {
	Source         string
	Total          int
	Sent           int
	Failed         int
	InProgress     int
	ConversionRate float64
}

// Traffic is the UTM breakdown for a range.
type Traffic struct {
	Range     DateRange
	Sources   map[string]int
	Mediums   map[string]int
	Campaigns map[string]int
	Details   []SourceDetail
}

// Band classifies a conversion rate for colouring.
type Band string

const (
	BandGreen Band = "green"
	BandAmber Band = "amber"
	BandRed   Band = "red"
)

// ConversionBand returns green at 50% and above, amber at 20% and above,
// red otherwise.
func ConversionBand(rate float64) Band {
	switch {
	case rate >= 50:
		return BandGreen
	case rate >= 20:
		return BandAmber
	default:
		return BandRed
	}
}

// FormatRate renders a backend conversion rate exactly as received.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}
