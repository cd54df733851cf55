package reports

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestCSVFilename(t *testing.T) {
	cases := []struct {
		r    DateRange
		want string
	}{
		{DateRange{Start: "2026-01-01", End: "2026-01-31"}, "video_jobs_report_2026-01-01_to_2026-01-31.csv"},
		{DateRange{Start: "2026-01-01"}, "video_jobs_report_from_2026-01-01.csv"},
		{DateRange{End: "2026-01-31"}, "video_jobs_report_until_2026-01-31.csv"},
		{DateRange{}, "video_jobs_report.csv"},
	}
	for _, tc := range cases {
		if got := tc.r.CSVFilename(); got != tc.want {
			t.Fatalf("CSVFilename(%+v) = %q want %q", tc.r, got, tc.want)
		}
	}
}

func TestDateRangeValidate(t *testing.T) {
	if err := (DateRange{Start: "2026-02-01", End: "2026-01-01"}).Validate(); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected inverted range error, got %v", err)
	}
	if err := (DateRange{Start: "yesterday"}).Validate(); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected malformed start error, got %v", err)
	}
	if err := (DateRange{End: "2026-01-01"}).Validate(); err != nil {
		t.Fatalf("expected open start to be valid, got %v", err)
	}
}

func TestConversionBandAndVerbatimRate(t *testing.T) {
	cases := []struct {
		rate float64
		band Band
		text string
	}{
		{72.5, BandGreen, "72.5%"},
		{50, BandGreen, "50%"},
		{49.99, BandAmber, "49.99%"},
		{20, BandAmber, "20%"},
		{19.999, BandRed, "19.999%"},
		{0, BandRed, "0%"},
	}
	for _, tc := range cases {
		if got := ConversionBand(tc.rate); got != tc.band {
			t.Fatalf("band(%v) = %q want %q", tc.rate, got, tc.band)
		}
		if got := FormatRate(tc.rate); got != tc.text {
			t.Fatalf("FormatRate(%v) = %q want %q", tc.rate, got, tc.text)
		}
	}
}

func TestSharesSortedWithPercent(t *testing.T) {
	rows := Shares(map[string]int{"single": 1, "in_a_relationship": 3, "married": 3, "complicated": 1})
	wantKeys := []string{"in_a_relationship", "married", "complicated", "single"}
	for i, key := range wantKeys {
		if rows[i].Key != key {
			t.Fatalf("row %d = %q want %q (%+v)", i, rows[i].Key, key, rows)
		}
	}
	if rows[0].Label != "In A Relationship" {
		t.Fatalf("unexpected label %q", rows[0].Label)
	}
	if rows[0].PercentLabel() != "37.5%" || rows[3].PercentLabel() != "12.5%" {
		t.Fatalf("unexpected percents %q %q", rows[0].PercentLabel(), rows[3].PercentLabel())
	}
	if len(Shares(nil)) != 0 {
		t.Fatal("expected no rows for empty breakdown")
	}
}

func TestBarWidthFloor(t *testing.T) {
	if got := BarWidth(100, 100, 40); got != 40 {
		t.Fatalf("full bar = %d", got)
	}
	if got := BarWidth(1, 1000, 40); got != 2 {
		t.Fatalf("expected 5%% floor of 2 cells, got %d", got)
	}
	if got := BarWidth(0, 1000, 40); got != 0 {
		t.Fatalf("zero count must have no bar, got %d", got)
	}
}

func TestStatsCardsDefaultMissingToZero(t *testing.T) {
	stats := Stats{Total: 10, Breakdowns: map[Dimension]map[string]int{
		DimensionGender: {"male": 4},
		DimensionStatus: {"sent": 6},
	}}
	cards := stats.Cards()
	values := map[string]int{}
	for _, card := range cards {
		values[card.Label] = card.Value
	}
	if values["Total Entries"] != 10 || values["Male"] != 4 || values["Female"] != 0 || values["Sent"] != 6 || values["Queued"] != 0 {
		t.Fatalf("unexpected cards %+v", cards)
	}
}

type fakeSource struct {
	mu          sync.Mutex
	statsErr    error
	trendErr    error
	trafficErr  error
	csv         []byte
	lastMode    TrendMode
	lastRange   DateRange
	exportCalls int
}

func (f *fakeSource) Stats(_ context.Context, r DateRange) (Stats, error) {
	f.mu.Lock()
	f.lastRange = r
	f.mu.Unlock()
	if f.statsErr != nil {
		return Stats{}, f.statsErr
	}
	return Stats{Range: r, Total: 3}, nil
}

func (f *fakeSource) Trend(_ context.Context, _ DateRange, mode TrendMode) (Trend, error) {
	f.mu.Lock()
	f.lastMode = mode
	f.mu.Unlock()
	if f.trendErr != nil {
		return Trend{}, f.trendErr
	}
	return Trend{Mode: mode, Points: []TrendPoint{{Label: "2026-01-01", TotalEntries: 3}}}, nil
}

func (f *fakeSource) TrafficSources(context.Context, DateRange) (Traffic, error) {
	if f.trafficErr != nil {
		return Traffic{}, f.trafficErr
	}
	return Traffic{Details: []SourceDetail{{Source: "instagram", Total: 4, Sent: 2, Failed: 1, InProgress: 1, ConversionRate: 50}}}, nil
}

func (f *fakeSource) ExportCSV(context.Context, DateRange) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exportCalls++
	return f.csv, nil
}

func TestLoadAllPanelsAreIndependent(t *testing.T) {
	src := &fakeSource{trendErr: errors.New("trend down")}
	ctrl := NewController(src, DateRange{Start: "2026-01-01"}, TrendWeek, nil)

	err := ctrl.LoadAll(context.Background())
	if err == nil || !errors.Is(err, src.trendErr) {
		t.Fatalf("expected joined trend error, got %v", err)
	}
	state := ctrl.State()
	if state.Stats.Err != nil || state.Stats.Data.Total != 3 {
		t.Fatalf("stats panel should succeed, got %+v", state.Stats)
	}
	if state.Traffic.Err != nil || len(state.Traffic.Data.Details) != 1 {
		t.Fatalf("traffic panel should succeed, got %+v", state.Traffic)
	}
	if state.Trend.Err == nil || state.Trend.Loading || state.Trend.HasData || len(state.Trend.Data.Points) != 0 {
		t.Fatalf("trend panel should hold only its error, got %+v", state.Trend)
	}
	if src.lastMode != TrendWeek {
		t.Fatalf("expected week mode requested, got %q", src.lastMode)
	}
}

func TestFailedReloadKeepsPreviousData(t *testing.T) {
	src := &fakeSource{}
	ctrl := NewController(src, DateRange{Start: "2026-01-01"}, TrendDay, nil)
	if err := ctrl.LoadAll(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}

	src.statsErr = errors.New("stats down")
	src.trafficErr = errors.New("traffic down")
	if err := ctrl.LoadStats(context.Background()); !errors.Is(err, src.statsErr) {
		t.Fatalf("expected stats error, got %v", err)
	}
	if err := ctrl.LoadTraffic(context.Background()); !errors.Is(err, src.trafficErr) {
		t.Fatalf("expected traffic error, got %v", err)
	}

	state := ctrl.State()
	if state.Stats.Err == nil || !state.Stats.HasData || state.Stats.Data.Total != 3 {
		t.Fatalf("stats should keep total 3 alongside the error, got %+v", state.Stats)
	}
	if state.Traffic.Err == nil || !state.Traffic.HasData || len(state.Traffic.Data.Details) != 1 {
		t.Fatalf("traffic should keep its details alongside the error, got %+v", state.Traffic)
	}

	src.statsErr = nil
	if err := ctrl.LoadStats(context.Background()); err != nil {
		t.Fatalf("recovered load: %v", err)
	}
	if state := ctrl.State(); state.Stats.Err != nil {
		t.Fatalf("successful reload should clear the error, got %v", state.Stats.Err)
	}
}

func TestSetRangeRejectsInvalid(t *testing.T) {
	ctrl := NewController(&fakeSource{}, DateRange{}, TrendDay, nil)
	if err := ctrl.SetRange(DateRange{Start: "2026-03-01", End: "2026-01-01"}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	if err := ctrl.SetRange(DateRange{Start: " 2026-01-01 "}); err != nil {
		t.Fatalf("set range: %v", err)
	}
	if got := ctrl.State().Range.Start; got != "2026-01-01" {
		t.Fatalf("expected trimmed start, got %q", got)
	}
	if err := ctrl.SetMode("month"); err == nil {
		t.Fatal("expected invalid mode error")
	}
}

func TestExportWritesNamedFile(t *testing.T) {
	src := &fakeSource{csv: []byte("id,status\n1,sent\n")}
	ctrl := NewController(src, DateRange{Start: "2026-01-01", End: "2026-01-31"}, TrendDay, nil)
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := ctrl.Export(context.Background(), dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "video_jobs_report_2026-01-01_to_2026-01-31.csv" {
		t.Fatalf("unexpected export path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != string(src.csv) {
		t.Fatalf("unexpected csv contents %q", data)
	}
	if ctrl.State().Exported != path {
		t.Fatalf("expected exported path recorded")
	}
}
