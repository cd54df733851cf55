package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"jobdesk/internal/logging"
)

// Source is the reporting half of the backend.
type Source interface {
	Stats(ctx context.Context, r DateRange) (Stats, error)
	Trend(ctx context.Context, r DateRange, mode TrendMode) (Trend, error)
	TrafficSources(ctx context.Context, r DateRange) (Traffic, error)
	ExportCSV(ctx context.Context, r DateRange) ([]byte, error)
}

// Panel is the load state of one report section. Data holds the last
// successful load; HasData reports whether there has been one.
type Panel[T any] struct {
	Loading bool
	Loaded  bool
	HasData bool
	Data    T
	Err     error
}

// State is a snapshot of every report panel.
type State struct {
	Range     DateRange
	Mode      TrendMode
	Stats     Panel[Stats]
	Trend     Panel[Trend]
	Traffic   Panel[Traffic]
	Exporting bool
	Exported  string
	ExportErr error
}

// Controller loads report panels. Each panel succeeds or fails on its own.
type Controller struct {
	src    Source
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

// NewController builds a controller for the given default range and mode.
func NewController(src Source, r DateRange, mode TrendMode, logger *slog.Logger) *Controller {
	if _, ok := ParseTrendMode(string(mode)); !ok {
		mode = TrendDay
	}
	return &Controller{
		src:    src,
		logger: logging.NewComponentLogger(logger, "reports"),
		state:  State{Range: r.Normalized(), Mode: mode},
	}
}

// State returns a snapshot of the panels.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetRange validates and applies a new date range.
func (c *Controller) SetRange(r DateRange) error {
	r = r.Normalized()
	if err := r.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Range = r
	return nil
}

// SetMode changes the trend granularity.
func (c *Controller) SetMode(mode TrendMode) error {
	if _, ok := ParseTrendMode(string(mode)); !ok {
		return fmt.Errorf("trend mode must be day or week, got %q", mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Mode = mode
	return nil
}

// LoadAll requests stats, trend, and traffic concurrently. A failing panel
// keeps its error and never stops or clears the others. The returned error
// joins every panel failure.
func (c *Controller) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.LoadStats(ctx) })
	g.Go(func() error { return c.LoadTrend(ctx) })
	g.Go(func() error { return c.LoadTraffic(ctx) })
	_ = g.Wait()

	state := c.State()
	return errors.Join(state.Stats.Err, state.Trend.Err, state.Traffic.Err)
}

// LoadStats refreshes the stats panel.
func (c *Controller) LoadStats(ctx context.Context) error {
	c.mu.Lock()
	r := c.state.Range
	c.state.Stats.Loading = true
	c.mu.Unlock()

	stats, err := c.src.Stats(ctx, r)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Stats = finish(c.state.Stats, stats, err)
	c.logOutcome(ctx, "stats", err)
	return err
}

// LoadTrend refreshes the trend panel.
func (c *Controller) LoadTrend(ctx context.Context) error {
	c.mu.Lock()
	r, mode := c.state.Range, c.state.Mode
	c.state.Trend.Loading = true
	c.mu.Unlock()

	trend, err := c.src.Trend(ctx, r, mode)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Trend = finish(c.state.Trend, trend, err)
	c.logOutcome(ctx, "trend", err)
	return err
}

// LoadTraffic refreshes the traffic-source panel.
func (c *Controller) LoadTraffic(ctx context.Context) error {
	c.mu.Lock()
	r := c.state.Range
	c.state.Traffic.Loading = true
	c.mu.Unlock()

	traffic, err := c.src.TrafficSources(ctx, r)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Traffic = finish(c.state.Traffic, traffic, err)
	c.logOutcome(ctx, "traffic", err)
	return err
}

// Export downloads the CSV report into dir and returns the written path.
func (c *Controller) Export(ctx context.Context, dir string) (string, error) {
	c.mu.Lock()
	if c.state.Exporting {
		c.mu.Unlock()
		return "", errors.New("an export is already in progress")
	}
	r := c.state.Range
	c.state.Exporting = true
	c.mu.Unlock()

	path, err := c.export(ctx, r, dir)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Exporting = false
	c.state.ExportErr = err
	if err == nil {
		c.state.Exported = path
	}
	c.logOutcome(ctx, "export", err)
	return path, err
}

func (c *Controller) export(ctx context.Context, r DateRange, dir string) (string, error) {
	data, err := c.src.ExportCSV(ctx, r)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, r.CSVFilename())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write csv report: %w", err)
	}
	return path, nil
}

func (c *Controller) logOutcome(ctx context.Context, panel string, err error) {
	logger := logging.WithContext(ctx, c.logger)
	if err != nil {
		logger.Warn("report panel failed", logging.String("panel", panel), logging.Error(err))
		return
	}
	logger.Debug("report panel loaded", logging.String("panel", panel))
}

// finish records a load result. A failure keeps the previous data.
func finish[T any](panel Panel[T], data T, err error) Panel[T] {
	panel.Loading = false
	panel.Loaded = true
	panel.Err = err
	if err != nil {
		return panel
	}
	panel.Data = data
	panel.HasData = true
	return panel
}
