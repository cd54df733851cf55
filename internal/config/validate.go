package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	if err := c.validateReports(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", c.API.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.base_url must include a host, got %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds < 0 {
		return errors.New("api.timeout_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateJobs() error {
	if !slices.Contains(AllowedPageSizes, c.Jobs.PageSize) {
		return fmt.Errorf("jobs.page_size must be one of %v, got %d", AllowedPageSizes, c.Jobs.PageSize)
	}
	return nil
}

func (c *Config) validateReports() error {
	var start, end time.Time
	var err error
	if c.Reports.StartDate != "" {
		if start, err = time.Parse(time.DateOnly, c.Reports.StartDate); err != nil {
			return fmt.Errorf("reports.start_date must be YYYY-MM-DD, got %q", c.Reports.StartDate)
		}
	}
	if c.Reports.EndDate != "" {
		if end, err = time.Parse(time.DateOnly, c.Reports.EndDate); err != nil {
			return fmt.Errorf("reports.end_date must be YYYY-MM-DD, got %q", c.Reports.EndDate)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return errors.New("reports.end_date must not be before reports.start_date")
	}
	switch c.Reports.TrendMode {
	case "day", "week":
	default:
		return fmt.Errorf("reports.trend_mode must be day or week, got %q", c.Reports.TrendMode)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
