package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAPI()
	if err := c.normalizeSession(); err != nil {
		return err
	}
	if c.Jobs.PageSize == 0 {
		c.Jobs.PageSize = defaultPageSize
	}
	if err := c.normalizeReports(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeAPI() {
	if value, ok := os.LookupEnv("JOBDESK_API_URL"); ok && strings.TrimSpace(value) != "" {
		c.API.BaseURL = value
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBaseURL
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}
	c.API.UserAgent = strings.TrimSpace(c.API.UserAgent)
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeSession() error {
	if value, ok := os.LookupEnv("JOBDESK_TOKEN_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Session.TokenPath = value
	}
	if strings.TrimSpace(c.Session.TokenPath) == "" {
		c.Session.TokenPath = defaultTokenPath
	}
	var err error
	if c.Session.TokenPath, err = expandPath(strings.TrimSpace(c.Session.TokenPath)); err != nil {
		return fmt.Errorf("session.token_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeReports() error {
	c.Reports.StartDate = strings.TrimSpace(c.Reports.StartDate)
	c.Reports.EndDate = strings.TrimSpace(c.Reports.EndDate)
	c.Reports.TrendMode = strings.ToLower(strings.TrimSpace(c.Reports.TrendMode))
	if c.Reports.TrendMode == "" {
		c.Reports.TrendMode = defaultTrendMode
	}
	if strings.TrimSpace(c.Reports.ExportDir) == "" {
		c.Reports.ExportDir = defaultExportDir
	}
	var err error
	if c.Reports.ExportDir, err = expandPath(strings.TrimSpace(c.Reports.ExportDir)); err != nil {
		return fmt.Errorf("reports.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File == "" {
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
